package storage

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"ownergen/internal/ownership"
)

// Shared encoder and decoder. Only EncodeAll and DecodeAll are used, which
// are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	if zstdEncoder, err = zstd.NewWriter(nil); err != nil {
		panic(err)
	}
	if zstdDecoder, err = zstd.NewReader(nil); err != nil {
		panic(err)
	}
}

// payloadDoc is the JSON document stored in the payload column.
type payloadDoc struct {
	Summary ownership.Summary `json:"summary"`
	Table   ownership.Table   `json:"table"`
}

// encodeSnapshot serializes a table and its summary as zstd-compressed JSON.
func encodeSnapshot(s Snapshot) ([]byte, error) {
	raw, err := json.Marshal(payloadDoc{Summary: s.Summary, Table: s.Table})
	if err != nil {
		return nil, fmt.Errorf("marshal ownership table: %w", err)
	}
	return zstdEncoder.EncodeAll(raw, nil), nil
}

// decodeSnapshot reverses encodeSnapshot. Payloads without a table, including
// bare tables written by older versions, are rejected.
func decodeSnapshot(payload []byte) (Snapshot, error) {
	raw, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decompress payload: %w", err)
	}
	var doc payloadDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal ownership table: %w", err)
	}
	if doc.Table == nil {
		return Snapshot{}, fmt.Errorf("payload is not an ownership snapshot")
	}
	return Snapshot{Summary: doc.Summary, Table: doc.Table}, nil
}
