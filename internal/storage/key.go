package storage

import (
	"encoding/hex"
	"encoding/json"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Params are the inputs that determine an ownership table. Two runs with
// equal Params over the same branch tip produce the same table.
type Params struct {
	Repo            string   `json:"repo"`
	Branch          string   `json:"branch"`
	Since           string   `json:"since"`
	Strategy        string   `json:"strategy"`
	Threshold       float64  `json:"threshold"`
	MinOwners       int      `json:"minOwners"`
	MaxOwners       int      `json:"maxOwners"`
	MinCommits      uint     `json:"minCommits"`
	MinLines        uint     `json:"minLines"`
	CommitsWeight   float64  `json:"commitsWeight"`
	LinesWeight     float64  `json:"linesWeight"`
	TimeDecay       bool     `json:"timeDecay"`
	Decay           string   `json:"decay"`
	ExcludePaths    []string `json:"excludePaths"`
	ExcludePatterns []string `json:"excludePatterns"`

	// RecentCutoff is the recency window start (YYYY-MM-DD) used by the
	// recent strategy when no since is given.
	RecentCutoff string `json:"recentCutoff,omitempty"`
	// AsOf is the day a clock-dependent decay was evaluated.
	AsOf string `json:"asOf,omitempty"`
}

// canonical returns p with list fields sorted and never nil.
func (p Params) canonical() Params {
	p.ExcludePaths = sortedCopy(p.ExcludePaths)
	p.ExcludePatterns = sortedCopy(p.ExcludePatterns)
	return p
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

// JSON returns the canonical JSON encoding of p.
func (p Params) JSON() []byte {
	// Params has only plain fields; Marshal cannot fail.
	data, _ := json.Marshal(p.canonical())
	return data
}

// CacheKey is the hex BLAKE2b-256 digest of the canonical parameters.
func CacheKey(p Params) string {
	sum := blake2b.Sum256(p.JSON())
	return hex.EncodeToString(sum[:])
}
