package storage

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ownergen/internal/errors"
	"ownergen/internal/ownership"
)

// Entry describes one cached ownership table.
type Entry struct {
	Key       string    `json:"key"`
	TipCommit string    `json:"tipCommit"`
	RunID     string    `json:"runId"`
	Params    string    `json:"params"`
	Files     int       `json:"files"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is one cached analysis result.
type Snapshot struct {
	RunID   string
	Summary ownership.Summary
	Table   ownership.Table
}

// Cache stores ownership tables keyed by CacheKey and validated against the
// branch tip they were computed at. Read failures never surface: they are
// logged and reported as a miss.
type Cache struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// NewCache creates a cache on db.
func NewCache(db *DB, logger *slog.Logger) *Cache {
	return &Cache{db: db, logger: logger, now: time.Now}
}

// Get returns the snapshot stored under key. A stored tip that differs from
// tip is a miss; an empty tip on either side skips the check.
func (c *Cache) Get(key, tip string) (Snapshot, bool) {
	var storedTip, runID string
	var payload []byte

	err := c.db.QueryRow(`
		SELECT tip_commit, run_id, payload
		FROM ownership_cache
		WHERE key = ?
	`, key).Scan(&storedTip, &runID, &payload)

	if err == sql.ErrNoRows {
		c.logger.Debug("Cache miss", "key", key)
		return Snapshot{}, false
	}
	if err != nil {
		c.warnCorrupt("Cache lookup failed", key, err)
		return Snapshot{}, false
	}

	if tip != "" && storedTip != "" && tip != storedTip {
		c.logger.Debug("Cache entry is stale",
			"key", key,
			"storedTip", storedTip,
			"tip", tip,
		)
		return Snapshot{}, false
	}

	snap, err := decodeSnapshot(payload)
	if err != nil {
		c.warnCorrupt("Cache payload is corrupt", key, err)
		return Snapshot{}, false
	}
	snap.RunID = runID

	c.logger.Debug("Cache hit", "key", key, "runId", runID, "files", len(snap.Table))
	return snap, true
}

func (c *Cache) warnCorrupt(msg, key string, err error) {
	c.logger.Warn(msg,
		"key", key,
		"error", errors.New(errors.CacheCorrupt, msg, err).Error(),
	)
}

// Set stores table and its summary under key and returns the new entry's
// run id.
func (c *Cache) Set(key, tip string, params Params, table ownership.Table, summary ownership.Summary) (string, error) {
	payload, err := encodeSnapshot(Snapshot{Summary: summary, Table: table})
	if err != nil {
		return "", errors.New(errors.CacheCorrupt, "failed to encode cache payload", err)
	}

	runID := uuid.NewString()
	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO ownership_cache
			(key, tip_commit, run_id, params_json, payload, file_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, key, tip, runID, string(params.JSON()), payload, len(table), c.now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", errors.New(errors.CacheCorrupt, "failed to write cache entry", err)
	}

	c.logger.Debug("Cache stored",
		"key", key,
		"runId", runID,
		"files", len(table),
		"bytes", len(payload),
	)
	return runID, nil
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	res, err := c.db.Exec("DELETE FROM ownership_cache")
	if err != nil {
		return 0, errors.New(errors.CacheCorrupt, "failed to clear cache", err)
	}
	return rowsCleared(res)
}

func rowsCleared(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.New(errors.CacheCorrupt, "failed to count cleared cache entries", err)
	}
	return int(n), nil
}

// List returns all entries, newest first.
func (c *Cache) List() ([]Entry, error) {
	rows, err := c.db.Query(`
		SELECT key, tip_commit, run_id, params_json, file_count, length(payload), created_at
		FROM ownership_cache
		ORDER BY created_at DESC, key
	`)
	if err != nil {
		return nil, errors.New(errors.CacheCorrupt, "failed to list cache", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.Key, &e.TipCommit, &e.RunID, &e.Params, &e.Files, &e.Size, &created); err != nil {
			return nil, errors.New(errors.CacheCorrupt, "failed to read cache entry", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(errors.CacheCorrupt, "failed to list cache", err)
	}
	return entries, nil
}
