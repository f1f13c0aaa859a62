// Package cache persists diagnostics keyed by a content hash of the
// analyzed file plus a caller-supplied settings hash, so an unchanged file
// under unchanged settings can skip a full re-walk (§2.3 domain stack:
// diagnostics cache).
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/minio/highwayhash"
	_ "modernc.org/sqlite"

	"github.com/cwbudde/pywalk/pkg/diagnostic"
)

// hashKey is the fixed highwayhash key used to content-address cache rows;
// it only needs to be stable across runs, not secret.
var hashKey = []byte("pywalk-diagnostics-cache-key-012")

// Cache is a SQLite-backed diagnostics cache, one row per content hash; the
// row records the settings hash it was stored under, and a later Store for
// the same content replaces it.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path and ensures
// its schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS diagnostics (
	content_hash  TEXT PRIMARY KEY,
	settings_hash TEXT NOT NULL,
	run_id        TEXT NOT NULL,
	payload       TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Hash content-addresses src under a fixed key (§3 domain stack: cache
// hashing), rendered as hex for use as a primary key.
func Hash(src []byte) (string, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return "", err
	}
	if _, err := h.Write(src); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Lookup returns the cached diagnostics for (contentHash, settingsHash), if
// any row matches both.
func (c *Cache) Lookup(contentHash, settingsHash string) (diagnostic.Vector, bool, error) {
	var payload string
	err := c.db.QueryRow(
		`SELECT payload FROM diagnostics WHERE content_hash = ? AND settings_hash = ?`,
		contentHash, settingsHash,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup: %w", err)
	}
	var vec diagnostic.Vector
	if err := json.Unmarshal([]byte(payload), &vec); err != nil {
		return nil, false, fmt.Errorf("cache: decoding cached row: %w", err)
	}
	return vec, true, nil
}

// Store upserts diagnostics for (contentHash, settingsHash), stamping a
// fresh run id for observability.
func (c *Cache) Store(contentHash, settingsHash string, diags diagnostic.Vector) error {
	payload, err := json.Marshal(diags)
	if err != nil {
		return fmt.Errorf("cache: encoding row: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT INTO diagnostics (content_hash, settings_hash, run_id, payload)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(content_hash) DO UPDATE SET settings_hash = excluded.settings_hash,
		   run_id = excluded.run_id, payload = excluded.payload`,
		contentHash, settingsHash, uuid.NewString(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("cache: storing row: %w", err)
	}
	return nil
}
