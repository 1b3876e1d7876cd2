// Package predcache caches validated prediction results so repeated
// payloads don't spend a model call. A change to the topic's vocabulary or
// the configured model changes the key and sidesteps stale entries.
package predcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"
)

const DefaultTTL = 24 * time.Hour

// Entry is one cached prediction.
type Entry struct {
	Key        string
	Topic      string
	Label      string
	Confidence *float64
	Rationale  string
	ZeroShot   bool
	CreatedAt  time.Time
	ExpiresAt  time.Time
	HitCount   int
}

// Cache is an embedded SQLite-backed cache.
type Cache struct {
	db *sql.DB
}

func New(db *sql.DB) *Cache {
	return &Cache{db: db}
}

func (c *Cache) Init() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS prediction_cache (
			key        TEXT PRIMARY KEY,
			topic      TEXT NOT NULL,
			label      TEXT NOT NULL,
			confidence REAL,
			rationale  TEXT NOT NULL DEFAULT '',
			zero_shot  INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			hit_count  INTEGER DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_predcache_topic ON prediction_cache(topic);
		CREATE INDEX IF NOT EXISTS idx_predcache_expires ON prediction_cache(expires_at);
	`)
	return err
}

// Key computes the canonical cache key for one prediction.
func Key(topic, payloadHash, vocabFingerprint, model string) string {
	h := sha256.New()
	h.Write([]byte(topic + "|" + payloadHash + "|" + vocabFingerprint + "|" + model))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// Get retrieves a cache entry if present and unexpired.
func (c *Cache) Get(key string) (*Entry, bool, error) {
	var e Entry
	var createdAt, expiresAt string
	var conf sql.NullFloat64
	var zeroShot int

	err := c.db.QueryRow(`
		SELECT key, topic, label, confidence, rationale, zero_shot, created_at, expires_at, hit_count
		FROM prediction_cache WHERE key = ?
	`, key).Scan(&e.Key, &e.Topic, &e.Label, &conf, &e.Rationale, &zeroShot, &createdAt, &expiresAt, &e.HitCount)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if conf.Valid {
		v := conf.Float64
		e.Confidence = &v
	}
	e.ZeroShot = zeroShot != 0
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	e.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)

	if time.Now().After(e.ExpiresAt) {
		// Lazy delete
		_, _ = c.db.Exec(`DELETE FROM prediction_cache WHERE key = ?`, key)
		return nil, false, nil
	}

	_, _ = c.db.Exec(`UPDATE prediction_cache SET hit_count = hit_count + 1 WHERE key = ?`, key)
	e.HitCount++

	return &e, true, nil
}

// Set stores an entry, replacing any previous value for the key.
func (c *Cache) Set(key, topic, label string, confidence *float64, rationale string, zeroShot bool, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	var conf any
	if confidence != nil {
		conf = *confidence
	}
	zs := 0
	if zeroShot {
		zs = 1
	}
	now := time.Now().UTC()
	_, err := c.db.Exec(`
		INSERT OR REPLACE INTO prediction_cache
		(key, topic, label, confidence, rationale, zero_shot, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, key, topic, label, conf, rationale, zs,
		now.Format(time.RFC3339), now.Add(ttl).Format(time.RFC3339))
	return err
}

// Purge removes all expired entries.
func (c *Cache) Purge() (int64, error) {
	res, err := c.db.Exec(`DELETE FROM prediction_cache WHERE expires_at < ?`,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
