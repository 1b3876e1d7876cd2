package dataset

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store owns the topics, payloads, and labels tables. All writes go through
// the store's insertion API and are serialized; a failed write leaves the
// database unchanged.
type Store struct {
	db     *sql.DB
	logger *zap.Logger

	mu sync.Mutex // serializes writes; reads go straight to sqlite
}

func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Init creates the tables if they don't exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS topics (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS payloads (
			id         TEXT PRIMARY KEY,
			topic_id   TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
			text       TEXT NOT NULL,
			text_hash  TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (topic_id, text_hash)
		);
		CREATE TABLE IF NOT EXISTS labels (
			id         TEXT PRIMARY KEY,
			payload_id TEXT NOT NULL REFERENCES payloads(id) ON DELETE CASCADE,
			value      TEXT NOT NULL,
			source     TEXT NOT NULL CHECK (source IN ('human','model')),
			confidence REAL,
			rationale  TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_payloads_topic ON payloads(topic_id);
		CREATE INDEX IF NOT EXISTS idx_labels_payload ON labels(payload_id);
	`)
	return err
}

// CreateTopic inserts a new topic. Names are case-sensitive and collide
// exactly.
func (s *Store) CreateTopic(name, description string) (*Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("topic name is empty: %w", ErrInvalidLabel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM topics WHERE name = ?`, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("query topic: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("topic %q: %w", name, ErrAlreadyExists)
	}

	t := &Topic{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(`
		INSERT INTO topics (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.Name, t.Description, t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert topic: %w", err)
	}

	s.logger.Debug("topic created", zap.String("topic", t.Name))
	return t, nil
}

// GetTopic retrieves a topic by exact name.
func (s *Store) GetTopic(name string) (*Topic, error) {
	var t Topic
	var created string
	err := s.db.QueryRow(`
		SELECT id, name, description, created_at FROM topics WHERE name = ?
	`, name).Scan(&t.ID, &t.Name, &t.Description, &created)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("topic %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query topic: %w", err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &t, nil
}

// ListTopics returns all topics in creation order.
func (s *Store) ListTopics() ([]*Topic, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, created_at FROM topics ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var out []*Topic
	for rows.Next() {
		var t Topic
		var created string
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &created); err != nil {
			return nil, err
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, &t)
	}
	return out, rows.Err()
}

// AddLabel records a label for a payload in a topic. The payload text is
// trimmed; if a payload with the same normalized text already exists in the
// topic it is reused. The insert is a single transaction.
func (s *Store) AddLabel(topicName, payloadText, value string, source Source, confidence *float64, rationale string) (*Label, error) {
	payloadText = strings.TrimSpace(payloadText)
	if payloadText == "" {
		return nil, fmt.Errorf("payload text is empty: %w", ErrInvalidLabel)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("label value is empty: %w", ErrInvalidLabel)
	}
	switch source {
	case SourceHuman:
		// confidence optional
	case SourceModel:
		if confidence == nil {
			return nil, fmt.Errorf("model label requires confidence: %w", ErrInvalidLabel)
		}
	default:
		return nil, fmt.Errorf("unknown source %q: %w", source, ErrInvalidLabel)
	}
	if confidence != nil && (*confidence < 0 || *confidence > 1) {
		return nil, fmt.Errorf("confidence %v outside [0,1]: %w", *confidence, ErrInvalidLabel)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	topic, err := s.GetTopic(topicName)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	hash := HashText(payloadText)
	var payloadID string
	err = tx.QueryRow(`
		SELECT id FROM payloads WHERE topic_id = ? AND text_hash = ?
	`, topic.ID, hash).Scan(&payloadID)
	if err == sql.ErrNoRows {
		payloadID = uuid.New().String()
		_, err = tx.Exec(`
			INSERT INTO payloads (id, topic_id, text, text_hash, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, payloadID, topic.ID, payloadText, hash, time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return nil, fmt.Errorf("insert payload: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("query payload: %w", err)
	}

	l := &Label{
		ID:         uuid.New().String(),
		PayloadID:  payloadID,
		Value:      value,
		Source:     source,
		Confidence: confidence,
		Rationale:  rationale,
		CreatedAt:  time.Now().UTC(),
	}
	_, err = tx.Exec(`
		INSERT INTO labels (id, payload_id, value, source, confidence, rationale, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.PayloadID, l.Value, string(l.Source), nullableFloat(l.Confidence), l.Rationale,
		l.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert label: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("label recorded",
		zap.String("topic", topic.Name),
		zap.String("value", l.Value),
		zap.String("source", string(l.Source)))
	return l, nil
}

// ListLabeledPayloads returns each labeled payload in the topic paired with
// its most recent label, in payload creation order. With humanOnly, payloads
// whose latest label is model-sourced are excluded — the prompt builder uses
// this to keep model guesses out of prediction context.
func (s *Store) ListLabeledPayloads(topicName string, humanOnly bool) ([]LabeledPayload, error) {
	topic, err := s.GetTopic(topicName)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT p.id, p.topic_id, p.text, p.text_hash, p.created_at,
		       l.id, l.value, l.source, l.confidence, l.rationale, l.created_at
		FROM payloads p
		JOIN labels l ON l.payload_id = p.id
		WHERE p.topic_id = ?
		  AND l.rowid = (
			SELECT l2.rowid FROM labels l2 WHERE l2.payload_id = p.id
			ORDER BY l2.created_at DESC, l2.rowid DESC LIMIT 1
		  )`
	if humanOnly {
		query += ` AND l.source = 'human'`
	}
	query += ` ORDER BY p.created_at ASC, p.rowid ASC`

	rows, err := s.db.Query(query, topic.ID)
	if err != nil {
		return nil, fmt.Errorf("query labeled payloads: %w", err)
	}
	defer rows.Close()

	var out []LabeledPayload
	for rows.Next() {
		var lp LabeledPayload
		var pCreated, lCreated string
		var conf sql.NullFloat64
		if err := rows.Scan(
			&lp.Payload.ID, &lp.Payload.TopicID, &lp.Payload.Text, &lp.Payload.TextHash, &pCreated,
			&lp.Latest.ID, &lp.Latest.Value, &lp.Latest.Source, &conf, &lp.Latest.Rationale, &lCreated,
		); err != nil {
			return nil, err
		}
		lp.Latest.PayloadID = lp.Payload.ID
		if conf.Valid {
			c := conf.Float64
			lp.Latest.Confidence = &c
		}
		lp.Payload.CreatedAt, _ = time.Parse(time.RFC3339Nano, pCreated)
		lp.Latest.CreatedAt, _ = time.Parse(time.RFC3339Nano, lCreated)
		out = append(out, lp)
	}
	return out, rows.Err()
}

// CountLabels returns the total number of label rows in the topic, history
// included.
func (s *Store) CountLabels(topicName string) (int, error) {
	topic, err := s.GetTopic(topicName)
	if err != nil {
		return 0, err
	}
	var n int
	err = s.db.QueryRow(`
		SELECT COUNT(*) FROM labels l
		JOIN payloads p ON p.id = l.payload_id
		WHERE p.topic_id = ?
	`, topic.ID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count labels: %w", err)
	}
	return n, nil
}

// ListLabelValues returns the distinct label values observed in the topic,
// in first-seen order. This is the topic's vocabulary for prediction.
func (s *Store) ListLabelValues(topicName string) ([]string, error) {
	topic, err := s.GetTopic(topicName)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`
		SELECT l.value FROM labels l
		JOIN payloads p ON p.id = l.payload_id
		WHERE p.topic_id = ?
		GROUP BY l.value
		ORDER BY MIN(l.rowid) ASC
	`, topic.ID)
	if err != nil {
		return nil, fmt.Errorf("query label values: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// LabelStats returns value -> count over each payload's latest label.
func (s *Store) LabelStats(topicName string) (map[string]int, error) {
	labeled, err := s.ListLabeledPayloads(topicName, false)
	if err != nil {
		return nil, err
	}
	stats := make(map[string]int)
	for _, lp := range labeled {
		stats[lp.Latest.Value]++
	}
	return stats, nil
}

// HashText is the canonical payload content hash used for per-topic dedup.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
