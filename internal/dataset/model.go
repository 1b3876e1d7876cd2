package dataset

import "time"

// Source identifies who assigned a label.
type Source string

const (
	SourceHuman Source = "human"
	SourceModel Source = "model"
)

// Topic is a named classification category. Names are case-sensitive and
// immutable after creation.
type Topic struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Payload is a unit of text to classify, scoped to one topic. The same text
// in two topics is two distinct rows. Text is stored trimmed; TextHash
// dedupes within a topic.
type Payload struct {
	ID        string
	TopicID   string
	Text      string
	TextHash  string
	CreatedAt time.Time
}

// Label is one classification of a payload. Rows are append-only: a new
// human label supersedes the old one as "latest" without deleting history,
// and model predictions accumulate for auditing drift.
type Label struct {
	ID         string
	PayloadID  string
	Value      string
	Source     Source
	Confidence *float64
	Rationale  string
	CreatedAt  time.Time
}

// LabeledPayload pairs a payload with its most recent label.
type LabeledPayload struct {
	Payload Payload
	Latest  Label
}
