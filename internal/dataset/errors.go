package dataset

import "errors"

// Structured store errors. Callers match with errors.Is; every store
// operation wraps one of these with context rather than inventing new text.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidLabel  = errors.New("invalid label")
)
