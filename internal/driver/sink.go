package driver

import (
	"encoding/json"
	"fmt"
	"io"
)

// Sink emits one record per processed item. In streaming contexts each
// emission is one line so every line is independently parseable.
type Sink interface {
	Emit(rec *Record) error
}

// PlainSink writes one human-readable line per record.
type PlainSink struct {
	W io.Writer
}

func (s *PlainSink) Emit(rec *Record) error {
	if rec.Failed() {
		_, err := fmt.Fprintf(s.W, "error: %s | payload: %q\n", rec.Err, rec.Input)
		return err
	}
	line := fmt.Sprintf("%s | payload: %q", rec.Label, rec.Input)
	if rec.Confidence != nil {
		line += fmt.Sprintf(" | confidence: %.2f", *rec.Confidence)
	}
	if rec.ZeroShot {
		line += " | zero-shot"
	}
	if rec.Cached {
		line += " | cached"
	}
	if rec.Stored {
		line += " | stored"
	}
	_, err := fmt.Fprintln(s.W, line)
	return err
}

// JSONSink writes one self-describing JSON object per line.
type JSONSink struct {
	W io.Writer
}

func (s *JSONSink) Emit(rec *Record) error {
	return json.NewEncoder(s.W).Encode(rec)
}
