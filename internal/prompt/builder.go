// Package prompt turns stored labeled examples into a bounded context for a
// prediction call. It never talks to the store or the model itself.
package prompt

import (
	"strings"

	"github.com/ailabeldev/ailabel/internal/dataset"
)

const (
	// DefaultMaxExamples bounds how many labeled pairs enter the context.
	// A tuning knob, not a correctness constraint.
	DefaultMaxExamples = 50

	// DefaultMaxExampleChars is the per-example character budget.
	DefaultMaxExampleChars = 500
)

// Example is one prior (text, label) pair shown to the model.
type Example struct {
	Text  string
	Label string
}

// Context is the bounded input for one prediction call. ZeroShot marks a
// context with no prior examples; prediction still proceeds, the flag is
// policy carried through to the result.
type Context struct {
	Examples []Example
	Target   string
	ZeroShot bool
}

type Builder struct {
	MaxExamples     int
	MaxExampleChars int
}

func NewBuilder() *Builder {
	return &Builder{
		MaxExamples:     DefaultMaxExamples,
		MaxExampleChars: DefaultMaxExampleChars,
	}
}

// Build selects up to MaxExamples most-recent pairs, dedupes by text, and
// truncates each example and the target to the character budget. Input is
// expected in creation order (oldest first), as the store returns it.
func (b *Builder) Build(labeled []dataset.LabeledPayload, target string) Context {
	maxN := b.MaxExamples
	if maxN <= 0 {
		maxN = DefaultMaxExamples
	}

	// Walk newest-first so the cap keeps the most recent examples, then
	// reverse back to chronological order for the model.
	seen := make(map[string]bool, len(labeled))
	var picked []Example
	for i := len(labeled) - 1; i >= 0 && len(picked) < maxN; i-- {
		text := strings.TrimSpace(labeled[i].Payload.Text)
		if text == "" || seen[text] {
			continue
		}
		seen[text] = true
		picked = append(picked, Example{
			Text:  b.truncate(text),
			Label: labeled[i].Latest.Value,
		})
	}
	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}

	return Context{
		Examples: picked,
		Target:   b.truncate(strings.TrimSpace(target)),
		ZeroShot: len(picked) == 0,
	}
}

func (b *Builder) truncate(text string) string {
	maxC := b.MaxExampleChars
	if maxC <= 0 {
		maxC = DefaultMaxExampleChars
	}
	runes := []rune(text)
	if len(runes) <= maxC {
		return text
	}
	return string(runes[:maxC]) + "…"
}
