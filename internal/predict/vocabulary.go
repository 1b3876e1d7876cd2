package predict

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// VocabularyKind distinguishes an open (free-form) label set from a closed
// one. Explicit, so "no labels known yet" and "no labels allowed" can't be
// confused.
type VocabularyKind int

const (
	Open VocabularyKind = iota
	Closed
)

// Vocabulary is the set of labels a prediction may return. A Closed
// vocabulary carries the canonical casing of each value.
type Vocabulary struct {
	Kind   VocabularyKind
	Values []string
}

// NewVocabulary builds a Closed vocabulary from the observed values, or an
// Open one when none exist.
func NewVocabulary(values []string) Vocabulary {
	if len(values) == 0 {
		return Vocabulary{Kind: Open}
	}
	return Vocabulary{Kind: Closed, Values: values}
}

// Match reports whether label is a case-insensitive exact match of a
// vocabulary entry, returning the canonical stored casing. An Open
// vocabulary matches any non-empty label as-is.
func (v Vocabulary) Match(label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	if v.Kind == Open {
		return label, true
	}
	for _, val := range v.Values {
		if strings.EqualFold(val, label) {
			return val, true
		}
	}
	return "", false
}

// Fingerprint returns a stable digest of the vocabulary, used in prediction
// cache keys so a vocabulary change invalidates cached results.
func (v Vocabulary) Fingerprint() string {
	if v.Kind == Open {
		return "open"
	}
	vals := make([]string, len(v.Values))
	for i, s := range v.Values {
		vals[i] = strings.ToLower(s)
	}
	sort.Strings(vals)
	sum := sha256.Sum256([]byte(strings.Join(vals, "|")))
	return hex.EncodeToString(sum[:])[:16]
}
