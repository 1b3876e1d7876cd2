// Package predict issues a prediction request against the external LLM
// capability and validates the answer against the topic's vocabulary.
package predict

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ailabeldev/ailabel/internal/prompt"
)

// Request is the input to one capability call.
type Request struct {
	Topic      string
	Vocabulary Vocabulary
	Context    prompt.Context
}

// Reply is the capability's raw, unvalidated answer. Confidence is nil when
// the provider did not report one; the engine never fabricates a number.
type Reply struct {
	Label      string
	Confidence *float64
	Rationale  string
}

// Capability is the external LLM service, treated as a black box: given a
// prompt and candidate labels, return a label and confidence. A reply the
// capability could not parse should come back as an error wrapping
// ErrInvalidPrediction; anything else is treated as a transport failure.
type Capability interface {
	Predict(ctx context.Context, req Request) (*Reply, error)
}

// Result is a validated prediction.
type Result struct {
	Label      string
	Confidence *float64
	Rationale  string
	ZeroShot   bool
}

type Engine struct {
	cap    Capability
	logger *zap.Logger
}

func NewEngine(cap Capability, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cap: cap, logger: logger}
}

// Predict calls the capability and validates the reply. Transport failures
// get exactly one retry; a second consecutive failure surfaces as
// ErrPredictionFailed. The result is returned, never persisted here.
func (e *Engine) Predict(ctx context.Context, topic string, vocab Vocabulary, pc prompt.Context) (*Result, error) {
	req := Request{Topic: topic, Vocabulary: vocab, Context: pc}

	reply, err := e.cap.Predict(ctx, req)
	if err != nil && retryable(err) {
		e.logger.Warn("prediction transport failure, retrying",
			zap.String("topic", topic), zap.Error(err))
		reply, err = e.cap.Predict(ctx, req)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidPrediction) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}

	canonical, ok := vocab.Match(reply.Label)
	if !ok {
		return nil, fmt.Errorf("label %q not in topic vocabulary: %w", reply.Label, ErrInvalidPrediction)
	}
	if reply.Confidence != nil && (*reply.Confidence < 0 || *reply.Confidence > 1) {
		return nil, fmt.Errorf("confidence %v outside [0,1]: %w", *reply.Confidence, ErrInvalidPrediction)
	}

	return &Result{
		Label:      canonical,
		Confidence: reply.Confidence,
		Rationale:  reply.Rationale,
		ZeroShot:   pc.ZeroShot,
	}, nil
}

// retryable reports whether an error is transport-level. Malformed replies
// and caller cancellation are not worth a second call.
func retryable(err error) bool {
	if errors.Is(err, ErrInvalidPrediction) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return true
}
