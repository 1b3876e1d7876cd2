package predict

import "errors"

var (
	// ErrInvalidPrediction marks a model reply that failed validation: a
	// label outside a closed vocabulary, an empty label, or a confidence
	// outside [0,1]. Never coerced to a nearby label.
	ErrInvalidPrediction = errors.New("invalid prediction")

	// ErrPredictionFailed marks a transport or provider failure that
	// persisted through the retry.
	ErrPredictionFailed = errors.New("prediction failed")

	// ErrMissingCredential is reported before any network attempt when no
	// API key is configured.
	ErrMissingCredential = errors.New("missing credential")
)
