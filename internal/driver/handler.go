package driver

import (
	"context"
	"time"

	"github.com/ailabeldev/ailabel/internal/dataset"
	"github.com/ailabeldev/ailabel/internal/predcache"
	"github.com/ailabeldev/ailabel/internal/predict"
	"github.com/ailabeldev/ailabel/internal/prompt"
)

// Handler processes one payload. Single, batch, and interactive modes all
// funnel through the same per-item path so validation and error handling
// aren't duplicated.
type Handler interface {
	Handle(ctx context.Context, payload string) (*Record, error)
}

// LabelHandler writes a human label for each payload.
type LabelHandler struct {
	Store *dataset.Store
	Topic string
	Value string
}

func (h *LabelHandler) Handle(ctx context.Context, payload string) (*Record, error) {
	l, err := h.Store.AddLabel(h.Topic, payload, h.Value, dataset.SourceHuman, nil, "")
	if err != nil {
		return nil, err
	}
	return &Record{
		Input:  payload,
		Label:  l.Value,
		Source: string(dataset.SourceHuman),
		Stored: true,
	}, nil
}

// PredictHandler predicts a label for each payload using the topic's stored
// examples. With Persist, the validated result is written back as a
// model-sourced label.
type PredictHandler struct {
	Store   *dataset.Store
	Engine  *predict.Engine
	Builder *prompt.Builder
	Topic   string
	Persist bool

	// Cache is optional; when set, validated results are cached and looked
	// up before spending a model call.
	Cache    *predcache.Cache
	CacheTTL time.Duration
	Model    string
}

func (h *PredictHandler) Handle(ctx context.Context, payload string) (*Record, error) {
	examples, err := h.Store.ListLabeledPayloads(h.Topic, true)
	if err != nil {
		return nil, err
	}
	values, err := h.Store.ListLabelValues(h.Topic)
	if err != nil {
		return nil, err
	}
	vocab := predict.NewVocabulary(values)
	pc := h.Builder.Build(examples, payload)

	var key string
	if h.Cache != nil {
		key = predcache.Key(h.Topic, dataset.HashText(pc.Target), vocab.Fingerprint(), h.Model)
		if entry, ok, err := h.Cache.Get(key); err == nil && ok {
			rec := &Record{
				Input:      payload,
				Label:      entry.Label,
				Confidence: entry.Confidence,
				Rationale:  entry.Rationale,
				Source:     string(dataset.SourceModel),
				ZeroShot:   entry.ZeroShot,
				Cached:     true,
			}
			return h.persist(rec)
		}
	}

	res, err := h.Engine.Predict(ctx, h.Topic, vocab, pc)
	if err != nil {
		return nil, err
	}

	if h.Cache != nil {
		_ = h.Cache.Set(key, h.Topic, res.Label, res.Confidence, res.Rationale, res.ZeroShot, h.CacheTTL)
	}

	rec := &Record{
		Input:      payload,
		Label:      res.Label,
		Confidence: res.Confidence,
		Rationale:  res.Rationale,
		Source:     string(dataset.SourceModel),
		ZeroShot:   res.ZeroShot,
	}
	return h.persist(rec)
}

func (h *PredictHandler) persist(rec *Record) (*Record, error) {
	if !h.Persist {
		return rec, nil
	}
	conf := rec.Confidence
	if conf == nil {
		// Store requires a confidence for model labels; an unreported one
		// is recorded as zero rather than invented.
		zero := 0.0
		conf = &zero
	}
	if _, err := h.Store.AddLabel(h.Topic, rec.Input, rec.Label, dataset.SourceModel, conf, rec.Rationale); err != nil {
		return nil, err
	}
	rec.Stored = true
	return rec, nil
}
