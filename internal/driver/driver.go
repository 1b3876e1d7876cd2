// Package driver orchestrates single-item, streaming, and interactive
// labeling/prediction flows over a shared per-item handler.
package driver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ailabeldev/ailabel/internal/dataset"
)

type Driver struct {
	Handler Handler
	Sink    Sink
	Logger  *zap.Logger

	// Workers bounds concurrent handling in stream mode. <=1 means
	// sequential processing.
	Workers int
}

func (d *Driver) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// RunSingle processes one payload. An error terminates the operation and is
// returned to the caller.
func (d *Driver) RunSingle(ctx context.Context, payload string) error {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return fmt.Errorf("payload is empty: %w", dataset.ErrInvalidLabel)
	}
	rec, err := d.Handler.Handle(ctx, payload)
	if err != nil {
		return err
	}
	return d.Sink.Emit(rec)
}

// RunStream reads successive lines from r, treating each non-empty line as
// one payload. Exactly one record is emitted per surviving line, in input
// order, even when items fail or are handled concurrently. Returns the
// number of failed items.
func (d *Driver) RunStream(ctx context.Context, r io.Reader) (failed int, err error) {
	if d.Workers > 1 {
		return d.runStreamConcurrent(ctx, r)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		payload := strings.TrimSpace(scanner.Text())
		if payload == "" {
			continue
		}
		rec := d.handleOne(ctx, payload)
		if rec.Failed() {
			failed++
		}
		if err := d.Sink.Emit(rec); err != nil {
			return failed, err
		}
	}
	if err := scanner.Err(); err != nil {
		return failed, fmt.Errorf("read input: %w", err)
	}
	return failed, nil
}

// runStreamConcurrent fans items out to a bounded pool. Completions land in
// indexed slots and are flushed in input order after the pool drains, so
// output ordering never depends on completion order.
func (d *Driver) runStreamConcurrent(ctx context.Context, r io.Reader) (failed int, err error) {
	var payloads []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p := strings.TrimSpace(scanner.Text())
		if p != "" {
			payloads = append(payloads, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read input: %w", err)
	}

	records := make([]*Record, len(payloads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers)
	for i, p := range payloads {
		i, p := i, p
		g.Go(func() error {
			records[i] = d.handleOne(gctx, p)
			return nil
		})
	}
	_ = g.Wait()

	for _, rec := range records {
		if rec.Failed() {
			failed++
		}
		if err := d.Sink.Emit(rec); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

// handleOne is the per-item recovery boundary for stream mode: a failure
// becomes a failure record, not an abort.
func (d *Driver) handleOne(ctx context.Context, payload string) *Record {
	rec, err := d.Handler.Handle(ctx, payload)
	if err != nil {
		d.logger().Debug("item failed", zap.String("payload", payload), zap.Error(err))
		return &Record{Input: payload, Err: err.Error()}
	}
	return rec
}

// RunInteractiveLabel prompts for payload/label pairs on in until a blank
// payload line (or EOF) and writes each confirmed pair immediately.
func RunInteractiveLabel(ctx context.Context, store *dataset.Store, topic string, in io.Reader, out io.Writer, sink Sink) (failed int, err error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprintf(out, "Interactive labeling for topic %q. Empty payload exits.\n", topic)
	for {
		fmt.Fprint(out, "payload> ")
		if !scanner.Scan() {
			break
		}
		payload := strings.TrimSpace(scanner.Text())
		if payload == "" {
			break
		}

		fmt.Fprint(out, "label> ")
		if !scanner.Scan() {
			break
		}
		value := strings.TrimSpace(scanner.Text())

		h := &LabelHandler{Store: store, Topic: topic, Value: value}
		rec, err := h.Handle(ctx, payload)
		if err != nil {
			failed++
			rec = &Record{Input: payload, Err: err.Error()}
		}
		if err := sink.Emit(rec); err != nil {
			return failed, err
		}
	}
	if err := scanner.Err(); err != nil {
		return failed, fmt.Errorf("read input: %w", err)
	}
	return failed, nil
}
