package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ailabeldev/ailabel/internal/driver"
	"github.com/ailabeldev/ailabel/internal/gemini"
	"github.com/ailabeldev/ailabel/internal/predcache"
	"github.com/ailabeldev/ailabel/internal/predict"
	"github.com/ailabeldev/ailabel/internal/prompt"
)

func predictCmd() *cobra.Command {
	var topic string
	var batch bool
	var jsonOut bool
	var store bool
	var workers int
	var noCache bool

	cmd := &cobra.Command{
		Use:   "predict [<text>|-]",
		Short: "Predict a label for one or more payloads",
		Long: `Predict a label for a payload using the topic's stored examples as
context.

Usage:
  ailabel predict "This is fantastic" --topic=sentiment
  echo "This is fantastic" | ailabel predict - --topic=sentiment
  cat payloads.txt | ailabel predict --topic=sentiment --batch --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if topic == "" {
				return fmt.Errorf("--topic is required")
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			// Credential absence is its own condition, detected before any
			// network attempt.
			if a.cfg.APIKey == "" {
				return fmt.Errorf("%w: set GEMINI_API_KEY (or AILABEL_API_KEY)", predict.ErrMissingCredential)
			}

			// Fail on an unknown topic before touching the provider.
			if _, err := a.store.GetTopic(topic); err != nil {
				return err
			}

			ctx := context.Background()
			llm, err := gemini.NewClient(ctx, gemini.Config{
				APIKey:  a.cfg.APIKey,
				Model:   a.cfg.Model,
				Timeout: a.cfg.RequestTimeout,
			}, a.logger)
			if err != nil {
				return err
			}
			defer llm.Close()

			builder := prompt.NewBuilder()
			builder.MaxExamples = a.cfg.MaxExamples

			var cache *predcache.Cache
			if !noCache {
				cache = a.cache
			}
			handler := &driver.PredictHandler{
				Store:    a.store,
				Engine:   predict.NewEngine(llm, a.logger),
				Builder:  builder,
				Topic:    topic,
				Persist:  store,
				Cache:    cache,
				CacheTTL: a.cfg.CacheTTL,
				Model:    a.cfg.Model,
			}
			d := &driver.Driver{
				Handler: handler,
				Sink:    newSink(jsonOut),
				Logger:  a.logger,
				Workers: workers,
			}

			if batch {
				failed, err := d.RunStream(ctx, os.Stdin)
				if err != nil {
					return err
				}
				return failedErr(failed)
			}

			if len(args) == 0 {
				return fmt.Errorf("payload required (or use --batch with stdin)")
			}
			payload, err := resolvePayload(args[0])
			if err != nil {
				return err
			}
			return d.RunSingle(ctx, payload)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic whose examples drive the prediction (required)")
	cmd.Flags().BoolVar(&batch, "batch", false, "read one payload per line from stdin")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit one JSON object per result")
	cmd.Flags().BoolVar(&store, "store", false, "persist each prediction as a model-sourced label")
	cmd.Flags().IntVar(&workers, "workers", 1, "concurrent predictions in batch mode (output stays in input order)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the prediction cache")

	return cmd
}
