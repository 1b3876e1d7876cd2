package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ailabeldev/ailabel/internal/driver"
)

func labelCmd() *cobra.Command {
	var topic string
	var value string
	var interactive bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "label [<text>|-]",
		Short: "Record a human label for a payload",
		Long: `Record a human-assigned label for a payload in a topic.

Usage:
  ailabel label "This product is amazing!" --topic=sentiment --as=positive
  echo "This product is amazing!" | ailabel label - --topic=sentiment --as=positive
  ailabel label --topic=sentiment --interactive`,
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

			ctx := context.Background()
			sink := newSink(jsonOut)

			if interactive {
				failed, err := driver.RunInteractiveLabel(ctx, a.store, topic, os.Stdin, os.Stderr, sink)
				if err != nil {
					return err
				}
				return failedErr(failed)
			}

			if len(args) == 0 {
				return fmt.Errorf("payload required (or use --interactive)")
			}
			if value == "" {
				return fmt.Errorf("--as is required")
			}
			payload, err := resolvePayload(args[0])
			if err != nil {
				return err
			}

			d := &driver.Driver{
				Handler: &driver.LabelHandler{Store: a.store, Topic: topic, Value: value},
				Sink:    sink,
				Logger:  a.logger,
			}
			return d.RunSingle(ctx, payload)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic to label under (required)")
	cmd.Flags().StringVar(&value, "as", "", "label value to assign")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "prompt for payload/label pairs until an empty line")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit one JSON object per result")

	return cmd
}
