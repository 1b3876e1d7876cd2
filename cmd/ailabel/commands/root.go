package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

func Root() *cobra.Command {
	if rootCmd != nil {
		return rootCmd
	}

	rootCmd = &cobra.Command{
		Use:   "ailabel",
		Short: "ailabel — build labeled text datasets and predict labels with an LLM",
		Long: `ailabel maintains topic-scoped labeled text datasets and predicts labels
for new payloads using the existing examples as context.

Quick start:
  ailabel topics new sentiment
  ailabel label "I love it" --topic=sentiment --as=positive
  ailabel predict "This is fantastic" --topic=sentiment`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register all subcommands
	rootCmd.AddCommand(
		versionCmd(),
		topicsCmd(),
		labelCmd(),
		predictCmd(),
		doctorCmd(),
	)

	return rootCmd
}
