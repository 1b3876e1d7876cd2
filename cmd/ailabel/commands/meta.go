package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

const Version = "1.0.0"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ailabel %s\n", Version)
		},
	}
}
