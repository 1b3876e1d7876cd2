package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			topics, err := a.store.ListTopics()
			if err != nil {
				return err
			}

			fmt.Printf("  %-20s %s\n", "data dir", a.cfg.DataDir)
			fmt.Printf("  %-20s %s\n", "database", filepath.Join(a.cfg.DataDir, "ailabel.db"))
			fmt.Printf("  %-20s %s\n", "model", a.cfg.Model)
			fmt.Printf("  %-20s %s\n", "api key", maskKey(a.cfg.APIKey))
			fmt.Printf("  %-20s %v\n", "request timeout", a.cfg.RequestTimeout)
			fmt.Printf("  %-20s %d\n", "topics", len(topics))
			return nil
		},
	}
}

func maskKey(key string) string {
	if key == "" {
		return "not set"
	}
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
