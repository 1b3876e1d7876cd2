package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func topicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Manage topics",
	}
	cmd.AddCommand(topicsNewCmd(), topicsListCmd(), topicsInfoCmd())
	return cmd
}

func topicsNewCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a new topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.store.CreateTopic(args[0], description)
			if err != nil {
				return fmt.Errorf("create topic: %w", err)
			}
			fmt.Printf("Topic %q created.\n", t.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "optional topic description")
	return cmd
}

func topicsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all topics in creation order",
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
			if len(topics) == 0 {
				fmt.Println("  No topics yet. Try: ailabel topics new <name>")
				return nil
			}

			fmt.Printf("  %-24s  %-19s  %s\n", "NAME", "CREATED", "DESCRIPTION")
			fmt.Printf("  %s  %s  %s\n",
				strings.Repeat("-", 24), strings.Repeat("-", 19), strings.Repeat("-", 24))
			for _, t := range topics {
				desc := t.Description
				if desc == "" {
					desc = "-"
				}
				fmt.Printf("  %-24s  %-19s  %s\n", t.Name, t.CreatedAt.Format("2006-01-02T15:04:05"), desc)
			}
			return nil
		},
	}
}

func topicsInfoCmd() *cobra.Command {
	var showLabels bool
	cmd := &cobra.Command{
		Use:   "info <name>",
		Short: "Show a topic summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.store.GetTopic(args[0])
			if err != nil {
				return err
			}
			total, err := a.store.CountLabels(t.Name)
			if err != nil {
				return err
			}
			labeled, err := a.store.ListLabeledPayloads(t.Name, false)
			if err != nil {
				return err
			}

			fmt.Printf("  Topic: %s\n\n", t.Name)
			if t.Description != "" {
				fmt.Printf("  %-20s %s\n", "description", t.Description)
			}
			fmt.Printf("  %-20s %s\n", "created", t.CreatedAt.Format(time.RFC3339))
			fmt.Printf("  %-20s %d\n", "labeled payloads", len(labeled))
			fmt.Printf("  %-20s %d\n", "label records", total)

			if showLabels {
				stats, err := a.store.LabelStats(t.Name)
				if err != nil {
					return err
				}
				values, err := a.store.ListLabelValues(t.Name)
				if err != nil {
					return err
				}
				fmt.Printf("\n  Label statistics:\n")
				for _, v := range values {
					fmt.Printf("    %-22s %d\n", v, stats[v])
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showLabels, "labels", false, "show label statistics")
	return cmd
}
