package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Auto-apply high-confidence suggestions to unassigned transactions",
		Long: `Sweep walks every unassigned transaction and applies suggestions whose
confidence reaches the configured threshold. Each application writes a
full-amount split plus an audit entry, and stays undoable for the
retention window.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats, err := newOrchestrator(store).RunSweep(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Examined:  %d\n", stats.Examined)
			fmt.Printf("Applied:   %d\n", stats.Applied)
			fmt.Printf("Deferred:  %d\n", stats.Deferred)
			fmt.Printf("Skipped:   %d\n", stats.Skipped)
			fmt.Printf("Conflicts: %d\n", stats.Conflicts)
			return nil
		},
	}
}
