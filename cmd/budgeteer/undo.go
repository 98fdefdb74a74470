package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdejong/budgeteer/internal/engine"
)

func undoCmd() *cobra.Command {
	var actor string
	var check bool

	cmd := &cobra.Command{
		Use:   "undo <transaction-id>",
		Short: "Undo an auto-applied categorization",
		Long: `Undo reverts the most recent auto-applied assignment, leaving the
transaction unassigned. It refuses once the retention window has
elapsed, and refuses with a conflict when the transaction was manually
edited after the auto-apply.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			coordinator := engine.NewUndoCoordinator(store, viper.GetInt("automation.retention_days"))

			if check {
				ok, err := coordinator.CanUndo(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ok {
					fmt.Printf("Transaction %s can be undone\n", args[0])
				} else {
					fmt.Printf("Transaction %s cannot be undone\n", args[0])
				}
				return nil
			}

			if err := coordinator.Undo(cmd.Context(), args[0], actor); err != nil {
				return err
			}

			fmt.Printf("Undid auto-applied assignment of %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "cli", "actor recorded on the audit entry")
	cmd.Flags().BoolVar(&check, "check", false, "report whether an undo would succeed without performing it")

	return cmd
}
