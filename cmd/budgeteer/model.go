package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mdejong/budgeteer/internal/common"
)

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect and manage classifier model versions",
	}
	cmd.AddCommand(modelShowCmd())
	cmd.AddCommand(modelArchiveCmd("activate", "Un-archive a model version", false))
	cmd.AddCommand(modelArchiveCmd("archive", "Archive a model version", true))
	return cmd
}

func modelShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active model and its metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			active, err := store.GetActiveClassifierModel(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("Active model: v%d (trained %s)\n",
				active.Version, active.TrainedAt.Format("2006-01-02 15:04"))
			fmt.Printf("Examples:     %d across %d categories\n",
				active.Metrics.Examples, active.Metrics.Categories)
			fmt.Printf("Accuracy:     %.3f\n", active.Metrics.Accuracy)
			fmt.Printf("F1:           %.3f\n", active.Metrics.F1)
			fmt.Printf("Log loss:     %.3f\n", active.Metrics.LogLoss)
			return nil
		},
	}
}

func modelArchiveCmd(use, short string, archived bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <version>",
		Short: short,
		Long: `The active model is always the highest non-archived version, so
activating an old version only takes effect once every newer version is
archived.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return common.ValidationError("invalid model version %q", args[0])
			}

			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetClassifierModelArchived(cmd.Context(), version, archived); err != nil {
				return err
			}

			fmt.Printf("Model v%d %sd\n", version, use)
			return nil
		},
	}
}
