package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdejong/budgeteer/internal/classifier"
)

func trainCmd() *cobra.Command {
	var windowDays int

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a new classifier model from labeled examples",
		Long: `Train fits a fresh model version from the labeled examples of the
rolling window. The new version becomes active only when its evaluation
F1 reaches the approval gate; otherwise it is stored archived and can
be activated manually after review.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if windowDays == 0 {
				windowDays = viper.GetInt("training.window_days")
			}

			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			trainer := classifier.NewTrainer(store, trainerConfig())

			var bar *progressbar.ProgressBar
			trainer.OnProgress(func(round, total int) {
				if bar == nil {
					bar = progressbar.Default(int64(total), "Training category learners")
				}
				_ = bar.Set(round)
			})

			stored, err := trainer.Train(cmd.Context(), windowDays)
			if err != nil {
				return err
			}
			if bar != nil {
				_ = bar.Finish()
			}

			status := "active"
			if stored.Archived {
				status = "archived (below approval gate)"
			}
			fmt.Printf("Trained model v%d (%s)\n", stored.Version, status)
			fmt.Printf("Examples:   %d across %d categories\n", stored.Metrics.Examples, stored.Metrics.Categories)
			fmt.Printf("Accuracy:   %.3f\n", stored.Metrics.Accuracy)
			fmt.Printf("F1:         %.3f\n", stored.Metrics.F1)
			fmt.Printf("Log loss:   %.3f\n", stored.Metrics.LogLoss)
			return nil
		},
	}

	cmd.Flags().IntVar(&windowDays, "window-days", 0, "training window in days (default: training.window_days)")

	return cmd
}
