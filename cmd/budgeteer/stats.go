package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdejong/budgeteer/internal/engine"
)

func statsCmd() *cobra.Command {
	var windowDays int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show automation statistics for the recent window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			monitor := engine.NewMonitor(store, viper.GetFloat64("monitoring.alert_threshold"))
			stats, err := monitor.Stats(cmd.Context(), windowDays)
			if err != nil {
				return err
			}

			fmt.Printf("Window:             last %d days\n", stats.WindowDays)
			fmt.Printf("Auto-applied:       %d\n", stats.TotalAutoApplied)
			fmt.Printf("Undone:             %d\n", stats.TotalUndone)
			fmt.Printf("Undo rate:          %.1f%%\n", stats.UndoRate*100)
			fmt.Printf("Average confidence: %.2f\n", stats.AverageConfidence)
			if stats.AboveThreshold {
				fmt.Println("ALERT: undo rate exceeds the alert threshold; review recent auto-applies")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&windowDays, "window-days", 30, "statistics window in days")

	return cmd
}
