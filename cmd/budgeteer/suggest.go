package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <transaction-id>",
		Short: "Show the best category suggestion for a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			suggestion, err := newOrchestrator(store).Suggest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if suggestion == nil {
				fmt.Println("No suggestion meets the threshold")
				return nil
			}

			fmt.Printf("Category:   %s (%d)\n", suggestion.CategoryName, suggestion.CategoryID)
			fmt.Printf("Confidence: %.2f\n", suggestion.Confidence)
			fmt.Printf("Source:     %s\n", suggestion.Source)
			if suggestion.ModelVersion != nil {
				fmt.Printf("Model:      v%d\n", *suggestion.ModelVersion)
			}
			if len(suggestion.TopFeatures) > 0 {
				fmt.Printf("Signals:    %s\n", strings.Join(suggestion.TopFeatures, ", "))
			}
			return nil
		},
	}
}
