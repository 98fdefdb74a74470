package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/engine"
)

func feedbackCmd() *cobra.Command {
	var accepted bool
	var autoApplied bool
	var confidence float64
	var modelVersion int

	cmd := &cobra.Command{
		Use:   "feedback <transaction-id> <category-id>",
		Short: "Record a categorization decision as a training example",
		Long: `Feedback records the category a transaction finally landed in, together
with whether the original suggestion was kept. Each decision becomes a
labeled example for the next training run and extends the category's
learning profile.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := strconv.Atoi(args[1])
			if err != nil {
				return common.ValidationError("invalid category ID %q", args[1])
			}

			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fb := engine.Feedback{
				TransactionID: args[0],
				CategoryID:    categoryID,
				Accepted:      accepted,
				AutoApplied:   autoApplied,
			}
			if cmd.Flags().Changed("confidence") {
				fb.Confidence = &confidence
			}
			if cmd.Flags().Changed("model-version") {
				fb.ModelVersion = &modelVersion
			}

			if err := newOrchestrator(store).RecordFeedback(cmd.Context(), fb); err != nil {
				return err
			}

			fmt.Printf("Recorded feedback: transaction %s -> category %d\n", args[0], categoryID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&accepted, "accepted", true, "the original suggestion was kept")
	cmd.Flags().BoolVar(&autoApplied, "auto-applied", false, "the assignment was written by the sweep")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "confidence of the suggestion being judged")
	cmd.Flags().IntVar(&modelVersion, "model-version", 0, "model version that produced the suggestion")

	return cmd
}

// feedbackFor is the manual-assignment shortcut: the user picked the
// category directly, so it counts as an accepted human decision.
func feedbackFor(transactionID string, categoryID int) engine.Feedback {
	return engine.Feedback{
		TransactionID: transactionID,
		CategoryID:    categoryID,
		Accepted:      true,
	}
}
