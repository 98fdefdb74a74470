package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
)

func assignCmd() *cobra.Command {
	var actor string
	var reason string
	var feedback bool

	cmd := &cobra.Command{
		Use:   "assign <transaction-id> <category-id[:amount]>...",
		Short: "Assign a transaction to one or more categories",
		Long: `Assign writes the transaction's splits. A single category without an
amount covers the full transaction amount; several category:amount
pairs split it, and the amounts must sum to the transaction total.

With --feedback the assignment is also recorded as a labeled example
for future training runs.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			transactionID := args[0]
			txn, err := store.GetTransactionByID(cmd.Context(), transactionID)
			if err != nil {
				return err
			}

			splits, err := parseSplits(args[1:], txn.AbsAmount())
			if err != nil {
				return err
			}

			orchestrator := newOrchestrator(store)
			if err := orchestrator.Assign(cmd.Context(), transactionID, splits, actor, reason); err != nil {
				return err
			}
			fmt.Printf("Assigned %s to %d split(s)\n", transactionID, len(splits))

			if feedback && len(splits) == 1 {
				err := orchestrator.RecordFeedback(cmd.Context(), feedbackFor(transactionID, splits[0].CategoryID))
				if err != nil {
					return err
				}
				fmt.Println("Recorded labeled example")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "cli", "actor recorded on the audit entry")
	cmd.Flags().StringVar(&reason, "reason", "", "free-form reason for the audit entry")
	cmd.Flags().BoolVar(&feedback, "feedback", false, "also record the assignment as a training example")

	return cmd
}

// parseSplits parses category[:amount] arguments. A lone category with no
// amount takes the full transaction amount.
func parseSplits(args []string, total float64) ([]model.Split, error) {
	splits := make([]model.Split, 0, len(args))
	for _, arg := range args {
		categoryPart, amountPart, hasAmount := strings.Cut(arg, ":")

		categoryID, err := strconv.Atoi(categoryPart)
		if err != nil {
			return nil, common.ValidationError("invalid category ID %q", categoryPart)
		}

		amount := total
		if hasAmount {
			amount, err = strconv.ParseFloat(amountPart, 64)
			if err != nil {
				return nil, common.ValidationError("invalid amount %q", amountPart)
			}
		} else if len(args) > 1 {
			return nil, common.ValidationError("split %q needs an explicit amount", arg)
		}

		splits = append(splits, model.Split{CategoryID: categoryID, Amount: amount})
	}
	return splits, nil
}
