package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mdejong/budgeteer/internal/common"
	"github.com/mdejong/budgeteer/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
		Long: `Rules override statistical suggestions. A matching rule always wins
with confidence 1.0; among several matches the highest priority wins,
with equal priorities resolved to the oldest rule.`,
	}
	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesSetActiveCmd("enable", "Enable a rule", true))
	cmd.AddCommand(rulesSetActiveCmd("disable", "Disable a rule", false))
	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetActiveRules(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRIORITY\tMATCH\tPATTERN\tCATEGORY")
			for _, rule := range rules {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\n",
					rule.ID, rule.Priority, rule.MatchType, rule.Pattern, rule.CategoryID)
			}
			return w.Flush()
		},
	}
}

func rulesAddCmd() *cobra.Command {
	var matchType string
	var priority int

	cmd := &cobra.Command{
		Use:   "add <pattern> <category-id>",
		Short: "Create a rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := strconv.Atoi(args[1])
			if err != nil {
				return common.ValidationError("invalid category ID %q", args[1])
			}

			mt := model.RuleMatchType(matchType)
			switch mt {
			case model.MatchSubstring, model.MatchCounterparty, model.MatchRegex:
			default:
				return common.ValidationError("match type must be substring, counterparty, or regex, got %q", matchType)
			}

			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule := &model.Rule{
				MatchType:  mt,
				Pattern:    args[0],
				CategoryID: categoryID,
				Priority:   priority,
				IsActive:   true,
			}
			if err := store.CreateRule(cmd.Context(), rule); err != nil {
				return err
			}

			fmt.Printf("Created rule %d: %s %q -> category %d\n",
				rule.ID, rule.MatchType, rule.Pattern, rule.CategoryID)
			return nil
		},
	}

	cmd.Flags().StringVar(&matchType, "match", "substring", "match type (substring, counterparty, regex)")
	cmd.Flags().IntVar(&priority, "priority", 0, "rule priority; higher wins")

	return cmd
}

func rulesSetActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <rule-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return common.ValidationError("invalid rule ID %q", args[0])
			}

			store, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetRuleActive(cmd.Context(), id, active); err != nil {
				return err
			}

			fmt.Printf("Rule %d %sd\n", id, use)
			return nil
		},
	}
}
