// Package match implements deterministic rule-based category overrides.
// Rules always win over statistical suggestions; the matcher is the first
// stage of the categorization pipeline.
package match

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/mdejong/budgeteer/internal/model"
)

// Matcher evaluates a transaction against an immutable rule snapshot. Build
// a new Matcher per evaluation pass; it never re-reads the rule store.
type Matcher struct {
	compiledRegex map[int]*regexp.Regexp
	rules         []model.Rule
}

// NewMatcher creates a matcher over the given rule snapshot. Regex patterns
// are compiled once here; rules with invalid patterns are skipped and logged
// rather than failing the whole pass.
func NewMatcher(rules []model.Rule) *Matcher {
	m := &Matcher{
		rules:         rules,
		compiledRegex: make(map[int]*regexp.Regexp),
	}

	for _, rule := range rules {
		if rule.MatchType == model.MatchRegex && rule.Pattern != "" {
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				slog.Warn("Skipping rule with invalid regex",
					"rule_id", rule.ID,
					"pattern", rule.Pattern,
					"error", err)
				continue
			}
			m.compiledRegex[rule.ID] = re
		}
	}

	return m
}

// Match returns the winning rule for a transaction, or nil when no rule
// matches. No match is an ordinary outcome, never an error.
//
// Among matching rules the highest priority wins. Two matching rules with
// the same priority fall back to the lowest rule ID, so the result never
// depends on store iteration order.
func (m *Matcher) Match(txn model.Transaction) *model.Rule {
	var best *model.Rule

	for i := range m.rules {
		rule := &m.rules[i]
		if !rule.IsActive {
			continue
		}
		if !m.matchesRule(txn, rule) {
			continue
		}

		if best == nil ||
			rule.Priority > best.Priority ||
			(rule.Priority == best.Priority && rule.ID < best.ID) {
			best = rule
		}
	}

	return best
}

func (m *Matcher) matchesRule(txn model.Transaction, rule *model.Rule) bool {
	switch rule.MatchType {
	case model.MatchSubstring:
		return strings.Contains(
			strings.ToLower(txn.Description),
			strings.ToLower(rule.Pattern))
	case model.MatchCounterparty:
		return txn.Counterparty != "" && txn.Counterparty == rule.Pattern
	case model.MatchRegex:
		re, ok := m.compiledRegex[rule.ID]
		return ok && re.MatchString(txn.Description)
	}
	return false
}
