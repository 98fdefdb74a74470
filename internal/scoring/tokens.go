package scoring

import "strings"

// minTokenLength filters out connective noise like "de", "en", "of".
const minTokenLength = 3

// Tokenize lowercases a transaction description and splits it into word
// tokens. The same tokenization feeds profile building, scoring, and
// classifier features, so the three always agree on word boundaries.
func Tokenize(description string) []string {
	fields := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return !isWordRune(r)
	})

	tokens := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if len(f) < minTokenLength {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z'
}
