package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        []string
	}{
		{
			name:        "lowercases and splits on punctuation",
			description: "ALBERT-HEIJN/1403,AMSTERDAM",
			want:        []string{"albert", "heijn", "1403", "amsterdam"},
		},
		{
			name:        "drops short tokens",
			description: "NS de trein of nl",
			want:        []string{"trein"},
		},
		{
			name:        "deduplicates",
			description: "paypal paypal PAYPAL payment",
			want:        []string{"paypal", "payment"},
		},
		{
			name:        "empty input",
			description: "",
			want:        []string{},
		},
		{
			name:        "only noise",
			description: "a b -- !!",
			want:        []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.description))
		})
	}
}
