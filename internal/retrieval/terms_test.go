package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTerms(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "lowercases and drops stop words",
			query: "What did Seth Godin say about Marketing",
			want:  []string{"seth", "godin", "say", "marketing"},
		},
		{
			name:  "drops short tokens",
			query: "go to AI at an event",
			want:  []string{"event"},
		},
		{
			name:  "strips punctuation",
			query: `"permission marketing," he said.`,
			want:  []string{"permission", "marketing"},
		},
		{
			name:  "deduplicates keeping first occurrence",
			query: "marketing marketing ideas marketing",
			want:  []string{"marketing", "ideas"},
		},
		{
			name:  "empty query",
			query: "   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTerms(tt.query))
		})
	}
}

func TestExtractTermsCap(t *testing.T) {
	query := "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima mike november"
	assert.Len(t, ExtractTerms(query), maxTerms)
}

func TestExtractEntities(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "capitalized tokens",
			query: "what does Seth Godin think about branding",
			want:  []string{"Seth", "Godin"},
		},
		{
			name:  "quoted phrase comes first",
			query: `notes about "purple cow" by Seth`,
			want:  []string{"purple cow", "Seth"},
		},
		{
			name:  "capitalized stop words ignored",
			query: "What About This",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractEntities(tt.query))
		})
	}
}
