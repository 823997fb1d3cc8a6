package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sandevgo/recall/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marketingCorpus() []core.ContentItem {
	corpus := []core.ContentItem{
		{
			ID:    "godin",
			Title: "Seth Godin on Marketing",
			Text:  "Seth Godin argues that marketing is about earning permission. Interruption is dead; attention must be earned through trust.",
		},
		{
			ID:           "talk",
			Title:        "Marketing talk transcript",
			Text:         "Today we discuss marketing funnels, positioning and how brands earn attention in crowded markets.",
			IsTranscript: true,
		},
	}
	for i := 0; i < 8; i++ {
		corpus = append(corpus, core.ContentItem{
			ID:    fmt.Sprintf("noise-%d", i),
			Title: fmt.Sprintf("Recipe %d", i),
			Text:  "Preheat the oven. Mix flour, butter and sugar. Bake until golden and let cool on a rack.",
		})
	}
	return corpus
}

func TestProcessForQuerySelectsRelevantSources(t *testing.T) {
	p := NewProcessor(testContextConfig(), nil)

	result := p.ProcessForQuery(context.Background(), marketingCorpus(), "Seth Godin marketing")

	require.False(t, result.Empty())
	require.NotEmpty(t, result.Sources)
	assert.LessOrEqual(t, len(result.Sources), 3)
	assert.Equal(t, "godin", result.Sources[0].ID)

	for _, chunk := range result.Chunks {
		assert.NotEmpty(t, chunk.SourceID)
		assert.Contains(t, chunk.Text, "=== SOURCE "+chunk.SourceID)
		assert.Contains(t, chunk.Text, "=== END SOURCE "+chunk.SourceID)
	}
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.Fingerprint)
}

func TestProcessForQueryMaxSources(t *testing.T) {
	cfg := testContextConfig()
	cfg.MaxSources = 1
	p := NewProcessor(cfg, nil)

	result := p.ProcessForQuery(context.Background(), marketingCorpus(), "Seth Godin marketing")

	require.Len(t, result.Sources, 1)
	for _, chunk := range result.Chunks {
		assert.Equal(t, result.Sources[0].ID, chunk.SourceID)
	}
}

func TestProcessForQueryLengthBudget(t *testing.T) {
	cfg := testContextConfig()
	cfg.MaxContextLength = 400
	cfg.ChunkSize = 150
	p := NewProcessor(cfg, nil)

	long := strings.Repeat("Seth Godin marketing wisdom repeated at length. ", 50)
	corpus := []core.ContentItem{
		{ID: "a", Title: "Seth Godin marketing", Text: long},
		{ID: "b", Title: "Seth Godin marketing again", Text: long},
	}

	result := p.ProcessForQuery(context.Background(), corpus, "Seth Godin marketing")

	assert.LessOrEqual(t, result.TotalLength, 400)
	total := 0
	for _, chunk := range result.Chunks {
		total += len(chunk.Text)
	}
	assert.Equal(t, total, result.TotalLength)
}

// Even when every candidate individually exceeds the budget, the invariant
// holds: chunks are included whole or not at all.
func TestProcessForQueryEveryCandidateOversized(t *testing.T) {
	cfg := testContextConfig()
	cfg.MaxContextLength = 100
	cfg.ChunkSize = 5000
	p := NewProcessor(cfg, nil)

	long := strings.Repeat("Seth Godin marketing. ", 100)
	corpus := []core.ContentItem{
		{ID: "a", Title: "Seth Godin marketing", Text: long},
	}

	result := p.ProcessForQuery(context.Background(), corpus, "Seth Godin marketing")

	assert.LessOrEqual(t, result.TotalLength, 100)
	assert.True(t, result.Empty())
	assert.NotEmpty(t, result.Summary)
}

func TestProcessForQueryDeterministic(t *testing.T) {
	corpus := marketingCorpus()
	query := "Seth Godin marketing"

	first := NewProcessor(testContextConfig(), nil).ProcessForQuery(context.Background(), corpus, query)
	second := NewProcessor(testContextConfig(), nil).ProcessForQuery(context.Background(), corpus, query)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.Chunks, second.Chunks)
}

func TestProcessForQueryEmptyCorpus(t *testing.T) {
	p := NewProcessor(testContextConfig(), nil)

	result := p.ProcessForQuery(context.Background(), nil, "anything at all")

	assert.True(t, result.Empty())
	assert.Empty(t, result.Sources)
	assert.Contains(t, result.Summary, "No notes were found")
}

func TestProcessForQueryNothingPassesThreshold(t *testing.T) {
	p := NewProcessor(testContextConfig(), nil)

	corpus := []core.ContentItem{
		{ID: "x", Title: "Gardening", Text: "Tomatoes need sun, water and patience."},
	}
	result := p.ProcessForQuery(context.Background(), corpus, "quantum chromodynamics")

	assert.True(t, result.Empty())
	assert.NotEmpty(t, result.Summary)
}

func TestProcessForQueryUsesCache(t *testing.T) {
	cfg := testContextConfig()
	cache := NewContextCache(cfg.CacheTTL, 8)
	p := NewProcessor(cfg, cache)

	corpus := marketingCorpus()
	first := p.ProcessForQuery(context.Background(), corpus, "Seth Godin marketing")
	assert.Equal(t, 1, cache.Len())

	second := p.ProcessForQuery(context.Background(), corpus, "Seth Godin marketing")
	assert.Equal(t, first, second)
}

func TestProcessForQueryTranscriptHeader(t *testing.T) {
	p := NewProcessor(testContextConfig(), nil)

	corpus := []core.ContentItem{
		{
			ID:           "talk",
			Title:        "Seth Godin marketing keynote",
			Text:         "Seth Godin marketing keynote transcript about permission and trust.",
			IsTranscript: true,
		},
	}
	result := p.ProcessForQuery(context.Background(), corpus, "Seth Godin marketing")

	require.False(t, result.Empty())
	assert.Contains(t, result.Chunks[0].Text, "| transcript |")
}
