package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// Processor turns a candidate corpus and a query into a bounded,
// source-isolated context payload. Scoring and chunking are pure, so the
// whole pipeline is deterministic for identical inputs.
type Processor struct {
	cfg    *config.ContextConfig
	scorer *Scorer
	cache  *ContextCache
}

func NewProcessor(cfg *config.ContextConfig, cache *ContextCache) *Processor {
	return &Processor{
		cfg:    cfg,
		scorer: NewScorer(cfg),
		cache:  cache,
	}
}

// ProcessForQuery scores every candidate, keeps the ones above the
// threshold, and assembles their text into isolation-wrapped chunks within
// the configured source and length budgets. An empty result with a
// human-readable summary is a valid outcome, not an error.
func (p *Processor) ProcessForQuery(ctx context.Context, candidates []core.ContentItem, query string) core.ProcessedContext {
	logger := log.FromCtx(ctx)

	key := requestKey(query, candidates)
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			logger.Debug().Str("fingerprint", cached.Fingerprint).Msg("context served from cache")
			return cached
		}
	}

	scored := p.scorer.ScoreAll(candidates, query)

	var selected []core.ScoredCandidate
	for _, sc := range scored {
		if sc.PassesThreshold {
			selected = append(selected, sc)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].RelevanceScore > selected[j].RelevanceScore
	})
	if len(selected) > p.cfg.MaxSources {
		selected = selected[:p.cfg.MaxSources]
	}

	result := p.assemble(selected, query)
	result.Summary = p.summarize(len(candidates), result)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("selected", len(result.Sources)).
		Int("chunks", len(result.Chunks)).
		Int("length", result.TotalLength).
		Str("fingerprint", result.Fingerprint).
		Msg("context assembled")

	if p.cache != nil {
		p.cache.Set(key, result)
	}
	return result
}

// assemble chunks each retained source and packs whole chunks until the
// next one would blow the length budget. A chunk is included entirely or
// not at all; nothing is truncated mid-chunk.
func (p *Processor) assemble(selected []core.ScoredCandidate, query string) core.ProcessedContext {
	var result core.ProcessedContext

pack:
	for _, sc := range selected {
		item := sc.Item
		pieces := ChunkText(item.Text, p.cfg.ChunkSize)
		included := false

		for i, piece := range pieces {
			wrapped := wrapChunk(item, piece, i+1, len(pieces))
			if result.TotalLength+len(wrapped) > p.cfg.MaxContextLength {
				break pack
			}
			result.Chunks = append(result.Chunks, core.ContextChunk{
				SourceID:     item.ID,
				Ordinal:      i + 1,
				Text:         wrapped,
				ApproxLength: len(wrapped),
			})
			result.TotalLength += len(wrapped)
			included = true
		}
		if included {
			result.Sources = append(result.Sources, item)
		}
	}

	result.Fingerprint = fingerprint(query, result.Sources)
	result.TotalTokens = countTokens(result.Text())
	return result
}

func (p *Processor) summarize(corpusSize int, result core.ProcessedContext) string {
	switch {
	case corpusSize == 0:
		return "No notes were found in your knowledge base."
	case result.Empty():
		return "No stored note matched the query closely enough to provide grounded context."
	default:
		return fmt.Sprintf("Using %d chunk(s) from %d source(s), %d chars / %d tokens.",
			len(result.Chunks), len(result.Sources), result.TotalLength, result.TotalTokens)
	}
}

// wrapChunk frames one source segment with explicit boundaries so a
// downstream model cannot attribute one source's content to another.
func wrapChunk(item core.ContentItem, text string, part, total int) string {
	header := fmt.Sprintf("=== SOURCE %s | %s | %s | part %d/%d ===", item.ID, item.Title, item.ContentType(), part, total)
	footer := fmt.Sprintf("=== END SOURCE %s ===", item.ID)
	return header + "\n" + text + "\n" + footer
}

// fingerprint hashes the query and the sorted selected source ids, so the
// same question against the same selection always keys identically.
func fingerprint(query string, sources []core.ContentItem) string {
	ids := make([]string, 0, len(sources))
	for _, s := range sources {
		ids = append(ids, s.ID)
	}
	sort.Strings(ids)

	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(ids, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}

// requestKey keys the cache on the full request: the query plus every
// candidate id in corpus order. Unlike the fingerprint it must vary when
// the corpus changes, even if the selection would not.
func requestKey(query string, candidates []core.ContentItem) string {
	h := sha256.New()
	h.Write([]byte(query))
	for _, c := range candidates {
		h.Write([]byte{0})
		h.Write([]byte(c.ID))
	}
	return hex.EncodeToString(h.Sum(nil))
}
