package retrieval

import (
	"math"
	"strings"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
)

// Per-match weights. A title hit says more about a note's topic than a body
// hit, and an exact phrase match of the whole query says the most.
const (
	titleWeight        = 3.0
	contentWeight      = 1.0
	entityWeight       = 2.0
	titlePhraseBonus   = 4.0
	contentPhraseBonus = 1.5

	// Body matches decay with position but never below a quarter of the
	// front-of-document weight.
	maxPositionPenalty = 0.75
)

// Scorer rates how relevant a stored note is to a query. It is pure and
// stateless; the threshold and power-curve exponent come from configuration
// rather than being baked into variants of the algorithm.
type Scorer struct {
	cfg *config.ContextConfig
}

func NewScorer(cfg *config.ContextConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns a relevance value in [0,1]. The accumulated term weight is
// normalized against its theoretical maximum and then pushed through a
// power curve, so weak partial matches collapse toward zero instead of
// forming a long tail of marginal candidates.
func (s *Scorer) Score(item core.ContentItem, query string) float64 {
	terms := ExtractTerms(query)
	if len(terms) == 0 {
		return 0
	}
	entities := ExtractEntities(query)

	lowerTitle := strings.ToLower(item.Title)
	lowerText := strings.ToLower(item.Text)
	textLen := len(lowerText)

	var raw, max float64

	for _, term := range terms {
		max += titleWeight + contentWeight
		if strings.Contains(lowerTitle, term) {
			raw += titleWeight
		}
		if idx := strings.Index(lowerText, term); idx >= 0 {
			raw += contentWeight * positionFactor(idx, textLen)
		}
	}

	for _, entity := range entities {
		max += entityWeight
		if strings.Contains(item.Title, entity) || strings.Contains(item.Text, entity) {
			raw += entityWeight
		}
	}

	phrase := strings.ToLower(strings.TrimSpace(query))
	max += titlePhraseBonus + contentPhraseBonus
	if strings.Contains(lowerTitle, phrase) {
		raw += titlePhraseBonus
	}
	if strings.Contains(lowerText, phrase) {
		raw += contentPhraseBonus
	}

	if max == 0 {
		return 0
	}
	return math.Pow(raw/max, s.cfg.ScoreExponent)
}

// ScoreAll evaluates every candidate and marks which ones clear the
// configured threshold. Input order is preserved so a later stable sort
// keeps equal-score candidates in their original relative order.
func (s *Scorer) ScoreAll(items []core.ContentItem, query string) []core.ScoredCandidate {
	out := make([]core.ScoredCandidate, 0, len(items))
	for _, item := range items {
		score := s.Score(item, query)
		out = append(out, core.ScoredCandidate{
			Item:            item,
			RelevanceScore:  score,
			PassesThreshold: score >= s.cfg.ScoreThreshold,
		})
	}
	return out
}

// positionFactor models "the beginning of a document usually states its
// topic": a match at offset zero keeps full weight, matches deeper in the
// body keep progressively less.
func positionFactor(idx, textLen int) float64 {
	if textLen == 0 {
		return 1
	}
	penalty := float64(idx) / float64(textLen)
	if penalty > maxPositionPenalty {
		penalty = maxPositionPenalty
	}
	return 1 - penalty
}
