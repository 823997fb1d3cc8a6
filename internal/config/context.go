package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

// ContextConfig tunes relevance scoring and context assembly. The scoring
// constants were tuned empirically; treat them as defaults, not contracts.
type ContextConfig struct {
	ScoreThreshold   float64 `env:"CONTEXT_SCORE_THRESHOLD" envDefault:"0.2"`
	ScoreExponent    float64 `env:"CONTEXT_SCORE_EXPONENT" envDefault:"2.0"`
	MaxSources       int     `env:"CONTEXT_MAX_SOURCES" envDefault:"3"`
	MaxContextLength int     `env:"CONTEXT_MAX_LENGTH" envDefault:"12000"`
	ChunkSize        int     `env:"CONTEXT_CHUNK_SIZE" envDefault:"2000"`

	CacheTTL        time.Duration `env:"CONTEXT_CACHE_TTL" envDefault:"5m"`
	CacheMaxEntries int           `env:"CONTEXT_CACHE_MAX_ENTRIES" envDefault:"64"`
}

func NewContextConfig(ctx context.Context) *ContextConfig {
	c := &ContextConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Context config")
	}
	return c
}
