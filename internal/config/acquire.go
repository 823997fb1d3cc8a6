package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

type AcquireConfig struct {
	// MaxRetries is the per-strategy retry budget. Attempt n of the same
	// strategy waits BaseDelay×n before running.
	MaxRetries     int           `env:"ACQUIRE_MAX_RETRIES" envDefault:"2"`
	BaseDelay      time.Duration `env:"ACQUIRE_BASE_DELAY" envDefault:"500ms"`
	MaxDelay       time.Duration `env:"ACQUIRE_MAX_DELAY" envDefault:"10s"`
	AttemptTimeout time.Duration `env:"ACQUIRE_ATTEMPT_TIMEOUT" envDefault:"60s"`

	// MinTextLength is the minimum-significance gate: a strategy result with
	// fewer meaningful characters is treated as an empty result.
	MinTextLength int `env:"ACQUIRE_MIN_TEXT_LENGTH" envDefault:"20"`

	// MetadataTimeout bounds the parallel metadata lookup.
	MetadataTimeout time.Duration `env:"ACQUIRE_METADATA_TIMEOUT" envDefault:"10s"`

	Language string `env:"ACQUIRE_LANGUAGE" envDefault:"en"`
}

func NewAcquireConfig(ctx context.Context) *AcquireConfig {
	c := &AcquireConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Acquire config")
	}
	return c
}
