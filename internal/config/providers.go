package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/recall/pkg/log"
)

// VisionConfig points at an OpenAI-compatible vision model used for OCR of
// images and scanned pages.
type VisionConfig struct {
	BaseURL string `env:"VISION_BASE_URL" envDefault:"https://api.openai.com"`
	APIKey  string `env:"VISION_API_KEY"`
	Model   string `env:"VISION_MODEL" envDefault:"gpt-4o-mini"`
}

func NewVisionConfig(ctx context.Context) *VisionConfig {
	c := &VisionConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Vision config")
	}
	return c
}

// OCRConfig points at a tesseract-server style HTTP OCR engine.
type OCRConfig struct {
	BaseURL string `env:"OCR_BASE_URL" envDefault:"http://localhost:8884"`
}

func NewOCRConfig(ctx context.Context) *OCRConfig {
	c := &OCRConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse OCR config")
	}
	return c
}

// TranscribeConfig points at a whisper-style audio transcription provider.
type TranscribeConfig struct {
	BaseURL string `env:"TRANSCRIBE_BASE_URL" envDefault:"https://api.openai.com"`
	APIKey  string `env:"TRANSCRIBE_API_KEY"`
	Model   string `env:"TRANSCRIBE_MODEL" envDefault:"whisper-1"`
}

func NewTranscribeConfig(ctx context.Context) *TranscribeConfig {
	c := &TranscribeConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Transcribe config")
	}
	return c
}

// LLMConfig selects the chat provider that consumes assembled contexts.
type LLMConfig struct {
	Provider string `env:"LLM_PROVIDER" envDefault:"openrouter"`
	Model    string `env:"LLM_MODEL" envDefault:"google/gemma-3-27b-it:free"`

	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OllamaBaseURL    string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	CustomBaseURL    string `env:"CUSTOM_LLM_BASE_URL"`
	CustomAPIKey     string `env:"CUSTOM_LLM_API_KEY"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}
