// Package strategy holds the individual extraction techniques the
// acquisition orchestrator escalates through. A strategy performs exactly
// one external call (or local computation), normalizes the provider response
// shape, and never retries internally — retry policy belongs to the
// orchestrator.
package strategy

import (
	"context"

	"github.com/sandevgo/recall/internal/core"
)

// Strategy names double as the provenance recorded on extraction results.
const (
	NameTextLayer          = "text-layer"
	NameVisionOCR          = "vision-ocr"
	NameBasicOCR           = "basic-ocr"
	NameCaptionRead        = "caption-read"
	NamePageScrape         = "page-scrape"
	NameAudioTranscription = "audio-transcription"
)

// Input is the normalized view of a source a strategy works on. Data holds
// the file contents when the source is an uploaded file; it is loaded once
// by the orchestrator and shared across strategies.
type Input struct {
	Ref      core.SourceRef
	Kind     core.SourceKind
	Data     []byte
	Language string
}

// Result is the common shape every provider response is normalized into.
type Result struct {
	Text       string
	Confidence float64
	Metadata   *core.SourceMetadata
}

type Strategy interface {
	Name() string

	// Applicable reports whether this strategy can work on the input at
	// all. Inapplicable strategies are skipped without an attempt.
	Applicable(in Input) bool

	// Extract runs the technique once. Expected failures come back as
	// kind-classified errors (core.ExtractError), never panics.
	Extract(ctx context.Context, in Input) (*Result, error)
}
