package strategy

import (
	"context"
	"path/filepath"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/providers/transcribe"
)

// AudioTranscription submits the source's audio to the external
// transcription provider. Slowest and most expensive technique, so it sits
// at the end of the video escalation chain.
type AudioTranscription struct {
	client *transcribe.Client
}

func NewAudioTranscription(client *transcribe.Client) *AudioTranscription {
	return &AudioTranscription{client: client}
}

func (a *AudioTranscription) Name() string { return NameAudioTranscription }

func (a *AudioTranscription) Applicable(in Input) bool {
	if in.Kind == core.KindAudio {
		return true
	}
	return in.Kind == core.KindVideo && in.Ref.IsURL()
}

func (a *AudioTranscription) Extract(ctx context.Context, in Input) (*Result, error) {
	var (
		text       string
		confidence float64
		err        error
	)
	if in.Ref.IsURL() {
		text, confidence, err = a.client.TranscribeURL(ctx, in.Ref.URL, in.Language)
	} else {
		text, confidence, err = a.client.Transcribe(ctx, in.Data, filepath.Base(in.Ref.FilePath), in.Language)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, Confidence: confidence}, nil
}
