package strategy

import (
	"context"
	"path/filepath"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/providers/ocr"
)

// BasicOCR runs a plain OCR engine over an image. Cheapest and least
// accurate technique, kept as the last resort of the document chain.
type BasicOCR struct {
	client *ocr.Client
}

func NewBasicOCR(client *ocr.Client) *BasicOCR {
	return &BasicOCR{client: client}
}

func (b *BasicOCR) Name() string { return NameBasicOCR }

func (b *BasicOCR) Applicable(in Input) bool {
	if in.Ref.IsURL() {
		return false
	}
	return in.Kind == core.KindImage || in.Kind == core.KindPDF
}

func (b *BasicOCR) Extract(ctx context.Context, in Input) (*Result, error) {
	text, confidence, err := b.client.Recognize(ctx, in.Data, filepath.Base(in.Ref.FilePath), in.Language)
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, Confidence: confidence}, nil
}
