package strategy

import (
	"context"
	"mime"
	"path/filepath"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/internal/providers/vision"
)

// VisionOCR hands an image (or scanned PDF page) to a vision model. More
// expensive than the basic OCR engine but far better on layout and
// handwriting, so it runs first in the document escalation chain after the
// text layer read.
type VisionOCR struct {
	client *vision.Client
}

func NewVisionOCR(client *vision.Client) *VisionOCR {
	return &VisionOCR{client: client}
}

func (v *VisionOCR) Name() string { return NameVisionOCR }

func (v *VisionOCR) Applicable(in Input) bool {
	if in.Ref.IsURL() {
		return false
	}
	return in.Kind == core.KindImage || in.Kind == core.KindPDF
}

func (v *VisionOCR) Extract(ctx context.Context, in Input) (*Result, error) {
	text, confidence, err := v.client.ReadImage(ctx, in.Data, mimeFor(in))
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, Confidence: confidence}, nil
}

func mimeFor(in Input) string {
	if in.Ref.MIME != "" {
		return in.Ref.MIME
	}
	return mime.TypeByExtension(filepath.Ext(in.Ref.FilePath))
}
