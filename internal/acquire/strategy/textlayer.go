package strategy

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/sandevgo/recall/internal/core"
)

const textLayerConfidence = 0.98

// TextLayer reads the embedded text layer of a PDF or office document with
// docconv. Purely local, no external call.
type TextLayer struct {
	minLength int
}

func NewTextLayer(minLength int) *TextLayer {
	return &TextLayer{minLength: minLength}
}

func (t *TextLayer) Name() string { return NameTextLayer }

func (t *TextLayer) Applicable(in Input) bool {
	if in.Ref.IsURL() {
		return false
	}
	return in.Kind == core.KindPDF || in.Kind == core.KindDocument
}

func (t *TextLayer) Extract(ctx context.Context, in Input) (*Result, error) {
	mime := in.Ref.MIME
	if mime == "" {
		mime = docconv.MimeTypeByExtension(in.Ref.FilePath)
	}

	res, err := docconv.Convert(bytes.NewReader(in.Data), mime, true)
	if err != nil {
		return nil, core.MalformedInputErr(fmt.Errorf("docconv: %w", err))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(res.Body)

	// A scanned image wrapped in PDF yields an empty or near-empty text
	// layer. Reporting failure here makes the orchestrator escalate to
	// vision OCR instead of accepting garbage.
	if significantLength(text) < t.minLength {
		return nil, core.MalformedInputErr(fmt.Errorf("no usable embedded text layer (%d significant chars)", significantLength(text)))
	}

	out := &Result{Text: text, Confidence: textLayerConfidence}
	if title := res.Meta["Title"]; title != "" {
		out.Metadata = &core.SourceMetadata{
			Kind:   in.Kind,
			Title:  title,
			Author: res.Meta["Author"],
		}
	}
	return out, nil
}

// significantLength counts non-whitespace runes.
func significantLength(s string) int {
	n := 0
	for _, f := range strings.Fields(s) {
		n += len([]rune(f))
	}
	return n
}
