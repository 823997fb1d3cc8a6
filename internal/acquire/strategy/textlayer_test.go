package strategy

import (
	"context"
	"testing"

	"github.com/sandevgo/recall/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextLayerExtractPlainText(t *testing.T) {
	tl := NewTextLayer(20)

	body := "A document with an embedded text layer that is clearly long enough to keep."
	res, err := tl.Extract(context.Background(), Input{
		Ref:  core.SourceRef{FilePath: "/tmp/note.txt", MIME: "text/plain"},
		Kind: core.KindDocument,
		Data: []byte(body),
	})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "embedded text layer")
	assert.InDelta(t, textLayerConfidence, res.Confidence, 0.0001)
}

// A scanned image wrapped in a PDF yields a near-empty text layer; the
// strategy must fail so the orchestrator escalates to OCR.
func TestTextLayerRejectsNearEmptyLayer(t *testing.T) {
	tl := NewTextLayer(20)

	_, err := tl.Extract(context.Background(), Input{
		Ref:  core.SourceRef{FilePath: "/tmp/scan.txt", MIME: "text/plain"},
		Kind: core.KindDocument,
		Data: []byte("  p1  "),
	})
	require.Error(t, err)
	assert.Equal(t, core.ErrKindMalformedInput, core.KindOf(err))
	assert.False(t, core.KindOf(err).Retryable())
}

func TestTextLayerApplicable(t *testing.T) {
	tl := NewTextLayer(20)

	assert.True(t, tl.Applicable(Input{Ref: core.SourceRef{FilePath: "/tmp/a.pdf"}, Kind: core.KindPDF}))
	assert.True(t, tl.Applicable(Input{Ref: core.SourceRef{FilePath: "/tmp/a.docx"}, Kind: core.KindDocument}))
	assert.False(t, tl.Applicable(Input{Ref: core.SourceRef{URL: "https://example.com/a.pdf"}, Kind: core.KindPDF}))
	assert.False(t, tl.Applicable(Input{Ref: core.SourceRef{FilePath: "/tmp/a.png"}, Kind: core.KindImage}))
}

func TestSignificantLength(t *testing.T) {
	assert.Equal(t, 0, significantLength("   \n\t "))
	assert.Equal(t, 10, significantLength("hello  world"))
	assert.Equal(t, 4, significantLength(" ab\ncd "))
}
