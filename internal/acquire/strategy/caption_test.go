package strategy

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/recall/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVideoID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/watch?v=abc123&t=42s", "abc123"},
		{"https://youtu.be/abc123", "abc123"},
		{"https://www.youtube.com/shorts/xyz789", "xyz789"},
		{"https://www.youtube.com/embed/xyz789/extra", "xyz789"},
		{"https://www.youtube.com/live/stream1", "stream1"},
		{"https://m.youtube.com/watch?v=mob1", "mob1"},
		{"https://vimeo.com/12345", ""},
		{"https://example.com/watch?v=abc", ""},
		{"not a url at all ://", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, VideoID(tt.url))
		})
	}
}

func TestParseCaptionXML(t *testing.T) {
	xml := `<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="2.1">Hello &amp; welcome</text>
  <text start="2.1" dur="1.4">  to the show  </text>
  <text start="3.5" dur="0.5"></text>
</transcript>`

	text, err := ParseCaptionXML([]byte(xml))
	require.NoError(t, err)
	assert.Equal(t, "Hello & welcome to the show", text)
}

func TestParseCaptionXMLEmptyTrack(t *testing.T) {
	_, err := ParseCaptionXML([]byte(`<transcript></transcript>`))
	require.Error(t, err)
	assert.Equal(t, core.ErrKindEmptyResult, core.KindOf(err))
}

func TestParseCaptionXMLMalformed(t *testing.T) {
	_, err := ParseCaptionXML([]byte(`{"not":"xml"}`))
	require.Error(t, err)
	assert.Equal(t, core.ErrKindMalformedInput, core.KindOf(err))
}

func TestCaptionReadExtract(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc123", r.URL.Query().Get("v"))
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		fmt.Fprint(w, `<transcript><text start="0" dur="1">Captions work</text></transcript>`)
	}))
	defer ts.Close()

	c := NewCaptionRead(WithTimedTextURL(ts.URL))
	res, err := c.Extract(context.Background(), Input{
		Ref:      core.SourceRef{URL: "https://youtube.com/watch?v=abc123"},
		Kind:     core.KindVideo,
		Language: "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "Captions work", res.Text)
	assert.InDelta(t, captionConfidence, res.Confidence, 0.0001)
}

func TestCaptionReadQuotaStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewCaptionRead(WithTimedTextURL(ts.URL))
	_, err := c.Extract(context.Background(), Input{
		Ref:  core.SourceRef{URL: "https://youtube.com/watch?v=abc123"},
		Kind: core.KindVideo,
	})
	require.Error(t, err)
	assert.Equal(t, core.ErrKindQuotaAuth, core.KindOf(err))
	assert.False(t, core.KindOf(err).Retryable())
}

func TestCaptionReadApplicable(t *testing.T) {
	c := NewCaptionRead()

	assert.True(t, c.Applicable(Input{
		Ref:  core.SourceRef{URL: "https://youtu.be/abc"},
		Kind: core.KindVideo,
	}))
	assert.False(t, c.Applicable(Input{
		Ref:  core.SourceRef{URL: "https://vimeo.com/123"},
		Kind: core.KindVideo,
	}), "no recognizable video id")
	assert.False(t, c.Applicable(Input{
		Ref:  core.SourceRef{URL: "https://example.com/page"},
		Kind: core.KindWebPage,
	}))
}
