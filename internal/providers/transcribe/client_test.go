package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Providers disagree on the transcript field name; all accepted shapes
// normalize to the same plain text.
func TestNormalizeResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"openai text field", `{"text":"hello"}`, "hello", false},
		{"transcript field", `{"transcript":"hello"}`, "hello", false},
		{"transcription field", `{"transcription":"hello"}`, "hello", false},
		{"no recognizable field", `{"result":"hello"}`, "", true},
		{"not json", `plain`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeResponse([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranscribeUpload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "en", r.FormValue("language"))
		fmt.Fprint(w, `{"text":"the transcript"}`)
	}))
	defer ts.Close()

	c := NewClient(&config.TranscribeConfig{BaseURL: ts.URL, APIKey: "test-key", Model: "whisper-1"})
	text, conf, err := c.Transcribe(context.Background(), []byte("audio-bytes"), "talk.mp3", "en")
	require.NoError(t, err)
	assert.Equal(t, "the transcript", text)
	assert.InDelta(t, transcriptConfidence, conf, 0.0001)
}

func TestTranscribeURLSubmission(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "https://youtube.com/watch?v=abc", payload["url"])
		fmt.Fprint(w, `{"transcript":"remote transcript"}`)
	}))
	defer ts.Close()

	c := NewClient(&config.TranscribeConfig{BaseURL: ts.URL, Model: "whisper-1"})
	text, _, err := c.TranscribeURL(context.Background(), "https://youtube.com/watch?v=abc", "")
	require.NoError(t, err)
	assert.Equal(t, "remote transcript", text)
}

func TestTranscribeQuotaStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient(&config.TranscribeConfig{BaseURL: ts.URL, Model: "whisper-1"})
	_, _, err := c.Transcribe(context.Background(), []byte("a"), "a.mp3", "")
	require.Error(t, err)
	assert.Equal(t, core.ErrKindQuotaAuth, core.KindOf(err))
}

func TestTranscribeEmptyPayload(t *testing.T) {
	c := NewClient(&config.TranscribeConfig{BaseURL: "http://localhost:1"})

	_, _, err := c.Transcribe(context.Background(), nil, "", "")
	require.Error(t, err)
	assert.Equal(t, core.ErrKindMalformedInput, core.KindOf(err))
}
