package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
)

const defaultTimeout = 5 * time.Minute

const transcriptConfidence = 0.9

// Client submits audio to a whisper-style transcription provider.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewClient(cfg *config.TranscribeConfig) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

// Transcribe uploads one audio file and returns the transcript text.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename, language string) (string, float64, error) {
	if len(audio) == 0 {
		return "", 0, core.MalformedInputErr(fmt.Errorf("empty audio payload"))
	}
	if filename == "" {
		filename = "audio.mp3"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", 0, fmt.Errorf("multipart: %w", err)
	}
	if _, err := fw.Write(audio); err != nil {
		return "", 0, fmt.Errorf("multipart write: %w", err)
	}
	_ = mw.WriteField("model", c.model)
	if language != "" {
		_ = mw.WriteField("language", language)
	}
	if err := mw.Close(); err != nil {
		return "", 0, fmt.Errorf("multipart close: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", core.RecallUserAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, core.NetworkErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, core.NetworkErr(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, core.StatusErr(resp.StatusCode, string(body))
	}

	text, err := normalizeResponse(body)
	if err != nil {
		return "", 0, err
	}
	return text, transcriptConfidence, nil
}

// TranscribeURL asks the provider to pull and transcribe a remote source
// itself, for providers that accept URL submission.
func (c *Client) TranscribeURL(ctx context.Context, sourceURL, language string) (string, float64, error) {
	if sourceURL == "" {
		return "", 0, core.MalformedInputErr(fmt.Errorf("empty source url"))
	}

	payload := map[string]string{
		"url":   sourceURL,
		"model": c.model,
	}
	if language != "" {
		payload["language"] = language
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.RecallUserAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, core.NetworkErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, core.NetworkErr(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, core.StatusErr(resp.StatusCode, string(body))
	}

	text, err := normalizeResponse(body)
	if err != nil {
		return "", 0, err
	}
	return text, transcriptConfidence, nil
}

// normalizeResponse flattens the provider-specific response shapes into
// plain text. Providers disagree on the field name for the transcript
// ("text", "transcript", "transcription"); that difference stays here.
func normalizeResponse(body []byte) (string, error) {
	var result struct {
		Text          string `json:"text"`
		Transcript    string `json:"transcript"`
		Transcription string `json:"transcription"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	for _, t := range []string{result.Text, result.Transcript, result.Transcription} {
		if t != "" {
			return t, nil
		}
	}
	return "", core.EmptyResultErr("transcription provider returned no text")
}
