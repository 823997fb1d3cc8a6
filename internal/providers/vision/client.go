package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
)

const defaultTimeout = 90 * time.Second

// visionConfidence is what we report for vision-model OCR; these models do
// not return a usable confidence figure of their own.
const visionConfidence = 0.85

const ocrPrompt = "Transcribe every piece of text visible in this image, in reading order. " +
	"Output only the transcribed text, no commentary. If the image contains no text, output nothing."

// Client reads text out of images using an OpenAI-compatible vision model.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewClient(cfg *config.VisionConfig) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}
}

// ReadImage sends one image to the vision model and returns the transcribed
// text with a nominal confidence.
func (c *Client) ReadImage(ctx context.Context, data []byte, mime string) (string, float64, error) {
	if len(data) == 0 {
		return "", 0, core.MalformedInputErr(fmt.Errorf("empty image payload"))
	}
	if mime == "" {
		mime = "image/png"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": ocrPrompt},
					{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
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

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, core.NetworkErr(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, core.StatusErr(resp.StatusCode, string(data))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", 0, fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", 0, core.EmptyResultErr("vision model returned no text")
	}

	return result.Choices[0].Message.Content, visionConfidence, nil
}
