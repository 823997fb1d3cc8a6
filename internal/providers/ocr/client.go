package ocr

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

const defaultTimeout = 60 * time.Second

// engineConfidence: a plain OCR engine is the cheapest and least reliable
// technique in the chain.
const engineConfidence = 0.6

// Client talks to a tesseract-server style HTTP OCR engine.
type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient(cfg *config.OCRConfig) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		baseURL: cfg.BaseURL,
	}
}

// Recognize runs the engine over one image and returns the recognized text.
// The engine's response shape varies between deployments; both the current
// ("data.stdout") and the legacy flat ("text") shapes are accepted here so
// the difference never leaks past this adapter.
func (c *Client) Recognize(ctx context.Context, data []byte, filename, language string) (string, float64, error) {
	if len(data) == 0 {
		return "", 0, core.MalformedInputErr(fmt.Errorf("empty image payload"))
	}
	if filename == "" {
		filename = "upload.png"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", 0, fmt.Errorf("multipart: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", 0, fmt.Errorf("multipart write: %w", err)
	}
	opts, _ := json.Marshal(map[string]any{"languages": []string{language}})
	if err := mw.WriteField("options", string(opts)); err != nil {
		return "", 0, fmt.Errorf("multipart options: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", 0, fmt.Errorf("multipart close: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tesseract", &buf)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", core.RecallUserAgent)

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

	var result struct {
		Data struct {
			Stdout string `json:"stdout"`
		} `json:"data"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", 0, fmt.Errorf("decode: %w", err)
	}

	text := result.Data.Stdout
	if text == "" {
		text = result.Text
	}
	if text == "" {
		return "", 0, core.EmptyResultErr("ocr engine returned no text")
	}

	return text, engineConfidence, nil
}
