package strategy

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandevgo/recall/internal/core"
)

const (
	captionConfidence   = 0.95
	captionFetchLimit   = 4 << 20 // 4MB
	defaultTimedTextURL = "https://video.google.com/timedtext"
)

// CaptionRead pulls author-provided captions straight from the video host's
// timed-text endpoint. Highest-quality video technique when captions exist.
type CaptionRead struct {
	client  *http.Client
	baseURL string
}

type CaptionOption func(*CaptionRead)

// WithTimedTextURL overrides the timed-text endpoint, mainly for tests.
func WithTimedTextURL(u string) CaptionOption {
	return func(c *CaptionRead) { c.baseURL = u }
}

func NewCaptionRead(opts ...CaptionOption) *CaptionRead {
	c := &CaptionRead{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultTimedTextURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CaptionRead) Name() string { return NameCaptionRead }

func (c *CaptionRead) Applicable(in Input) bool {
	return in.Kind == core.KindVideo && VideoID(in.Ref.URL) != ""
}

func (c *CaptionRead) Extract(ctx context.Context, in Input) (*Result, error) {
	id := VideoID(in.Ref.URL)
	if id == "" {
		return nil, core.MalformedInputErr(fmt.Errorf("no video id in %q", in.Ref.URL))
	}

	q := url.Values{}
	q.Set("v", id)
	if in.Language != "" {
		q.Set("lang", in.Language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", core.RecallUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, core.NetworkErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, captionFetchLimit))
	if err != nil {
		return nil, core.NetworkErr(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, core.StatusErr(resp.StatusCode, string(body))
	}

	text, err := ParseCaptionXML(body)
	if err != nil {
		return nil, err
	}

	return &Result{Text: text, Confidence: captionConfidence}, nil
}

// ParseCaptionXML flattens a timed-text transcript document into plain
// text, dropping timing attributes and unescaping entities.
func ParseCaptionXML(data []byte) (string, error) {
	var doc struct {
		XMLName xml.Name `xml:"transcript"`
		Texts   []struct {
			Value string `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return "", core.MalformedInputErr(fmt.Errorf("caption xml: %w", err))
	}

	var parts []string
	for _, t := range doc.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Value))
		if line == "" {
			continue
		}
		parts = append(parts, line)
	}
	if len(parts) == 0 {
		return "", core.EmptyResultErr("caption track has no text")
	}
	return strings.Join(parts, " "), nil
}

// VideoID extracts the video identifier from the URL shapes the known hosts
// use. Empty string means the URL carries no recognizable id.
func VideoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	switch {
	case host == "youtu.be":
		return strings.Trim(u.Path, "/")
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				if i := strings.IndexByte(rest, '/'); i >= 0 {
					rest = rest[:i]
				}
				return rest
			}
		}
	}
	return ""
}
