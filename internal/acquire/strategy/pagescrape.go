package strategy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sandevgo/recall/internal/core"
)

const (
	pageScrapeConfidence = 0.7
	pageFetchLimit       = 2 << 20 // 2MB
)

var captionTrackRe = regexp.MustCompile(`"captionTracks":\[\{"baseUrl":"([^"]+)"`)

// PageScrape fetches a page over plain HTTP and pulls text out of it. For
// video watch pages it hunts the caption track URL embedded in the player
// config; for ordinary pages it runs readability extraction with an
// html2text fallback.
type PageScrape struct {
	client *http.Client
	policy *bluemonday.Policy
}

func NewPageScrape() *PageScrape {
	return &PageScrape{
		client: &http.Client{Timeout: 20 * time.Second},
		policy: bluemonday.UGCPolicy(),
	}
}

func (p *PageScrape) Name() string { return NamePageScrape }

func (p *PageScrape) Applicable(in Input) bool {
	return in.Ref.IsURL() && (in.Kind == core.KindVideo || in.Kind == core.KindWebPage)
}

func (p *PageScrape) Extract(ctx context.Context, in Input) (*Result, error) {
	page, err := p.fetch(ctx, in.Ref.URL)
	if err != nil {
		return nil, err
	}

	if in.Kind == core.KindVideo {
		return p.extractCaptions(ctx, page)
	}
	return p.extractArticle(in.Ref.URL, page)
}

func (p *PageScrape) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", core.MalformedInputErr(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", core.RecallUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", core.NetworkErr(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, pageFetchLimit))
	if err != nil {
		return "", core.NetworkErr(err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", core.StatusErr(resp.StatusCode, string(body))
	}
	return string(body), nil
}

// extractCaptions digs the caption track URL out of the watch page's player
// config and fetches the transcript from it.
func (p *PageScrape) extractCaptions(ctx context.Context, page string) (*Result, error) {
	m := captionTrackRe.FindStringSubmatch(page)
	if m == nil {
		return nil, core.EmptyResultErr("watch page exposes no caption tracks")
	}

	trackURL := strings.ReplaceAll(m[1], "\\u0026", "&")
	trackURL = strings.ReplaceAll(trackURL, `\/`, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, core.MalformedInputErr(fmt.Errorf("caption track url: %w", err))
	}
	req.Header.Set("User-Agent", core.RecallUserAgent)

	resp, err := p.client.Do(req)
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
	return &Result{Text: text, Confidence: pageScrapeConfidence}, nil
}

func (p *PageScrape) extractArticle(pageURL, page string) (*Result, error) {
	parsed, _ := url.Parse(pageURL)

	article, err := readability.FromReader(strings.NewReader(page), parsed)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		res := &Result{
			Text:       strings.TrimSpace(article.TextContent),
			Confidence: pageScrapeConfidence,
		}
		if article.Title != "" {
			res.Metadata = &core.SourceMetadata{
				Kind:  core.KindWebPage,
				Title: article.Title,
			}
		}
		return res, nil
	}

	// Readability gave up; sanitize and flatten the raw markup instead.
	text, err := html2text.FromString(p.policy.Sanitize(page), html2text.Options{OmitLinks: true})
	if err != nil {
		return nil, core.MalformedInputErr(fmt.Errorf("html2text: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return nil, core.EmptyResultErr("page produced no text")
	}
	return &Result{Text: strings.TrimSpace(text), Confidence: pageScrapeConfidence * 0.8}, nil
}
