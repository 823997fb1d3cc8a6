package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sandevgo/recall/internal/core"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20 // 1MB
)

const defaultOEmbedURL = "https://www.youtube.com/oembed"

// Client is the metadata-provider boundary: best-effort title/author/
// thumbnail lookup. Every method degrades to an error the caller is free to
// ignore; nothing here is load-bearing for extraction.
type Client struct {
	client    *http.Client
	oembedURL string
}

type Option func(*Client)

// WithOEmbedURL overrides the oEmbed endpoint, mainly for tests.
func WithOEmbedURL(u string) Option {
	return func(c *Client) { c.oembedURL = u }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		client:    &http.Client{Timeout: defaultTimeout},
		oembedURL: defaultOEmbedURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup resolves descriptive metadata for a source. Videos go through the
// oEmbed endpoint, web pages get their <title>, files fall back to the
// file name.
func (c *Client) Lookup(ctx context.Context, ref core.SourceRef) (*core.SourceMetadata, error) {
	kind := core.DetectKind(ref)
	switch kind {
	case core.KindVideo:
		return c.lookupVideo(ctx, ref.URL)
	case core.KindWebPage:
		return c.lookupPage(ctx, ref.URL)
	default:
		if ref.FilePath == "" {
			return nil, fmt.Errorf("no metadata source for %s", ref)
		}
		name := filepath.Base(ref.FilePath)
		name = strings.TrimSuffix(name, filepath.Ext(name))
		return &core.SourceMetadata{Kind: kind, Title: name}, nil
	}
}

func (c *Client) lookupVideo(ctx context.Context, videoURL string) (*core.SourceMetadata, error) {
	q := url.Values{}
	q.Set("url", videoURL)
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.oembedURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", core.RecallUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oembed http %d", resp.StatusCode)
	}

	var result struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&result); err != nil {
		return nil, fmt.Errorf("oembed decode: %w", err)
	}

	return &core.SourceMetadata{
		Kind:         core.KindVideo,
		Title:        result.Title,
		Author:       result.AuthorName,
		ThumbnailURL: result.ThumbnailURL,
	}, nil
}

func (c *Client) lookupPage(ctx context.Context, pageURL string) (*core.SourceMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", core.RecallUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	md := &core.SourceMetadata{Kind: core.KindWebPage}
	md.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && og != "" {
		md.Title = og
	}
	if author, ok := doc.Find(`meta[name="author"]`).Attr("content"); ok {
		md.Author = strings.TrimSpace(author)
	}
	if img, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		md.ThumbnailURL = img
	}

	if md.Title == "" {
		return nil, fmt.Errorf("page has no title")
	}
	return md, nil
}
