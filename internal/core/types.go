package core

import (
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	RecallName          = "Recall"
	RecallUserAgent     = "Recall-Agent/0.1"
	RecallRepositoryURL = "https://github.com/sandevgo/recall"
	RecallVersion       = "0.1.0"
)

// SourceKind determines which extraction strategies apply to a source.
type SourceKind string

const (
	KindVideo    SourceKind = "video"
	KindWebPage  SourceKind = "webpage"
	KindPDF      SourceKind = "pdf"
	KindImage    SourceKind = "image"
	KindAudio    SourceKind = "audio"
	KindDocument SourceKind = "document"
	KindUnknown  SourceKind = "unknown"
)

// SourceRef identifies a piece of content to extract: a URL or an uploaded
// file. Immutable once created by the caller.
type SourceRef struct {
	URL      string `json:"url,omitempty"`
	FilePath string `json:"file_path,omitempty"`
	MIME     string `json:"mime,omitempty"`
}

func (s SourceRef) IsURL() bool {
	return s.URL != ""
}

func (s SourceRef) String() string {
	if s.IsURL() {
		return s.URL
	}
	return s.FilePath
}

var videoHosts = []string{
	"youtube.com",
	"youtu.be",
	"vimeo.com",
}

// DetectKind classifies a source reference so the orchestrator can pick the
// strategy chain. URLs on known video hosts are videos, other URLs are web
// pages; files are classified by MIME hint first, extension second.
func DetectKind(ref SourceRef) SourceKind {
	if ref.IsURL() {
		u, err := url.Parse(ref.URL)
		if err != nil || u.Host == "" {
			return KindUnknown
		}
		host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
		for _, vh := range videoHosts {
			if host == vh || strings.HasSuffix(host, "."+vh) {
				return KindVideo
			}
		}
		return KindWebPage
	}

	mime := strings.ToLower(ref.MIME)
	switch {
	case strings.HasPrefix(mime, "application/pdf"):
		return KindPDF
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "audio/"), strings.HasPrefix(mime, "video/"):
		return KindAudio
	case mime != "":
		return KindDocument
	}

	switch strings.ToLower(path.Ext(ref.FilePath)) {
	case ".pdf":
		return KindPDF
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".tiff", ".bmp":
		return KindImage
	case ".mp3", ".m4a", ".wav", ".ogg", ".flac", ".mp4", ".webm", ".mkv":
		return KindAudio
	case ".doc", ".docx", ".odt", ".rtf", ".txt", ".md":
		return KindDocument
	}
	return KindUnknown
}

// AttemptOutcome is the terminal state of a single strategy invocation.
type AttemptOutcome string

const (
	OutcomeSuccess AttemptOutcome = "success"
	OutcomeFailure AttemptOutcome = "failure"
	OutcomeTimeout AttemptOutcome = "timeout"
)

// ExtractionAttempt records one strategy invocation. The orchestrator keeps
// an append-only log of attempts for the duration of a single acquisition
// and discards it when the call returns.
type ExtractionAttempt struct {
	Strategy  string
	StartedAt time.Time
	Outcome   AttemptOutcome
	ErrorKind ErrorKind
	Err       string
	Retryable bool
}

// ExtractionResult is the terminal value of an acquisition. Ownership
// transfers to the caller when Acquire returns.
type ExtractionResult struct {
	Success        bool            `json:"success"`
	Text           string          `json:"text,omitempty"`
	Confidence     float64         `json:"confidence"`
	StrategyUsed   string          `json:"strategy_used,omitempty"`
	ProcessingTime time.Duration   `json:"processing_time_ms"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	Metadata       *SourceMetadata `json:"metadata,omitempty"`
}

// SourceMetadata holds best-effort descriptive fields for a source. Its
// lifecycle is independent from extraction: it may exist even when every
// extraction strategy failed.
type SourceMetadata struct {
	Kind         SourceKind    `json:"kind"`
	Title        string        `json:"title,omitempty"`
	Author       string        `json:"author,omitempty"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	PageCount    int           `json:"page_count,omitempty"`
}

// ContentItem is a stored note evaluated as a retrieval candidate. Owned by
// the content store; the retrieval engine only reads it.
type ContentItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	IsTranscript bool      `json:"is_transcript"`
	SourceURL    string    `json:"source_url,omitempty"`
	ChannelName  string    `json:"channel_name,omitempty"`
}

// ContentType names the declared content type used in isolation headers.
func (c ContentItem) ContentType() string {
	if c.IsTranscript {
		return "transcript"
	}
	return "note"
}

// Provenance records how a note's text was obtained.
type Provenance struct {
	StrategyUsed string  `json:"strategy_used,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	Placeholder  bool    `json:"placeholder,omitempty"`
}

// ScoredCandidate pairs a candidate with its relevance score. Produced and
// discarded within a single ProcessForQuery call.
type ScoredCandidate struct {
	Item            ContentItem
	RelevanceScore  float64
	PassesThreshold bool
}

// ContextChunk is one isolation-wrapped segment of a single source's text.
// A chunk always references exactly one source; chunks are never merged
// across sources.
type ContextChunk struct {
	SourceID     string `json:"source_id"`
	Ordinal      int    `json:"ordinal"`
	Text         string `json:"text"`
	ApproxLength int    `json:"approx_length"`
}

// ProcessedContext is the bounded, attributable payload handed to a
// generative model. An empty context with a non-empty Summary is a valid
// terminal state, not an error.
type ProcessedContext struct {
	Chunks      []ContextChunk `json:"chunks"`
	Sources     []ContentItem  `json:"sources"`
	TotalLength int            `json:"total_length"`
	TotalTokens int            `json:"total_tokens"`
	Summary     string         `json:"summary"`
	Fingerprint string         `json:"fingerprint"`
}

func (p ProcessedContext) Empty() bool {
	return len(p.Chunks) == 0
}

// Text concatenates all chunks in order, for handing to a chat provider.
func (p ProcessedContext) Text() string {
	var b strings.Builder
	for i, ch := range p.Chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(ch.Text)
	}
	return b.String()
}
