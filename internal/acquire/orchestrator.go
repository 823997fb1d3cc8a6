package acquire

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sandevgo/recall/internal/acquire/strategy"
	"github.com/sandevgo/recall/internal/config"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
	"github.com/sandevgo/recall/pkg/retry"
)

// Orchestrator drives the per-kind strategy escalation chain. Each
// acquisition is independent: no shared mutable state, safe to run
// concurrently for different sources.
type Orchestrator struct {
	cfg      *config.AcquireConfig
	chains   map[core.SourceKind][]strategy.Strategy
	metadata *MetadataFetcher
}

func NewOrchestrator(cfg *config.AcquireConfig, chains map[core.SourceKind][]strategy.Strategy, metadata *MetadataFetcher) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		chains:   chains,
		metadata: metadata,
	}
}

// DefaultChains builds the fixed priority order per source kind: cheap and
// reliable first, expensive last.
func DefaultChains(
	textLayer *strategy.TextLayer,
	visionOCR *strategy.VisionOCR,
	basicOCR *strategy.BasicOCR,
	caption *strategy.CaptionRead,
	pageScrape *strategy.PageScrape,
	transcription *strategy.AudioTranscription,
) map[core.SourceKind][]strategy.Strategy {
	return map[core.SourceKind][]strategy.Strategy{
		core.KindVideo:    {caption, pageScrape, transcription},
		core.KindWebPage:  {pageScrape},
		core.KindPDF:      {textLayer, visionOCR, basicOCR},
		core.KindImage:    {visionOCR, basicOCR},
		core.KindDocument: {textLayer},
		core.KindAudio:    {transcription},
	}
}

// Acquire turns a source reference into clean text, escalating through the
// strategy chain for the source's kind. It always returns a final
// ExtractionResult: on total failure the result carries the most
// informative collected error plus whatever metadata the parallel lookup
// produced, so the caller can still create a placeholder record.
func (o *Orchestrator) Acquire(ctx context.Context, ref core.SourceRef) core.ExtractionResult {
	started := time.Now()
	logger := log.FromCtx(ctx)

	kind := core.DetectKind(ref)
	logger.Info().Str("source", ref.String()).Str("kind", string(kind)).Msg("acquisition started")

	// Metadata lookup runs alongside extraction from the first moment.
	mdCh := o.metadata.Start(ctx, ref)

	input, err := o.buildInput(ref, kind)
	if err != nil {
		return o.fail(ctx, started, mdCh, nil, err.Error())
	}

	chain := o.chains[kind]
	if len(chain) == 0 {
		return o.fail(ctx, started, mdCh, nil, fmt.Sprintf("no extraction strategy for source kind %q", kind))
	}

	retrier := retry.NewRetrier(&retry.Config{
		MaxRetries: o.cfg.MaxRetries,
		BaseDelay:  o.cfg.BaseDelay,
		MaxDelay:   o.cfg.MaxDelay,
	})

	var attempts []core.ExtractionAttempt

	for _, st := range chain {
		if !st.Applicable(input) {
			logger.Debug().Str("strategy", st.Name()).Msg("strategy not applicable, skipped")
			continue
		}

		var res *strategy.Result
		err := retrier.Do(ctx, func() error {
			attemptStart := time.Now()
			actx, cancel := context.WithTimeout(ctx, o.cfg.AttemptTimeout)
			r, extractErr := st.Extract(actx, input)
			cancel()

			if extractErr == nil && significantLength(r.Text) < o.cfg.MinTextLength {
				extractErr = core.EmptyResultErr(fmt.Sprintf("result below minimum significance (%d chars)", significantLength(r.Text)))
			}

			attempts = append(attempts, newAttempt(st.Name(), attemptStart, actx, extractErr))

			if extractErr != nil {
				errKind := core.KindOf(extractErr)
				logger.Debug().
					Str("strategy", st.Name()).
					Str("error_kind", string(errKind)).
					Err(extractErr).
					Msg("extraction attempt failed")
				if !errKind.Retryable() {
					return retry.Permanent(extractErr)
				}
				return extractErr
			}

			res = r
			return nil
		})

		if err == nil && res != nil {
			// First success wins; we do not keep searching for a better
			// result once one clears the significance gate.
			result := core.ExtractionResult{
				Success:        true,
				Text:           normalizeText(res.Text),
				Confidence:     res.Confidence,
				StrategyUsed:   st.Name(),
				ProcessingTime: time.Since(started),
				Metadata:       mergeMetadata(res.Metadata, tryMetadata(mdCh)),
			}
			logger.Info().
				Str("strategy", st.Name()).
				Int("chars", len(result.Text)).
				Dur("elapsed", result.ProcessingTime).
				Msg("acquisition succeeded")
			return result
		}

		if ctx.Err() != nil {
			// Cancellation: partial attempts are terminal, no retry.
			return o.fail(ctx, started, mdCh, attempts, fmt.Sprintf("acquisition cancelled: %v", ctx.Err()))
		}
	}

	return o.fail(ctx, started, mdCh, attempts, mostInformativeError(attempts))
}

func (o *Orchestrator) buildInput(ref core.SourceRef, kind core.SourceKind) (strategy.Input, error) {
	in := strategy.Input{Ref: ref, Kind: kind, Language: o.cfg.Language}
	if ref.FilePath != "" {
		data, err := os.ReadFile(ref.FilePath)
		if err != nil {
			return in, fmt.Errorf("read source file: %w", err)
		}
		in.Data = data
	}
	return in, nil
}

// fail finalizes a failed acquisition. Unlike the success path it waits for
// the metadata lookup (bounded by the fetcher's own timeout) so the caller
// can still build a placeholder record.
func (o *Orchestrator) fail(ctx context.Context, started time.Time, mdCh <-chan *core.SourceMetadata, attempts []core.ExtractionAttempt, errMsg string) core.ExtractionResult {
	md := awaitMetadata(ctx, mdCh, o.cfg.MetadataTimeout)

	log.FromCtx(ctx).Warn().
		Int("attempts", len(attempts)).
		Str("error", errMsg).
		Bool("metadata", md != nil).
		Msg("acquisition failed")

	return core.ExtractionResult{
		Success:        false,
		ErrorMessage:   errMsg,
		ProcessingTime: time.Since(started),
		Metadata:       md,
	}
}

func newAttempt(name string, startedAt time.Time, actx context.Context, err error) core.ExtractionAttempt {
	a := core.ExtractionAttempt{
		Strategy:  name,
		StartedAt: startedAt,
		Outcome:   core.OutcomeSuccess,
	}
	if err != nil {
		a.Outcome = core.OutcomeFailure
		if actx.Err() == context.DeadlineExceeded {
			a.Outcome = core.OutcomeTimeout
		}
		a.ErrorKind = core.KindOf(err)
		a.Err = err.Error()
		a.Retryable = a.ErrorKind.Retryable()
	}
	return a
}

// errorKindPrecedence orders kinds by how much they tell the user about
// what actually went wrong.
var errorKindPrecedence = map[core.ErrorKind]int{
	core.ErrKindQuotaAuth:      3,
	core.ErrKindMalformedInput: 2,
	core.ErrKindEmptyResult:    1,
	core.ErrKindNetwork:        0,
}

// mostInformativeError picks the failure message worth surfacing after the
// whole chain is exhausted: the latest attempt of the highest-precedence
// kind.
func mostInformativeError(attempts []core.ExtractionAttempt) string {
	best := ""
	bestRank := -1
	for _, a := range attempts {
		if a.Err == "" {
			continue
		}
		if rank := errorKindPrecedence[a.ErrorKind]; rank >= bestRank {
			bestRank = rank
			best = fmt.Sprintf("%s: %s", a.Strategy, a.Err)
		}
	}
	if best == "" {
		return "no applicable extraction strategy produced a result"
	}
	return best
}

// tryMetadata grabs the lookup result only if it is already available, so
// the success path never waits on it.
func tryMetadata(ch <-chan *core.SourceMetadata) *core.SourceMetadata {
	select {
	case md := <-ch:
		return md
	default:
		return nil
	}
}

func awaitMetadata(ctx context.Context, ch <-chan *core.SourceMetadata, timeout time.Duration) *core.SourceMetadata {
	select {
	case md := <-ch:
		return md
	case <-time.After(timeout):
		return nil
	case <-ctx.Done():
		// One last non-blocking look; the fetcher may have delivered
		// before cancellation.
		return tryMetadata(ch)
	}
}

// mergeMetadata prefers fields the strategy itself discovered and fills
// gaps from the parallel lookup.
func mergeMetadata(fromStrategy, fromLookup *core.SourceMetadata) *core.SourceMetadata {
	if fromStrategy == nil {
		return fromLookup
	}
	if fromLookup == nil {
		return fromStrategy
	}
	merged := *fromStrategy
	if merged.Title == "" {
		merged.Title = fromLookup.Title
	}
	if merged.Author == "" {
		merged.Author = fromLookup.Author
	}
	if merged.ThumbnailURL == "" {
		merged.ThumbnailURL = fromLookup.ThumbnailURL
	}
	if merged.Duration == 0 {
		merged.Duration = fromLookup.Duration
	}
	if merged.PageCount == 0 {
		merged.PageCount = fromLookup.PageCount
	}
	return &merged
}

// normalizeText collapses the whitespace noise different extraction
// techniques leave behind without touching the words themselves.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// significantLength counts non-whitespace runes, the measure behind the
// minimum-significance gate.
func significantLength(s string) int {
	n := 0
	for _, f := range strings.Fields(s) {
		n += len([]rune(f))
	}
	return n
}
