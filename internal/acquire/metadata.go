package acquire

import (
	"context"
	"time"

	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// MetadataFetcher runs the best-effort descriptive lookup alongside
// extraction. It never blocks or fails an acquisition: the orchestrator
// grabs its result if it is ready, and only waits for it when every
// strategy already failed and a placeholder record is all we can offer.
type MetadataFetcher struct {
	provider core.MetadataProvider
	timeout  time.Duration
}

func NewMetadataFetcher(provider core.MetadataProvider, timeout time.Duration) *MetadataFetcher {
	return &MetadataFetcher{provider: provider, timeout: timeout}
}

// Start kicks off the lookup and returns a channel that delivers exactly
// one value: the metadata, or nil when the lookup failed.
func (f *MetadataFetcher) Start(ctx context.Context, ref core.SourceRef) <-chan *core.SourceMetadata {
	out := make(chan *core.SourceMetadata, 1)
	if f == nil || f.provider == nil {
		out <- nil
		return out
	}

	go func() {
		defer close(out)
		mctx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		md, err := f.provider.Lookup(mctx, ref)
		if err != nil {
			log.FromCtx(ctx).Debug().Err(err).Str("source", ref.String()).Msg("metadata lookup failed")
			out <- nil
			return
		}
		out <- md
	}()
	return out
}
