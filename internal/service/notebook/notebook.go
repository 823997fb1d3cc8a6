package notebook

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sandevgo/recall/internal/acquire/strategy"
	"github.com/sandevgo/recall/internal/core"
	"github.com/sandevgo/recall/pkg/log"
)

// Acquirer turns a source reference into text. Satisfied by
// acquire.Orchestrator.
type Acquirer interface {
	Acquire(ctx context.Context, ref core.SourceRef) core.ExtractionResult
}

// ContextBuilder assembles a bounded context for a query. Satisfied by
// retrieval.Processor.
type ContextBuilder interface {
	ProcessForQuery(ctx context.Context, candidates []core.ContentItem, query string) core.ProcessedContext
}

// CacheClearer invalidates memoized contexts when the corpus changes.
type CacheClearer interface {
	Clear()
}

const answerSystemPrompt = `You are a personal knowledge base assistant.
Answer the question using ONLY the sources below. Each source is delimited by
"=== SOURCE ... ===" and "=== END SOURCE ... ===" markers; never attribute
one source's content to another. Cite the source title when you use it.
If the sources do not contain the answer, say so plainly instead of guessing.`

// Notebook is the application service: it persists acquired sources as notes
// and answers questions grounded in them.
type Notebook struct {
	acquirer  Acquirer
	store     core.ContentStore
	processor ContextBuilder
	chat      core.ChatProvider
	cache     CacheClearer
}

func New(acquirer Acquirer, store core.ContentStore, processor ContextBuilder, chat core.ChatProvider, cache CacheClearer) *Notebook {
	return &Notebook{
		acquirer:  acquirer,
		store:     store,
		processor: processor,
		chat:      chat,
		cache:     cache,
	}
}

// AddSource acquires a source and stores the result as a note. A failed
// acquisition still produces a metadata-only placeholder note, so the user
// ends up with a record rather than nothing.
func (n *Notebook) AddSource(ctx context.Context, ref core.SourceRef) (core.ContentItem, core.ExtractionResult, error) {
	result := n.acquirer.Acquire(ctx, ref)

	item := core.ContentItem{
		ID:        uuid.NewString(),
		Title:     noteTitle(ref, result.Metadata),
		Text:      result.Text,
		SourceURL: ref.URL,
	}
	prov := core.Provenance{
		StrategyUsed: result.StrategyUsed,
		Confidence:   result.Confidence,
		Placeholder:  !result.Success,
	}
	if result.Metadata != nil {
		item.ChannelName = result.Metadata.Author
	}
	switch result.StrategyUsed {
	case strategy.NameCaptionRead, strategy.NameAudioTranscription:
		item.IsTranscript = true
	}
	if !result.Success {
		item.Text = fmt.Sprintf("[no content extracted: %s]", result.ErrorMessage)
	}

	if err := n.store.SaveNote(ctx, item, prov); err != nil {
		return core.ContentItem{}, result, fmt.Errorf("save note: %w", err)
	}
	if n.cache != nil {
		n.cache.Clear()
	}

	log.FromCtx(ctx).Info().
		Str("note_id", item.ID).
		Bool("placeholder", prov.Placeholder).
		Str("strategy", result.StrategyUsed).
		Msg("source added to knowledge base")

	return item, result, nil
}

// BuildContext loads the full corpus and assembles the context for a query.
func (n *Notebook) BuildContext(ctx context.Context, query string) (core.ProcessedContext, error) {
	items, err := n.store.ListItems(ctx)
	if err != nil {
		return core.ProcessedContext{}, fmt.Errorf("list notes: %w", err)
	}
	return n.processor.ProcessForQuery(ctx, items, query), nil
}

// Ask answers a question grounded in the stored notes. When no note clears
// the relevance bar, it returns the assembler's summary instead of calling
// the model, so the answer is never fabricated from thin air.
func (n *Notebook) Ask(ctx context.Context, question string) (string, core.ProcessedContext, error) {
	pc, err := n.BuildContext(ctx, question)
	if err != nil {
		return "", pc, err
	}
	if pc.Empty() {
		return pc.Summary, pc, nil
	}

	prompt := fmt.Sprintf("Sources:\n\n%s\n\nQuestion: %s", pc.Text(), question)
	answer, err := n.chat.Generate(ctx, answerSystemPrompt, prompt)
	if err != nil {
		return "", pc, fmt.Errorf("generate answer: %w", err)
	}
	return answer, pc, nil
}

// noteTitle prefers the metadata title and degrades to something readable
// derived from the reference itself.
func noteTitle(ref core.SourceRef, md *core.SourceMetadata) string {
	if md != nil && strings.TrimSpace(md.Title) != "" {
		return strings.TrimSpace(md.Title)
	}
	if ref.FilePath != "" {
		return filepath.Base(ref.FilePath)
	}
	return ref.URL
}
