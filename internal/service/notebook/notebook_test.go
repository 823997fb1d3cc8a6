package notebook

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/recall/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcquirer struct {
	result core.ExtractionResult
}

func (f *fakeAcquirer) Acquire(ctx context.Context, ref core.SourceRef) core.ExtractionResult {
	return f.result
}

type fakeStore struct {
	items []core.ContentItem
	saved []core.ContentItem
	provs []core.Provenance
	err   error
}

func (f *fakeStore) ListItems(ctx context.Context) ([]core.ContentItem, error) {
	return f.items, f.err
}

func (f *fakeStore) GetItem(ctx context.Context, id string) (*core.ContentItem, error) {
	for _, item := range f.items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveNote(ctx context.Context, item core.ContentItem, prov core.Provenance) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, item)
	f.provs = append(f.provs, prov)
	return nil
}

type fakeProcessor struct {
	result core.ProcessedContext
}

func (f *fakeProcessor) ProcessForQuery(ctx context.Context, candidates []core.ContentItem, query string) core.ProcessedContext {
	return f.result
}

type fakeChat struct {
	answer string
	err    error
	called bool
}

func (f *fakeChat) Generate(ctx context.Context, system, user string) (string, error) {
	f.called = true
	return f.answer, f.err
}

type fakeCache struct {
	cleared int
}

func (f *fakeCache) Clear() { f.cleared++ }

func TestAddSourceSuccess(t *testing.T) {
	store := &fakeStore{}
	cache := &fakeCache{}
	nb := New(&fakeAcquirer{result: core.ExtractionResult{
		Success:      true,
		Text:         "Transcript of the talk.",
		Confidence:   0.95,
		StrategyUsed: "caption-read",
		Metadata:     &core.SourceMetadata{Title: "Great Talk", Author: "Some Channel"},
	}}, store, &fakeProcessor{}, &fakeChat{}, cache)

	item, result, err := nb.AddSource(context.Background(), core.SourceRef{URL: "https://youtube.com/watch?v=x"})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Great Talk", item.Title)
	assert.Equal(t, "Some Channel", item.ChannelName)
	assert.True(t, item.IsTranscript)

	require.Len(t, store.saved, 1)
	assert.False(t, store.provs[0].Placeholder)
	assert.Equal(t, "caption-read", store.provs[0].StrategyUsed)
	assert.Equal(t, 1, cache.cleared)
}

func TestAddSourceFailureCreatesPlaceholder(t *testing.T) {
	store := &fakeStore{}
	nb := New(&fakeAcquirer{result: core.ExtractionResult{
		Success:      false,
		ErrorMessage: "every strategy failed",
		Metadata:     &core.SourceMetadata{Title: "Known Title"},
	}}, store, &fakeProcessor{}, &fakeChat{}, nil)

	item, result, err := nb.AddSource(context.Background(), core.SourceRef{URL: "https://example.com/a"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Known Title", item.Title)
	assert.Contains(t, item.Text, "every strategy failed")

	require.Len(t, store.provs, 1)
	assert.True(t, store.provs[0].Placeholder)
}

func TestAddSourceTitleFallsBackToRef(t *testing.T) {
	store := &fakeStore{}
	nb := New(&fakeAcquirer{result: core.ExtractionResult{Success: true, Text: "text"}}, store, &fakeProcessor{}, &fakeChat{}, nil)

	item, _, err := nb.AddSource(context.Background(), core.SourceRef{FilePath: "/tmp/report.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", item.Title)
}

func TestAskWithContext(t *testing.T) {
	chat := &fakeChat{answer: "Grounded answer."}
	nb := New(&fakeAcquirer{}, &fakeStore{}, &fakeProcessor{result: core.ProcessedContext{
		Chunks:  []core.ContextChunk{{SourceID: "a", Text: "=== SOURCE a ===\ncontent\n=== END SOURCE a ==="}},
		Summary: "Using 1 chunk(s).",
	}}, chat, nil)

	answer, pc, err := nb.Ask(context.Background(), "what is this about")
	require.NoError(t, err)
	assert.Equal(t, "Grounded answer.", answer)
	assert.False(t, pc.Empty())
	assert.True(t, chat.called)
}

func TestAskEmptyContextSkipsModel(t *testing.T) {
	chat := &fakeChat{answer: "should not be used"}
	nb := New(&fakeAcquirer{}, &fakeStore{}, &fakeProcessor{result: core.ProcessedContext{
		Summary: "No stored note matched the query closely enough to provide grounded context.",
	}}, chat, nil)

	answer, pc, err := nb.Ask(context.Background(), "unrelated question")
	require.NoError(t, err)
	assert.True(t, pc.Empty())
	assert.Equal(t, pc.Summary, answer)
	assert.False(t, chat.called)
}

func TestAskStoreError(t *testing.T) {
	nb := New(&fakeAcquirer{}, &fakeStore{err: errors.New("db locked")}, &fakeProcessor{}, &fakeChat{}, nil)

	_, _, err := nb.Ask(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db locked")
}
