package core

import "context"

// ChatProvider is the generative-model boundary. The acquisition and
// retrieval engines never call it; only the surfaces around them do, handing
// over a ProcessedContext.
type ChatProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// MetadataProvider is the best-effort descriptive lookup boundary. It is
// independently failable and must never block extraction.
type MetadataProvider interface {
	Lookup(ctx context.Context, ref SourceRef) (*SourceMetadata, error)
}

// ContentStore is the note persistence boundary. The retrieval engine only
// ever reads from it.
type ContentStore interface {
	ListItems(ctx context.Context) ([]ContentItem, error)
	GetItem(ctx context.Context, id string) (*ContentItem, error)
	SaveNote(ctx context.Context, item ContentItem, prov Provenance) error
}
