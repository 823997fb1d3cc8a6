package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/recall/internal/core"
)

// NotesRepo persists notes and their acquisition provenance. It implements
// core.ContentStore.
type NotesRepo struct {
	db *sql.DB
}

func NewNotesRepo(db *sql.DB) *NotesRepo {
	return &NotesRepo{db: db}
}

func (r *NotesRepo) SaveNote(ctx context.Context, item core.ContentItem, prov core.Provenance) error {
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, title, text, is_transcript, source_url, channel_name, strategy_used, confidence, placeholder, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   text = excluded.text,
		   is_transcript = excluded.is_transcript,
		   source_url = excluded.source_url,
		   channel_name = excluded.channel_name,
		   strategy_used = excluded.strategy_used,
		   confidence = excluded.confidence,
		   placeholder = excluded.placeholder`,
		item.ID, item.Title, item.Text, item.IsTranscript,
		item.SourceURL, item.ChannelName,
		prov.StrategyUsed, prov.Confidence, prov.Placeholder,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}
	return nil
}

func (r *NotesRepo) ListItems(ctx context.Context) ([]core.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, text, is_transcript, source_url, channel_name, created_at
		 FROM notes
		 ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var items []core.ContentItem
	for rows.Next() {
		var item core.ContentItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Text, &item.IsTranscript,
			&item.SourceURL, &item.ChannelName, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItem returns nil without error when no note has the given id.
func (r *NotesRepo) GetItem(ctx context.Context, id string) (*core.ContentItem, error) {
	var item core.ContentItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, text, is_transcript, source_url, channel_name, created_at
		 FROM notes WHERE id = ?`, id).
		Scan(&item.ID, &item.Title, &item.Text, &item.IsTranscript,
			&item.SourceURL, &item.ChannelName, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return &item, nil
}

// GetProvenance reports how a stored note's text was obtained.
func (r *NotesRepo) GetProvenance(ctx context.Context, id string) (*core.Provenance, error) {
	var prov core.Provenance
	err := r.db.QueryRowContext(ctx,
		`SELECT strategy_used, confidence, placeholder FROM notes WHERE id = ?`, id).
		Scan(&prov.StrategyUsed, &prov.Confidence, &prov.Placeholder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provenance: %w", err)
	}
	return &prov, nil
}

func (r *NotesRepo) DeleteItem(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}
