package usecase

import (
	"context"
	"log/slog"

	"NewsDedup/internal/dedup"
	"NewsDedup/internal/domain"
	"NewsDedup/internal/ports"
)

// Loader reads the rows a stage works on.
type Loader struct {
	store  ports.ArticleStore
	logger *slog.Logger
}

// NewLoader wraps an ArticleStore.
func NewLoader(store ports.ArticleStore, logger *slog.Logger) *Loader {
	return &Loader{store: store, logger: logger}
}

// Duplicates returns every row belonging to a group of two or more under key.
// The store's ordering is preserved; it is only a hint for tie-breaks.
func (l *Loader) Duplicates(ctx context.Context, key dedup.IdentityKey) ([]domain.Article, error) {
	rows, err := l.store.DuplicateRows(ctx, key)
	if err != nil {
		return nil, err
	}
	if l.logger != nil {
		l.logger.Debug("duplicate rows loaded", "key", key, "rows", len(rows))
	}
	return rows, nil
}

// Archived returns the rows whose link is listed in the rejection archive.
func (l *Loader) Archived(ctx context.Context) ([]domain.Article, error) {
	rows, err := l.store.ArchivedRows(ctx)
	if err != nil {
		return nil, err
	}
	if l.logger != nil {
		l.logger.Debug("archived rows loaded", "rows", len(rows))
	}
	return rows, nil
}
