package ports

import (
	"context"

	"NewsDedup/internal/dedup"
	"NewsDedup/internal/domain"
)

// ArticleStore is the relational store holding the news table and the
// rejection archive.
type ArticleStore interface {
	// DuplicateRows returns every row whose identity value (link, or title
	// and portal) is shared by more than one row, ordered by the identity
	// columns and then by the raw date string.
	DuplicateRows(ctx context.Context, key dedup.IdentityKey) ([]domain.Article, error)
	// ArchivedRows returns every row whose link exists in the rejection archive.
	ArchivedRows(ctx context.Context) ([]domain.Article, error)
	// DeleteArticles removes ids in a single transaction and reports how many
	// rows were removed. Nothing is removed when it fails.
	DeleteArticles(ctx context.Context, ids []int64) (int64, error)
}

// ReportSink persists audit artifacts.
type ReportSink interface {
	WriteReport(ctx context.Context, name string, report any) (string, error)
}

// Notifier streams stage summaries to chat channels.
type Notifier interface {
	PublishSummary(ctx context.Context, report domain.Report) error
}
