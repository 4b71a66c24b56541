package usecase

import (
	"context"
	"log/slog"

	"NewsDedup/internal/dedup"
	"NewsDedup/internal/domain"
	"NewsDedup/internal/ports"
)

// Executor turns the decisions of a stage into one delete batch and its report.
type Executor struct {
	store  ports.ArticleStore
	dryRun bool
	logger *slog.Logger
}

// NewExecutor builds an executor; with dryRun set it never deletes.
func NewExecutor(store ports.ArticleStore, dryRun bool, logger *slog.Logger) *Executor {
	return &Executor{store: store, dryRun: dryRun, logger: logger}
}

// Apply deletes the union of archive and duplicate losers in a single batch
// and returns the stage report. No report is returned when the batch fails.
func (e *Executor) Apply(
	ctx context.Context,
	meta dedup.ReportMeta,
	key dedup.IdentityKey,
	archived []domain.Article,
	outcomes []domain.Outcome,
) (domain.Report, error) {
	meta.DryRun = e.dryRun
	report := dedup.BuildReport(meta, key, archived, outcomes)
	ids := dedup.LoserIDs(archived, outcomes)

	switch {
	case len(ids) == 0:
		report.Summary.DeletionSkipped = true
		if e.logger != nil {
			e.logger.Warn("no duplicates to delete, deletion skipped")
		}
		return report, nil
	case e.dryRun:
		report.Summary.DeletionSkipped = true
		e.info("dry run, deletion skipped", "would_delete", len(ids))
		return report, nil
	}

	deleted, err := e.store.DeleteArticles(ctx, ids)
	if err != nil {
		return domain.Report{}, err
	}
	if deleted != int64(len(ids)) && e.logger != nil {
		e.logger.Warn("deleted row count differs from loser count",
			"expected", len(ids), "deleted", deleted)
	}
	e.info("duplicates deleted", "rows", deleted)
	return report, nil
}

func (e *Executor) info(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}
