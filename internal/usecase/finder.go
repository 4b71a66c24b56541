package usecase

import (
	"context"
	"time"

	"NewsDedup/internal/dedup"
	"NewsDedup/internal/domain"
)

// BuildFindReport lists duplicated links with their occurrences.
func BuildFindReport(runID string, at time.Time, rows []domain.Article) domain.FindReport {
	report := domain.FindReport{
		RunID:       runID,
		GeneratedAt: at,
		Duplicates:  []domain.DuplicateLink{},
	}
	for _, g := range dedup.GroupRows(rows, dedup.KeyLink) {
		dl := domain.DuplicateLink{Link: g.Key, Occurrences: make([]domain.Occurrence, 0, len(g.Articles))}
		for _, a := range g.Articles {
			dl.Occurrences = append(dl.Occurrences, domain.Occurrence{ID: a.ID, Date: a.PublishedDate, Portal: a.Portal})
		}
		report.Duplicates = append(report.Duplicates, dl)
	}
	return report
}

// Find loads duplicated links and writes the find report. It never deletes.
func (p *Pipeline) Find(ctx context.Context) (FindResult, error) {
	rows, err := p.loader.Duplicates(ctx, dedup.KeyLink)
	if err != nil {
		return FindResult{}, stageFailure("find", err)
	}

	result := FindResult{Report: BuildFindReport(p.runID, p.clock(), rows)}
	p.logger.Info("duplicate links found", "links", len(result.Report.Duplicates))

	if p.sink != nil && p.findReport != "" {
		path, err := p.sink.WriteReport(ctx, p.findReport, result.Report)
		if err != nil {
			result.SinkErr = sinkFailure("find", err)
			p.logger.Error("cannot save find report", "error", err)
		}
		result.ReportPath = path
	}
	return result, nil
}
