package dedup

import (
	"time"

	"NewsDedup/internal/domain"
)

// ReportMeta carries the run-level fields stamped on every report.
type ReportMeta struct {
	Stage       string
	RunID       string
	GeneratedAt time.Time
	DryRun      bool
}

// BuildReport assembles the audit report of one stage from the archive
// losers and the per-group outcomes. DeletionSkipped is left to the caller.
func BuildReport(meta ReportMeta, key IdentityKey, archived []domain.Article, outcomes []domain.Outcome) domain.Report {
	r := domain.Report{
		Stage:          meta.Stage,
		RunID:          meta.RunID,
		GeneratedAt:    meta.GeneratedAt,
		DryRun:         meta.DryRun,
		KeptRecords:    make([]domain.RecordEntry, 0, len(outcomes)),
		DeletedRecords: make([]domain.RecordEntry, 0, len(archived)),
		StrategicKept:  []domain.RecordEntry{},
	}

	for _, a := range archived {
		e := entry(a, key)
		e.Reason = domain.DeletedArchive
		r.DeletedRecords = append(r.DeletedRecords, e)
	}
	r.Summary.TotalArchiveDeleted = len(archived)

	for _, o := range outcomes {
		kept := entry(o.Kept, key)
		kept.KeptBy = o.KeptBy
		r.KeptRecords = append(r.KeptRecords, kept)

		switch o.KeptBy {
		case domain.KeptStrategic:
			r.StrategicKept = append(r.StrategicKept, kept)
		case domain.KeptRelevance:
			r.Summary.TotalRelevanceKept++
		}

		for _, a := range o.Deleted {
			e := entry(a, key)
			e.Reason = domain.DeletedDuplicate
			r.DeletedRecords = append(r.DeletedRecords, e)
			r.Summary.TotalInternalDeleted++
		}
	}

	r.Summary.TotalDuplicateGroups = len(outcomes)
	r.Summary.TotalKept = len(r.KeptRecords)
	r.Summary.TotalStrategicKept = len(r.StrategicKept)
	r.Summary.TotalDeleted = len(r.DeletedRecords)
	return r
}

// LoserIDs returns the union of archive and duplicate losers without repeats.
func LoserIDs(archived []domain.Article, outcomes []domain.Outcome) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	add := func(id int64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, a := range archived {
		add(a.ID)
	}
	for _, o := range outcomes {
		for _, a := range o.Deleted {
			add(a.ID)
		}
	}
	return ids
}

func entry(a domain.Article, key IdentityKey) domain.RecordEntry {
	return domain.RecordEntry{
		ID:        a.ID,
		Group:     key.Display(key.ValueOf(a)),
		Link:      a.Link,
		Title:     a.Title,
		Portal:    a.Portal,
		Date:      a.PublishedDate,
		Strategic: a.Strategic,
		Relevance: a.Relevance,
	}
}
