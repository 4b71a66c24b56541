package domain

import "time"

// Report is the audit artifact produced once per stage run.
type Report struct {
	Stage          string        `json:"stage"`
	RunID          string        `json:"run_id"`
	GeneratedAt    time.Time     `json:"generated_at"`
	DryRun         bool          `json:"dry_run"`
	Summary        ReportSummary `json:"summary"`
	KeptRecords    []RecordEntry `json:"kept_records"`
	DeletedRecords []RecordEntry `json:"deleted_records"`
	StrategicKept  []RecordEntry `json:"strategic_kept"`
}

// ReportSummary holds the stage counters.
type ReportSummary struct {
	TotalDuplicateGroups int  `json:"total_duplicate_groups"`
	TotalKept            int  `json:"total_kept"`
	TotalDeleted         int  `json:"total_deleted"`
	TotalStrategicKept   int  `json:"total_strategic_kept"`
	TotalRelevanceKept   int  `json:"total_relevance_kept"`
	TotalArchiveDeleted  int  `json:"total_archive_deleted"`
	TotalInternalDeleted int  `json:"total_internal_deleted"`
	DeletionSkipped      bool `json:"deletion_skipped"`
}

// RecordEntry is the denormalized view of one article in a report.
type RecordEntry struct {
	ID        int64        `json:"id"`
	Group     string       `json:"group,omitempty"`
	Link      string       `json:"link,omitempty"`
	Title     string       `json:"title,omitempty"`
	Portal    string       `json:"portal"`
	Date      string       `json:"date"`
	Strategic bool         `json:"strategic"`
	Relevance string       `json:"relevance,omitempty"`
	KeptBy    KeepReason   `json:"kept_by,omitempty"`
	Reason    DeleteReason `json:"reason,omitempty"`
}

// FindReport lists duplicated links without touching storage.
type FindReport struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Duplicates  []DuplicateLink `json:"duplicates"`
}

// DuplicateLink is one link together with every row that carries it.
type DuplicateLink struct {
	Link        string       `json:"link"`
	Occurrences []Occurrence `json:"occurrences"`
}

// Occurrence is the date/portal pair of one duplicated row.
type Occurrence struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Portal string `json:"portal"`
}
