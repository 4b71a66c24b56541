package domain

// Article is a single row of the news table managed by the deduplicator.
// Nullable columns are normalized on load: absent strings become "" and an
// absent strategic flag becomes false.
type Article struct {
	ID            int64
	Link          string
	Title         string
	Portal        string
	PublishedDate string
	Strategic     bool
	Relevance     string
}

// Group is the set of articles sharing one identity-key value.
type Group struct {
	Key      string
	Articles []Article
}

// KeepReason records which rule of a policy chose the survivor.
type KeepReason string

const (
	KeptStrategic KeepReason = "strategic"
	KeptRelevance KeepReason = "relevance"
	KeptByDate    KeepReason = "date"
	KeptFallback  KeepReason = "fallback"
)

// DeleteReason explains why an article was scheduled for removal.
type DeleteReason string

const (
	DeletedArchive   DeleteReason = "archive"
	DeletedDuplicate DeleteReason = "duplicate"
)

// Outcome is the resolution of one Group: one survivor, the rest losers.
type Outcome struct {
	Group   Group
	Kept    Article
	KeptBy  KeepReason
	Deleted []Article
}

// DeletedIDs lists the loser identifiers in group order.
func (o Outcome) DeletedIDs() []int64 {
	ids := make([]int64, 0, len(o.Deleted))
	for _, a := range o.Deleted {
		ids = append(ids, a.ID)
	}
	return ids
}
