package dedup

import "NewsDedup/internal/domain"

// ExcludeArchived removes archive-matched articles from rows before grouping.
// Every archived article is returned as an unconditional loser, deduplicated
// by id, whether or not it also appears in rows.
func ExcludeArchived(rows, archived []domain.Article) (remaining, losers []domain.Article) {
	banned := make(map[int64]struct{}, len(archived))
	for _, a := range archived {
		if _, dup := banned[a.ID]; dup {
			continue
		}
		banned[a.ID] = struct{}{}
		losers = append(losers, a)
	}

	remaining = make([]domain.Article, 0, len(rows))
	for _, r := range rows {
		if _, ok := banned[r.ID]; ok {
			continue
		}
		remaining = append(remaining, r)
	}
	return remaining, losers
}
