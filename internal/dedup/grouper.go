package dedup

import "NewsDedup/internal/domain"

// GroupRows partitions rows by identity-key value. Groups keep the order in
// which their first row appeared and rows keep their input order inside a
// group. Singleton groups are dropped.
func GroupRows(rows []domain.Article, key IdentityKey) []domain.Group {
	index := make(map[string]int)
	var groups []domain.Group

	for _, row := range rows {
		value := key.ValueOf(row)
		pos, ok := index[value]
		if !ok {
			pos = len(groups)
			index[value] = pos
			groups = append(groups, domain.Group{Key: value})
		}
		groups[pos].Articles = append(groups[pos].Articles, row)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Articles) > 1 {
			out = append(out, g)
		}
	}
	return out
}
