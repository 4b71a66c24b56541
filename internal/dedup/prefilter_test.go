package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"NewsDedup/internal/domain"
)

func TestExcludeArchivedRemovesStrategicRows(t *testing.T) {
	t.Parallel()

	rows := []domain.Article{
		{ID: 1, Link: "https://banned", Strategic: true, PublishedDate: "01/01/2020"},
		{ID: 2, Link: "https://banned", PublishedDate: "02/01/2020"},
		{ID: 3, Link: "https://ok"},
		{ID: 4, Link: "https://ok"},
	}
	archived := []domain.Article{
		{ID: 1, Link: "https://banned", Strategic: true},
		{ID: 2, Link: "https://banned"},
		{ID: 9, Link: "https://banned"},
		{ID: 2, Link: "https://banned"},
	}

	remaining, losers := ExcludeArchived(rows, archived)

	assert.Equal(t, []int64{3, 4}, ids(remaining))
	assert.Equal(t, []int64{1, 2, 9}, ids(losers))

	groups := GroupRows(remaining, KeyLink)
	assert.Len(t, groups, 1)
	assert.Equal(t, "https://ok", groups[0].Key)
}

func TestExcludeArchivedNoArchive(t *testing.T) {
	t.Parallel()

	rows := []domain.Article{{ID: 1}, {ID: 2}}
	remaining, losers := ExcludeArchived(rows, nil)

	assert.Equal(t, rows, remaining)
	assert.Empty(t, losers)
}
