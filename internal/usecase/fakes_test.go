package usecase

import (
	"context"
	"errors"
	"sort"

	"NewsDedup/internal/dedup"
	"NewsDedup/internal/domain"
)

// memoryStore mimics the SQL repository over a slice.
type memoryStore struct {
	rows        []domain.Article
	archive     map[string]bool
	deleteCalls [][]int64
	deleteErr   error
	loadErr     error
}

func (m *memoryStore) DuplicateRows(_ context.Context, key dedup.IdentityKey) ([]domain.Article, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	counts := map[string]int{}
	for _, r := range m.rows {
		counts[key.ValueOf(r)]++
	}
	var out []domain.Article
	for _, r := range m.rows {
		if counts[key.ValueOf(r)] > 1 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ka, kb := key.ValueOf(a), key.ValueOf(b); ka != kb {
			return ka < kb
		}
		if a.PublishedDate != b.PublishedDate {
			return a.PublishedDate < b.PublishedDate
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (m *memoryStore) ArchivedRows(_ context.Context) ([]domain.Article, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	var out []domain.Article
	for _, r := range m.rows {
		if m.archive[r.Link] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) DeleteArticles(_ context.Context, ids []int64) (int64, error) {
	m.deleteCalls = append(m.deleteCalls, append([]int64(nil), ids...))
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	drop := map[int64]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.rows[:0]
	var n int64
	for _, r := range m.rows {
		if drop[r.ID] {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func (m *memoryStore) ids() []int64 {
	out := make([]int64, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r.ID)
	}
	return out
}

type memorySink struct {
	written map[string]any
	order   []string
	fail    bool
}

func newMemorySink() *memorySink {
	return &memorySink{written: map[string]any{}}
}

func (s *memorySink) WriteReport(_ context.Context, name string, report any) (string, error) {
	if s.fail {
		return "", domain.NewFailure(domain.FailureReportSink, "write report", errors.New("disk full"))
	}
	s.written[name] = report
	s.order = append(s.order, name)
	return "/reports/" + name, nil
}

type memoryNotifier struct {
	stages []string
	err    error
}

func (n *memoryNotifier) PublishSummary(_ context.Context, r domain.Report) error {
	n.stages = append(n.stages, r.Stage)
	return n.err
}
