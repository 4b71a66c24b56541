package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsDedup/internal/dedup"
	"NewsDedup/internal/domain"
)

var fixedNow = time.Date(2024, time.June, 1, 8, 30, 0, 0, time.UTC)

func testStages() []dedup.Stage {
	return []dedup.Stage{
		{
			Name:             "link",
			Key:              dedup.KeyLink,
			Selector:         dedup.LinkPolicy{DateMode: dedup.KeepNewest, NoDate: dedup.KeepFirst},
			ArchivePrefilter: true,
			ReportFile:       "clean_duplicate_links_report.json",
		},
		{
			Name:       "title_portal",
			Key:        dedup.KeyTitlePortal,
			Selector:   dedup.TitlePortalPolicy{DateMode: dedup.KeepOldest, NoDate: dedup.KeepFirst},
			ReportFile: "clean_extra.json",
		},
	}
}

func seededStore() *memoryStore {
	return &memoryStore{
		rows: []domain.Article{
			{ID: 1, Link: "https://a", Title: "T1", Portal: "G1", PublishedDate: "01/01/2020"},
			{ID: 2, Link: "https://a", Title: "T1", Portal: "G1", PublishedDate: "05/01/2020"},
			{ID: 3, Link: "https://b", Title: "T2", Portal: "G1", PublishedDate: "10/01/2020", Strategic: true},
			{ID: 4, Link: "https://b", Title: "T2", Portal: "G1", PublishedDate: "11/01/2020"},
			{ID: 5, Link: "https://c", Title: "T3", Portal: "UOL", PublishedDate: "01/02/2020"},
			{ID: 6, Link: "https://d", Title: "T3", Portal: "UOL", PublishedDate: "01/01/2020"},
			{ID: 7, Link: "https://e", Title: "T3", Portal: "UOL", PublishedDate: "bad", Relevance: "alta"},
			{ID: 8, Link: "https://x", Title: "X", Portal: "G1", Strategic: true},
			{ID: 9, Link: "https://x", Title: "X2", Portal: "G1"},
			{ID: 10, Link: "https://y", Title: "T2", Portal: "G1"},
		},
		archive: map[string]bool{"https://x": true},
	}
}

func newTestPipeline(store *memoryStore, sink *memorySink, deps PipelineDeps) *Pipeline {
	deps.Store = store
	if sink != nil {
		deps.Sink = sink
	}
	if deps.Stages == nil {
		deps.Stages = testStages()
	}
	deps.RunID = "run-1"
	deps.Clock = func() time.Time { return fixedNow }
	return NewPipeline(deps)
}

func TestPipelineRunsStagesInOrder(t *testing.T) {
	t.Parallel()

	store := seededStore()
	sink := newMemorySink()
	p := newTestPipeline(store, sink, PipelineDeps{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Stages, 2)
	assert.NoError(t, res.SinkErrors())

	link := res.Stages[0].Report
	assert.Equal(t, domain.ReportSummary{
		TotalDuplicateGroups: 2,
		TotalKept:            2,
		TotalDeleted:         4,
		TotalStrategicKept:   1,
		TotalArchiveDeleted:  2,
		TotalInternalDeleted: 2,
	}, link.Summary)
	assert.Equal(t, "run-1", link.RunID)
	assert.Equal(t, fixedNow, link.GeneratedAt)

	extra := res.Stages[1].Report
	assert.Equal(t, domain.ReportSummary{
		TotalDuplicateGroups: 2,
		TotalKept:            2,
		TotalDeleted:         3,
		TotalRelevanceKept:   1,
		TotalInternalDeleted: 3,
	}, extra.Summary)

	require.Len(t, store.deleteCalls, 2)
	assert.ElementsMatch(t, []int64{8, 9, 1, 4}, store.deleteCalls[0])
	assert.ElementsMatch(t, []int64{10, 5, 6}, store.deleteCalls[1])
	assert.Equal(t, []int64{2, 3, 7}, store.ids())

	assert.Equal(t, []string{"clean_duplicate_links_report.json", "clean_extra.json"}, sink.order)
	assert.Equal(t, "/reports/clean_extra.json", res.Stages[1].ReportPath)
}

func TestPipelineIsIdempotent(t *testing.T) {
	t.Parallel()

	store := seededStore()
	p := newTestPipeline(store, newMemorySink(), PipelineDeps{})

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	calls := len(store.deleteCalls)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, store.deleteCalls, calls)
	for _, s := range res.Stages {
		assert.Zero(t, s.Report.Summary.TotalDeleted, s.Stage)
		assert.Zero(t, s.Report.Summary.TotalDuplicateGroups, s.Stage)
		assert.True(t, s.Report.Summary.DeletionSkipped, s.Stage)
	}
}

func TestPipelineEmptyInput(t *testing.T) {
	t.Parallel()

	store := &memoryStore{rows: []domain.Article{
		{ID: 1, Link: "https://a", Title: "A", Portal: "G1"},
		{ID: 2, Link: "https://b", Title: "B", Portal: "G1"},
	}}
	p := newTestPipeline(store, newMemorySink(), PipelineDeps{})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.deleteCalls)
	for _, s := range res.Stages {
		assert.Equal(t, domain.ReportSummary{DeletionSkipped: true}, s.Report.Summary)
		assert.Empty(t, s.Report.KeptRecords)
		assert.Empty(t, s.Report.DeletedRecords)
	}
}

func TestArchivedStrategicRecordIsDeleted(t *testing.T) {
	t.Parallel()

	store := &memoryStore{
		rows: []domain.Article{
			{ID: 1, Link: "https://banned", Strategic: true, PublishedDate: "01/01/2020"},
			{ID: 2, Link: "https://banned", PublishedDate: "02/01/2020"},
			{ID: 3, Link: "https://single-banned", Strategic: true},
		},
		archive: map[string]bool{"https://banned": true, "https://single-banned": true},
	}
	p := newTestPipeline(store, nil, PipelineDeps{Stages: testStages()[:1]})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	report := res.Stages[0].Report
	assert.Equal(t, 3, report.Summary.TotalArchiveDeleted)
	assert.Zero(t, report.Summary.TotalDuplicateGroups)
	assert.Zero(t, report.Summary.TotalStrategicKept)
	assert.Empty(t, report.KeptRecords)
	for _, d := range report.DeletedRecords {
		assert.Equal(t, domain.DeletedArchive, d.Reason)
	}
	assert.Empty(t, store.ids())
}

func TestPipelineTransactionFailureStopsRun(t *testing.T) {
	t.Parallel()

	store := seededStore()
	store.deleteErr = domain.NewFailure(domain.FailureTransaction, "delete chunk", errors.New("constraint violation"))
	sink := newMemorySink()
	p := newTestPipeline(store, sink, PipelineDeps{})

	res, err := p.Run(context.Background())
	require.Error(t, err)

	var f *domain.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, domain.FailureTransaction, f.Kind)
	assert.Equal(t, "link", f.Stage)

	assert.Empty(t, res.Stages)
	assert.Len(t, store.deleteCalls, 1)
	assert.Len(t, store.rows, 10)
	assert.Empty(t, sink.order)
}

func TestPipelineConnectivityFailure(t *testing.T) {
	t.Parallel()

	store := seededStore()
	store.loadErr = domain.NewFailure(domain.FailureConnectivity, "duplicate rows", errors.New("no route to host"))
	p := newTestPipeline(store, nil, PipelineDeps{})

	_, err := p.Run(context.Background())
	assert.Equal(t, domain.FailureConnectivity, domain.KindOf(err))
	assert.Empty(t, store.deleteCalls)
}

func TestPipelineUnclassifiedStoreError(t *testing.T) {
	t.Parallel()

	store := seededStore()
	store.loadErr = errors.New("odd failure")
	p := newTestPipeline(store, nil, PipelineDeps{})

	_, err := p.Run(context.Background())
	var f *domain.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, domain.FailureStorage, f.Kind)
	assert.Equal(t, "link", f.Stage)
}

func TestPipelineSinkFailureKeepsDeletions(t *testing.T) {
	t.Parallel()

	store := seededStore()
	sink := newMemorySink()
	sink.fail = true
	notifier := &memoryNotifier{err: errors.New("telegram down")}
	p := newTestPipeline(store, sink, PipelineDeps{Notifier: notifier})

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Stages, 2)

	assert.Equal(t, []int64{2, 3, 7}, store.ids())
	assert.Equal(t, []string{"link", "title_portal"}, notifier.stages)

	sinkErr := res.SinkErrors()
	require.Error(t, sinkErr)
	assert.Equal(t, domain.FailureReportSink, domain.KindOf(sinkErr))
	assert.ErrorContains(t, sinkErr, "disk full")
	assert.ErrorContains(t, sinkErr, "telegram down")
}

func TestPipelineDryRun(t *testing.T) {
	t.Parallel()

	store := seededStore()
	p := newTestPipeline(store, newMemorySink(), PipelineDeps{DryRun: true})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.deleteCalls)
	assert.Len(t, store.rows, 10)

	link := res.Stages[0].Report
	assert.True(t, link.DryRun)
	assert.True(t, link.Summary.DeletionSkipped)
	assert.Equal(t, 4, link.Summary.TotalDeleted)
}

func TestPipelineFindRunsFirst(t *testing.T) {
	t.Parallel()

	store := seededStore()
	sink := newMemorySink()
	p := newTestPipeline(store, sink, PipelineDeps{FindReport: "duplicate_links_report.json", FindFirst: true})

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, res.Find)
	assert.Equal(t, "duplicate_links_report.json", sink.order[0])

	find := res.Find.Report
	require.Len(t, find.Duplicates, 3)
	assert.Equal(t, "https://a", find.Duplicates[0].Link)
	assert.Equal(t, []domain.Occurrence{
		{ID: 1, Date: "01/01/2020", Portal: "G1"},
		{ID: 2, Date: "05/01/2020", Portal: "G1"},
	}, find.Duplicates[0].Occurrences)
	assert.Equal(t, "https://x", find.Duplicates[2].Link)
}

func TestFindNeverDeletes(t *testing.T) {
	t.Parallel()

	store := seededStore()
	p := newTestPipeline(store, newMemorySink(), PipelineDeps{FindReport: "find.json"})

	res, err := p.Find(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/reports/find.json", res.ReportPath)
	assert.Empty(t, store.deleteCalls)
	assert.Equal(t, fixedNow, res.Report.GeneratedAt)
}
