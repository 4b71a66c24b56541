package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"NewsDedup/internal/dedup"
	"NewsDedup/internal/domain"
	"NewsDedup/internal/ports"
)

// PipelineDeps wires the driven adapters and the declared stages.
type PipelineDeps struct {
	Store    ports.ArticleStore
	Sink     ports.ReportSink
	Notifier ports.Notifier
	Stages   []dedup.Stage
	// FindReport names the find report file; FindFirst runs the find pass
	// at the start of Run.
	FindReport string
	FindFirst  bool
	DryRun     bool
	RunID      string
	Clock      func() time.Time
	Logger     *slog.Logger
}

// Pipeline runs the resolution stages in their declared order.
type Pipeline struct {
	loader     *Loader
	executor   *Executor
	sink       ports.ReportSink
	notifier   ports.Notifier
	stages     []dedup.Stage
	findReport string
	findFirst  bool
	runID      string
	clock      func() time.Time
	logger     *slog.Logger
}

// StageResult is what one stage produced.
type StageResult struct {
	Stage      string
	Report     domain.Report
	ReportPath string
	SinkErr    error
}

// FindResult is what the find pass produced.
type FindResult struct {
	Report     domain.FindReport
	ReportPath string
	SinkErr    error
}

// RunResult collects the results of a whole run.
type RunResult struct {
	RunID  string
	Find   *FindResult
	Stages []StageResult
}

// SinkErrors joins every report-sink failure of the run.
func (r RunResult) SinkErrors() error {
	var errs []error
	if r.Find != nil && r.Find.SinkErr != nil {
		errs = append(errs, r.Find.SinkErr)
	}
	for _, s := range r.Stages {
		if s.SinkErr != nil {
			errs = append(errs, s.SinkErr)
		}
	}
	return errors.Join(errs...)
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Pipeline{
		loader:     NewLoader(deps.Store, logger.With("component", "loader")),
		executor:   NewExecutor(deps.Store, deps.DryRun, logger.With("component", "executor")),
		sink:       deps.Sink,
		notifier:   deps.Notifier,
		stages:     deps.Stages,
		findReport: deps.FindReport,
		findFirst:  deps.FindFirst,
		runID:      deps.RunID,
		clock:      clock,
		logger:     logger,
	}
}

// Run executes the optional find pass and then every stage in order. The
// first stage failure stops the run; deletions committed by earlier stages
// stay in place. Report-sink failures never stop the run and are returned
// inside the result.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	result := RunResult{RunID: p.runID}

	if p.findFirst {
		find, err := p.Find(ctx)
		if err != nil {
			return result, err
		}
		result.Find = &find
	}

	for _, stage := range p.stages {
		res, err := p.RunStage(ctx, stage)
		if err != nil {
			return result, err
		}
		result.Stages = append(result.Stages, res)
	}
	return result, nil
}

// RunStage performs read, decide, delete and report for one stage.
func (p *Pipeline) RunStage(ctx context.Context, stage dedup.Stage) (StageResult, error) {
	logger := p.logger.With("stage", stage.Name)
	logger.Info("stage started", "key", stage.Key)

	var archived []domain.Article
	if stage.ArchivePrefilter {
		var err error
		archived, err = p.loader.Archived(ctx)
		if err != nil {
			return StageResult{}, stageFailure(stage.Name, err)
		}
	}

	rows, err := p.loader.Duplicates(ctx, stage.Key)
	if err != nil {
		return StageResult{}, stageFailure(stage.Name, err)
	}

	remaining, losers := dedup.ExcludeArchived(rows, archived)
	groups := dedup.GroupRows(remaining, stage.Key)
	outcomes := dedup.Resolve(groups, stage.Selector)
	logger.Debug("groups resolved", "groups", len(groups), "archived", len(losers))

	meta := dedup.ReportMeta{Stage: stage.Name, RunID: p.runID, GeneratedAt: p.clock()}
	report, err := p.executor.Apply(ctx, meta, stage.Key, losers, outcomes)
	if err != nil {
		return StageResult{}, stageFailure(stage.Name, err)
	}

	res := StageResult{Stage: stage.Name, Report: report}
	logger.Info("stage finished",
		"groups", report.Summary.TotalDuplicateGroups,
		"kept", report.Summary.TotalKept,
		"deleted", report.Summary.TotalDeleted,
		"strategic_kept", report.Summary.TotalStrategicKept,
		"archive_deleted", report.Summary.TotalArchiveDeleted)

	var sinkErrs []error
	if p.sink != nil && stage.ReportFile != "" {
		path, err := p.sink.WriteReport(ctx, stage.ReportFile, report)
		if err != nil {
			logger.Error("cannot save report", "error", err)
			sinkErrs = append(sinkErrs, sinkFailure(stage.Name, err))
		}
		res.ReportPath = path
	}
	if p.notifier != nil {
		if err := p.notifier.PublishSummary(ctx, report); err != nil {
			logger.Warn("cannot publish summary", "error", err)
			sinkErrs = append(sinkErrs, sinkFailure(stage.Name, err))
		}
	}
	res.SinkErr = errors.Join(sinkErrs...)

	return res, nil
}

func stageFailure(stage string, err error) error {
	var f *domain.Failure
	if errors.As(err, &f) {
		return f.InStage(stage)
	}
	return domain.NewFailure(domain.FailureStorage, "", err).InStage(stage)
}

func sinkFailure(stage string, err error) error {
	var f *domain.Failure
	if errors.As(err, &f) {
		bound := f.InStage(stage)
		bound.Kind = domain.FailureReportSink
		return bound
	}
	return domain.NewFailure(domain.FailureReportSink, "", err).InStage(stage)
}
