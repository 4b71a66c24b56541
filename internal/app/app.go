package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsDedup/internal/config"
	"NewsDedup/internal/dedup"
	"NewsDedup/internal/domain"
	"NewsDedup/internal/infrastructure/report"
	"NewsDedup/internal/infrastructure/storage"
	"NewsDedup/internal/infrastructure/telegram"
	"NewsDedup/internal/logging"
	"NewsDedup/internal/ports"
	"NewsDedup/internal/usecase"
)

// Application wires configs to use cases and owns the database handle.
type Application struct {
	cfg      config.Config
	db       *sql.DB
	pipeline *usecase.Pipeline
	runID    string
}

// New opens the database and builds the pipeline declared by cfg.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format, nil)
	}

	stages, err := BuildStages(cfg)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, cfg.Database.Driver, cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	repo, err := storage.NewSQLRepository(db, storage.Options{
		Driver: cfg.Database.Driver,
		Tables: storage.Tables{
			Articles: cfg.Database.ArticlesTable,
			Archive:  cfg.Database.ArchiveTable,
		},
		ChunkSize: cfg.Database.DeleteChunkSize,
		Logger:    baseLogger.With("component", "storage"),
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.Enabled() {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID, tg.APIURL)
	}

	runID := uuid.NewString()
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Store:      repo,
		Sink:       report.NewJSONSink(cfg.Reports.Dir, baseLogger.With("component", "sink.json")),
		Notifier:   notifier,
		Stages:     stages,
		FindReport: cfg.Reports.FindFile,
		FindFirst:  cfg.Reports.FindBeforeClean,
		DryRun:     cfg.DryRun,
		RunID:      runID,
		Clock:      time.Now,
		Logger:     baseLogger.With("component", "pipeline", "run_id", runID),
	})

	return &Application{cfg: cfg, db: db, pipeline: pipeline, runID: runID}, nil
}

// BuildStages turns the stage configuration into the fixed pipeline order:
// link identity first, then title and portal.
func BuildStages(cfg config.Config) ([]dedup.Stage, error) {
	var stages []dedup.Stage

	if st := cfg.Stages.Link; st.Enabled {
		mode, fallback, err := policyOptions("link", st)
		if err != nil {
			return nil, err
		}
		stages = append(stages, dedup.Stage{
			Name:             "link",
			Key:              dedup.KeyLink,
			Selector:         dedup.LinkPolicy{DateMode: mode, NoDate: fallback},
			ArchivePrefilter: st.ArchivePrefilter,
			ReportFile:       st.ReportFile,
		})
	}

	if st := cfg.Stages.TitlePortal; st.Enabled {
		mode, fallback, err := policyOptions("title_portal", st)
		if err != nil {
			return nil, err
		}
		stages = append(stages, dedup.Stage{
			Name:       "title_portal",
			Key:        dedup.KeyTitlePortal,
			Selector:   dedup.TitlePortalPolicy{DateMode: mode, NoDate: fallback},
			ReportFile: st.ReportFile,
		})
	}

	return stages, nil
}

func policyOptions(stage string, st config.StageConfig) (dedup.DateMode, dedup.Fallback, error) {
	mode, err := dedup.ParseDateMode(st.DateMode)
	if err != nil {
		return "", "", configFailure(stage, err)
	}
	fallback, err := dedup.ParseFallback(st.NoDateFallback)
	if err != nil {
		return "", "", configFailure(stage, err)
	}
	return mode, fallback, nil
}

// RunID identifies every report written by this application instance.
func (a *Application) RunID() string {
	return a.runID
}

// Run performs the find pass (when enabled) and all stages once.
func (a *Application) Run(ctx context.Context) (usecase.RunResult, error) {
	return a.pipeline.Run(ctx)
}

// Find writes the duplicate-link report without deleting anything.
func (a *Application) Find(ctx context.Context) (usecase.FindResult, error) {
	return a.pipeline.Find(ctx)
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func configFailure(stage string, err error) error {
	return domain.NewFailure(domain.FailureConfiguration, "stage policy", err).InStage(stage)
}
