package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/aggregate"
	"github.com/FACorreiaa/invoice-insights/internal/domain/analytics/detector"
	analyticshandler "github.com/FACorreiaa/invoice-insights/internal/domain/analytics/handler"
	analyticsservice "github.com/FACorreiaa/invoice-insights/internal/domain/analytics/service"
	"github.com/FACorreiaa/invoice-insights/internal/domain/import/parser"
	"github.com/FACorreiaa/invoice-insights/internal/domain/import/sniffer"
	"github.com/FACorreiaa/invoice-insights/internal/domain/session"
	"github.com/FACorreiaa/invoice-insights/pkg/config"
	"github.com/FACorreiaa/invoice-insights/pkg/cron"
	"github.com/FACorreiaa/invoice-insights/pkg/metrics"
	"github.com/FACorreiaa/invoice-insights/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry

	// Metrics
	PipelineMetrics *metrics.Pipeline
	HTTPMetrics     *metrics.HTTP

	// Repositories
	Uploads     *session.MemoryRepository
	FileStorage storage.Storage // nil when archiving is disabled

	// Services
	Detector         *detector.Detector
	Engine           *aggregate.Engine
	Reader           *parser.Reader
	AnalyticsService *analyticsservice.AnalyticsService

	// Handlers
	AnalyticsHandler *analyticshandler.AnalyticsHandler

	// Background jobs
	Scheduler *cron.Scheduler // nil when archiving is disabled
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics()

	// Initialize repositories
	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	// Initialize services
	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// Initialize handlers
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initMetrics creates a private registry so tests can build several
// dependency graphs in one process.
func (d *Dependencies) initMetrics() {
	d.Registry = prometheus.NewRegistry()
	if !d.Config.Observability.MetricsEnabled {
		return
	}
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.PipelineMetrics = metrics.NewPipeline(d.Registry)
	d.HTTPMetrics = metrics.NewHTTP(d.Registry)
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() error {
	d.Uploads = session.NewMemoryRepository(d.Config.Session.TTL)

	if dir := d.Config.Storage.ArchiveDir; dir != "" {
		fileStorage, err := storage.NewLocalStorage(dir)
		if err != nil {
			return fmt.Errorf("failed to init file storage: %w", err)
		}
		d.FileStorage = fileStorage
		d.Scheduler = cron.NewScheduler(d.Config.Storage.SweepSchedule, fileStorage, d.Uploads, d.Logger)
	}

	d.Logger.Info("repositories initialized",
		"session_ttl", d.Config.Session.TTL,
		"archive_dir", d.Config.Storage.ArchiveDir,
	)
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	synonyms, err := detector.LoadSynonyms(d.Config.Analytics.SynonymsFile)
	if err != nil {
		return err
	}

	d.Detector = detector.New(synonyms)
	d.Engine = aggregate.NewEngine(d.Config.Analytics.WeekStart)
	d.Reader = parser.NewReader(sniffer.FromSynonyms(synonyms))
	d.AnalyticsService = analyticsservice.NewAnalyticsService(d.Detector, d.Engine, d.Logger).
		WithMetrics(d.PipelineMetrics)

	d.Logger.Info("services initialized",
		"synonyms_file", d.Config.Analytics.SynonymsFile,
		"week_start", d.Config.Analytics.WeekStart.String(),
	)
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.AnalyticsHandler = analyticshandler.NewAnalyticsHandler(d.AnalyticsService, d.Reader, d.Uploads, d.Logger).
		WithMaxUploadBytes(d.Config.Server.MaxUploadBytes).
		WithCurrency(d.Config.Analytics.Currency)
	if d.FileStorage != nil {
		d.AnalyticsHandler.WithArchive(d.FileStorage)
	}

	d.Logger.Info("handlers initialized")
}

// Cleanup stops background jobs and releases in-memory uploads
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.Uploads != nil {
		d.Uploads.Flush()
	}
	d.Logger.Info("cleanup completed")
}
