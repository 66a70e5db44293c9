// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/invoice-insights/internal/domain/session"
	"github.com/FACorreiaa/invoice-insights/pkg/storage"
)

// DefaultSweepSchedule runs the archive sweep every fifteen minutes
const DefaultSweepSchedule = "*/15 * * * *"

const sweepTimeout = 5 * time.Minute

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	archive  storage.Storage
	uploads  session.Repository
	logger   *slog.Logger
}

// NewScheduler creates a job scheduler that removes archived files whose
// upload session has expired. An empty schedule uses DefaultSweepSchedule.
func NewScheduler(schedule string, archive storage.Storage, uploads session.Repository, logger *slog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		schedule: schedule,
		archive:  archive,
		uploads:  uploads,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Error("archive sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// Sweep deletes every archived file whose upload is no longer known and
// returns how many were removed.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	files, err := s.archive.List(ctx)
	if err != nil {
		return 0, err
	}

	removed, failed := 0, 0
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		_, err := s.uploads.Get(ctx, f.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, session.ErrNotFound) {
			return removed, err
		}

		if err := s.archive.Delete(ctx, f.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to remove archived file",
				slog.String("upload_id", f.ID.String()),
				slog.Any("error", err),
			)
			failed++
			continue
		}
		removed++
	}

	s.logger.Info("archive sweep completed",
		slog.Int("files_checked", len(files)),
		slog.Int("files_removed", removed),
		slog.Int("files_failed", failed),
	)
	return removed, nil
}
