// Package scheduler runs the nightly report snapshot.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"p9e.in/gemstock/models"
	"p9e.in/gemstock/pkg/archive"
	"p9e.in/gemstock/pkg/reporting"
)

// ReportFunc builds the report for an inclusive date range.
type ReportFunc func(ctx context.Context, from, to time.Time) (reporting.Summary, error)

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	loc    *time.Location
	report ReportFunc
	repo   archive.Repository
	logger *zap.Logger
	now    func() time.Time
}

// New creates a scheduler that snapshots the current day on spec, a
// standard five-field cron expression evaluated in loc.
func New(spec string, loc *time.Location, report ReportFunc, repo archive.Repository, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		spec:   spec,
		loc:    loc,
		report: report,
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Start registers the snapshot job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runSnapshot); err != nil {
		return fmt.Errorf("schedule report snapshot %q: %w", s.spec, err)
	}
	s.logger.Info("starting scheduler", zap.String("spec", s.spec), zap.String("timezone", s.loc.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.SnapshotDay(ctx, s.now().In(s.loc)); err != nil {
		s.logger.Error("failed to snapshot daily report", zap.Error(err))
	}
}

// SnapshotDay computes the report for day and stores it.
func (s *Scheduler) SnapshotDay(ctx context.Context, day time.Time) error {
	summary, err := s.report(ctx, day, day)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	key := day.Format(models.DateLayout)
	if err := s.repo.SaveSnapshot(ctx, archive.FromSummary(key, summary, s.now())); err != nil {
		return err
	}
	s.logger.Info("daily report archived",
		zap.String("day", key),
		zap.String("net_profit", summary.NetProfit.StringFixed(2)))
	return nil
}
