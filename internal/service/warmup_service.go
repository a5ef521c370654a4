package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/popspot-calendar/internal/calendar"
	"github.com/noah-isme/popspot-calendar/internal/models"
	"github.com/noah-isme/popspot-calendar/internal/source"
	"github.com/noah-isme/popspot-calendar/pkg/jobs"
)

const jobTypeSummaryWarmup = "summary_warmup"

type summaryRefresher interface {
	Refresh(ctx context.Context, q source.MonthSummaryQuery) error
}

// WarmupConfig tunes the month summary warm-up.
type WarmupConfig struct {
	Schedule    string
	MonthsAhead int
	Workers     int
	Timeout     time.Duration
}

// WarmupService keeps the default month summaries of the current and the
// following months fresh in the cache.
type WarmupService struct {
	refresher summaryRefresher
	now       func() time.Time
	loc       *time.Location
	bounds    calendar.YearBounds
	cfg       WarmupConfig
	metrics   *MetricsService
	logger    *zap.Logger

	queue     *jobs.Queue
	scheduler *jobs.Scheduler
}

// NewWarmupService wires the worker queue and cron schedule.
func NewWarmupService(refresher summaryRefresher, now func() time.Time, loc *time.Location, bounds calendar.YearBounds, cfg WarmupConfig, metrics *MetricsService, logger *zap.Logger) *WarmupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 10m"
	}
	if cfg.MonthsAhead < 0 {
		cfg.MonthsAhead = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	s := &WarmupService{
		refresher: refresher,
		now:       now,
		loc:       loc,
		bounds:    bounds,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger,
		scheduler: jobs.NewScheduler(logger),
	}
	s.queue = jobs.NewQueue("summary-warmup", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: 2,
		RetryDelay: 5 * time.Second,
		Logger:     logger,
	})
	return s
}

// Jobs lists one job per warmed month, skipping months outside the bounds.
func (s *WarmupService) Jobs() []jobs.Job {
	first := calendar.AddMonths(s.now().In(s.loc), 0)
	out := make([]jobs.Job, 0, s.cfg.MonthsAhead+1)
	for i := 0; i <= s.cfg.MonthsAhead; i++ {
		month := calendar.ToIsoMonth(calendar.AddMonths(first, i))
		if !s.bounds.ValidMonth(string(month)) {
			continue
		}
		q := source.MonthSummaryQuery{Month: month, RegionID: models.RegionAll, Categories: models.CategoryKeys}
		out = append(out, jobs.Job{Key: string(month), Type: jobTypeSummaryWarmup, Payload: q})
	}
	return out
}

func (s *WarmupService) handle(ctx context.Context, job jobs.Job) error {
	q, ok := job.Payload.(source.MonthSummaryQuery)
	if !ok {
		return fmt.Errorf("unexpected warm-up payload %T", job.Payload)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	err := s.refresher.Refresh(ctx, q)
	s.metrics.ObserveWarmup(err)
	if err == nil {
		s.logger.Debug("month summary warmed", zap.String("month", string(q.Month)))
	}
	return err
}

// Start begins processing, enqueues an immediate run and starts the schedule.
func (s *WarmupService) Start(ctx context.Context) error {
	if err := s.scheduler.Every(s.cfg.Schedule, s.queue, s.Jobs); err != nil {
		return err
	}
	s.queue.Start(ctx)
	for _, job := range s.Jobs() {
		if err := s.queue.TryEnqueue(job); err != nil {
			s.logger.Debug("initial warm-up skipped", zap.String("key", job.Key), zap.Error(err))
		}
	}
	s.scheduler.Start()
	s.logger.Info("summary warm-up scheduled", zap.String("schedule", s.cfg.Schedule), zap.Int("months_ahead", s.cfg.MonthsAhead))
	return nil
}

// Stop halts the schedule and drains the workers.
func (s *WarmupService) Stop() {
	s.scheduler.Stop()
	s.queue.Stop()
}
