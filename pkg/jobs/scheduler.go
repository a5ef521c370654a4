package jobs

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler enqueues jobs on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler builds a scheduler accepting standard five-field specs and
// descriptors such as "@every 10m".
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{cron: cron.New(), logger: logger}
}

// Every registers build to run on schedule; each returned job is offered to q
// without blocking. Pending duplicates and a full buffer are skipped.
func (s *Scheduler) Every(schedule string, q *Queue, build func() []Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		for _, job := range build() {
			if err := q.TryEnqueue(job); err != nil {
				s.logger.Debug("scheduled job skipped", zap.String("type", job.Type), zap.String("key", job.Key), zap.Error(err))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", schedule, err)
	}
	return nil
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the schedule and waits for running callbacks.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
