// Package scheduler periodically regenerates the dashboard dataset.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"climate-dashboard/internal/models"
	"climate-dashboard/pkg/logging"
)

// Regenerator rebuilds the shared dataset.
type Regenerator interface {
	Regenerate(ctx context.Context) *models.Dataset
}

// Publisher receives each regenerated dataset.
type Publisher interface {
	Publish(ctx context.Context, ds *models.Dataset) (string, error)
}

// Scheduler runs regeneration on a fixed interval and optionally publishes
// every new dataset to the warehouse.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	regenerator Regenerator
	publisher   Publisher
	interval    time.Duration
	timeout     time.Duration
	logger      *logging.ContextLogger

	mu   sync.Mutex
	runs int
}

// New creates a new Scheduler. publisher may be nil.
func New(regenerator Regenerator, publisher Publisher, interval time.Duration, logger *logging.StructuredLogger) *Scheduler {
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		regenerator: regenerator,
		publisher:   publisher,
		interval:    interval,
		timeout:     time.Minute,
		logger:      logger.WithFields(logging.Fields{"component": "scheduler"}),
	}
}

// Start schedules the job and starts the underlying scheduler. A non-positive
// interval disables scheduling.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info(context.Background(), "[SCHEDULER_DISABLED] No regenerate interval configured", logging.Fields{})
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info(context.Background(), "[SCHEDULER_START] Periodic regeneration scheduled", logging.Fields{
		"interval": s.interval.String(),
	})
	return nil
}

// RunOnce regenerates the dataset and publishes it when a publisher is set.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.mu.Lock()
	s.runs++
	run := s.runs
	s.mu.Unlock()

	ds := s.regenerator.Regenerate(ctx)
	fields := logging.Fields{
		"run":         run,
		"upper_bound": ds.UpperBound,
		"seed":        ds.Seed,
	}

	if s.publisher != nil {
		id, err := s.publisher.Publish(ctx, ds)
		if err != nil {
			s.logger.Error(ctx, "[SCHEDULER_PUBLISH_ERROR] Scheduled publish failed", fields, err)
			return
		}
		fields["generation_id"] = id
	}

	s.logger.Info(ctx, "[SCHEDULER_RUN] Scheduled regeneration completed", fields)
}

// Runs reports how many times the job has run.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
