package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one scheduled pipeline run.
type Job func(ctx context.Context) error

// Scheduler runs a job on a cron expression, one run at a time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cron      string
	timeout   time.Duration
	job       Job
}

// New creates a new Scheduler. timeout bounds each run; zero means 10 minutes.
func New(cron string, timeout time.Duration, job Job) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()
	if timeout == 0 {
		timeout = 10 * time.Minute
	}
	return &Scheduler{
		scheduler: s,
		cron:      cron,
		timeout:   timeout,
		job:       job,
	}
}

// Start schedules the job and starts the underlying scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Cron(s.cron).Do(func() {
		log.Println("scheduler: starting run")
		runCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if err := s.job(runCtx); err != nil {
			log.Printf("scheduler: run failed: %v", err)
			return
		}
		log.Println("scheduler: run complete")
	})
	if err != nil {
		return fmt.Errorf("scheduling %q: %w", s.cron, err)
	}

	s.scheduler.StartAsync()
	return nil
}

// NextRun returns the time of the next scheduled run.
func (s *Scheduler) NextRun() time.Time {
	_, next := s.scheduler.NextRun()
	return next
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
