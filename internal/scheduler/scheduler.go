package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Purger removes expired entries and reports how many were removed.
type Purger interface {
	Purge(now time.Time) int
}

// Scheduler periodically purges expired exports.
type Scheduler struct {
	scheduler *gocron.Scheduler
	purger    Purger
	interval  time.Duration
}

// New creates a new Scheduler.
func New(purger Purger, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		purger:    purger,
		interval:  interval,
	}
}

// Start schedules the purge job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.purger == nil {
		log.Println("scheduler: no export store configured; nothing to schedule")
		return nil
	}

	seconds := int(s.interval.Seconds())
	if seconds <= 0 {
		seconds = 300
	}

	_, err := s.scheduler.Every(seconds).Seconds().Do(s.runPurge)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runPurge() {
	if removed := s.purger.Purge(time.Now()); removed > 0 {
		log.Printf("scheduler: purged %d expired exports", removed)
	}
}
