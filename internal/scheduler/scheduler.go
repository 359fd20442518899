package scheduler

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/metaweather-update/internal/weather"
)

// jobTimeout bounds a single scheduled update.
const jobTimeout = 2 * time.Minute

// Scheduler runs the daily observation update.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	at        string
	now       func() time.Time
}

// New creates a new Scheduler that updates once a day at the given UTC time (HH:MM).
func New(at string, service *weather.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		at:        at,
		now:       time.Now,
	}
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.at).Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("INFO: scheduler: daily update at %s UTC", s.at)
	return nil
}

// NextRun returns the time of the next scheduled update.
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

func (s *Scheduler) run() {
	log.Println("scheduler: running weather update job")

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	today := s.now().UTC()
	if _, err := s.service.UpdateAndDisplay(ctx, today, io.Discard); err != nil {
		log.Printf("scheduler: update failed for %s: %v", today.Format(weather.DateLayout), err)
		return
	}
	log.Println("scheduler: completed weather update job")
}
