// Package jobs manages background tasks (cron).
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"kudos/events"
	"kudos/service"
)

// Scheduler runs the daily quota reset at midnight in the configured timezone.
type Scheduler struct {
	cron     *cron.Cron
	reset    service.ResetService
	bus      *events.Bus
	location *time.Location
}

// NewScheduler creates a scheduler for background jobs.
func NewScheduler(reset service.ResetService, bus *events.Bus, location *time.Location) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(location)),
		reset:    reset,
		bus:      bus,
		location: location,
	}
}

// Start registers and launches all background jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		s.runDailyReset(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.WithField("timezone", s.location.String()).Info("Job scheduler started")
	return nil
}

// Stop halts the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logrus.Info("Job scheduler stopped")
}

func (s *Scheduler) runDailyReset(ctx context.Context) {
	today := time.Now().In(s.location).Format("2006-01-02")
	logrus.WithField("date", today).Info("Running daily quota reset")

	count, err := s.reset.ResetAll(ctx, today)
	if err != nil {
		logrus.WithError(err).Error("Daily quota reset failed")
		return
	}

	s.bus.Emit(ctx, events.QuotaResetEvent{
		Date:       today,
		UsersReset: count,
	})
}
