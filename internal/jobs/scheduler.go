// Package jobs runs background work on a cron schedule. The only job today
// is the daily streak check, which lapses a streak whose grace day has passed
// even when the learner never opens the app.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/roadmap-labs/roadmap/internal/app/tracker"
	"github.com/roadmap-labs/roadmap/internal/domain"
	"github.com/roadmap-labs/roadmap/internal/infra/metrics"
)

// DefaultSchedule runs the check five minutes after local midnight.
const DefaultSchedule = "5 0 * * *"

// Check outcomes, also used as metric labels.
const (
	ResultKept   = "kept"
	ResultLapsed = "lapsed"
	ResultIdle   = "idle"
)

// Refresher re-evaluates the streak for the current day.
type Refresher interface {
	Streak() domain.StreakState
	Refresh(ctx context.Context) (tracker.Result, error)
}

// Scheduler owns the cron runner.
type Scheduler struct {
	cron     *cron.Cron
	tracker  Refresher
	schedule string
}

// NewScheduler creates a scheduler that fires in loc. A nil loc means
// time.Local; an empty schedule means DefaultSchedule.
func NewScheduler(t Refresher, schedule string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		tracker:  t,
		schedule: schedule,
	}
}

// Start registers the jobs and starts the runner.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		log.WithField("schedule", s.schedule).Info("[cron] daily streak check")
		if _, err := s.CheckStreak(ctx); err != nil {
			log.WithError(err).Error("[cron] streak check failed")
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("schedule", s.schedule).Info("job scheduler started")
	return nil
}

// Stop halts the runner and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("job scheduler stopped")
}

// CheckStreak refreshes the tracker and reports what happened to the streak.
func (s *Scheduler) CheckStreak(ctx context.Context) (string, error) {
	before := s.tracker.Streak()
	res, err := s.tracker.Refresh(ctx)
	if err != nil {
		return "", err
	}

	result := ResultIdle
	switch {
	case before.CurrentStreak > 0 && res.Streak.CurrentStreak == 0:
		result = ResultLapsed
	case res.Streak.CurrentStreak > 0:
		result = ResultKept
	}
	metrics.StreakChecks.WithLabelValues(result).Inc()
	log.WithFields(log.Fields{
		"result":  result,
		"current": res.Streak.CurrentStreak,
		"longest": res.Streak.LongestStreak,
	}).Info("[cron] streak checked")
	return result, nil
}
