// Package tracker owns the learner's state: progress, streak and unlocked
// achievements. It is loaded once, mutated through commands and saved after
// each command. One Tracker serves every caller in the process.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/roadmap-labs/roadmap/internal/app/engagement"
	"github.com/roadmap-labs/roadmap/internal/app/progress"
	"github.com/roadmap-labs/roadmap/internal/domain"
	"github.com/roadmap-labs/roadmap/internal/infra/metrics"
)

// Blob keys.
const (
	KeyProgress     = "progress"
	KeyAchievements = "achievements"
	KeyStreak       = "streak"
)

// Store persists named JSON blobs.
type Store interface {
	GetBlob(ctx context.Context, key string) ([]byte, bool, error)
	PutBlobs(ctx context.Context, blobs map[string][]byte) error
}

// Catalog is the curriculum as seen by the tracker.
type Catalog interface {
	progress.Catalog
	Stages() []domain.Stage
	StageOf(projectID string) (domain.Stage, bool)
}

// Options tune a Tracker. Zero values pick defaults.
type Options struct {
	Location     *time.Location   // calendar zone for streak days; default time.Local
	DismissAfter time.Duration    // toast auto-clear delay; default 5s
	Now          func() time.Time // clock; default time.Now
}

// Result describes the outcome of a command.
type Result struct {
	Changed       bool                 `json:"changed"`
	Completed     bool                 `json:"completed"`
	NewlyUnlocked []domain.Achievement `json:"newlyUnlocked"`
	Streak        domain.StreakState   `json:"streak"`
}

// Tracker is the state store. Safe for concurrent use.
type Tracker struct {
	store    Store
	cat      Catalog
	eval     *engagement.Evaluator
	notifier *engagement.Notifier
	loc      *time.Location
	now      func() time.Time

	mu       sync.Mutex
	loaded   bool
	progress domain.Progress
	streak   domain.StreakState
	unlocked []domain.UnlockedAchievement
}

// New creates a tracker. Call Load before any command or query.
func New(store Store, cat Catalog, opts Options) *Tracker {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	n := engagement.NewNotifier(opts.DismissAfter)
	n.OnClear(func(reason engagement.ClearReason, count int) {
		metrics.NotificationsCleared.WithLabelValues(string(reason)).Inc()
		log.WithFields(log.Fields{"reason": reason, "count": count}).Debug("achievement notifications cleared")
	})
	return &Tracker{
		store:    store,
		cat:      cat,
		eval:     engagement.NewEvaluator(cat.Stages()),
		notifier: n,
		loc:      opts.Location,
		now:      opts.Now,
	}
}

// Close stops the notification timer.
func (t *Tracker) Close() {
	t.notifier.Close()
}

// ─── Lifecycle ──────────────────────────────────────────────────────────────

// Load reads every blob from the store. A blob that fails to decode is
// replaced by its default value and logged; storage errors are returned.
func (t *Tracker) Load(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.StoreLatency.WithLabelValues("load").Observe(time.Since(start).Seconds()) }()

	var (
		prog     domain.Progress
		streak   domain.StreakState
		unlocked []domain.UnlockedAchievement
	)
	if err := t.loadBlob(ctx, KeyProgress, &prog); err != nil {
		return err
	}
	if err := t.loadBlob(ctx, KeyStreak, &streak); err != nil {
		return err
	}
	if err := t.loadBlob(ctx, KeyAchievements, &unlocked); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = prog
	t.streak = streak
	t.unlocked = unlocked
	t.loaded = true
	t.publishLocked()
	return nil
}

// loadBlob decodes key into dst. dst is reset to its zero value on decode
// failure.
func (t *Tracker) loadBlob(ctx context.Context, key string, dst any) error {
	data, ok, err := t.store.GetBlob(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.WithError(err).WithField("key", key).Warn("corrupt stored state, using defaults")
		metrics.CorruptBlobs.WithLabelValues(key).Inc()
		resetZero(dst)
	}
	return nil
}

func resetZero(dst any) {
	switch v := dst.(type) {
	case *domain.Progress:
		*v = domain.Progress{}
	case *domain.StreakState:
		*v = domain.StreakState{}
	case *[]domain.UnlockedAchievement:
		*v = nil
	}
}

// Save writes every blob in one transaction.
func (t *Tracker) Save(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return domain.ErrNotLoaded
	}
	return t.saveLocked(ctx)
}

func (t *Tracker) saveLocked(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.StoreLatency.WithLabelValues("save").Observe(time.Since(start).Seconds()) }()

	unlocked := t.unlocked
	if unlocked == nil {
		unlocked = []domain.UnlockedAchievement{}
	}
	blobs := map[string]any{
		KeyProgress:     t.progress,
		KeyStreak:       t.streak,
		KeyAchievements: unlocked,
	}
	encoded := make(map[string][]byte, len(blobs))
	for key, v := range blobs {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		encoded[key] = data
	}
	if err := t.store.PutBlobs(ctx, encoded); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// ─── Commands ───────────────────────────────────────────────────────────────

// ToggleTask flips a task and re-runs streak and achievement evaluation.
// Unknown ids are a no-op and return an unchanged Result.
func (t *Tracker) ToggleTask(ctx context.Context, projectID, taskID string) (Result, error) {
	var completed bool
	res, err := t.command(ctx, func(now time.Time) bool {
		var changed bool
		completed, changed = progress.ToggleTask(&t.progress, t.cat, projectID, taskID, now)
		return changed
	})
	if err != nil {
		return res, err
	}
	res.Completed = completed
	if res.Changed {
		metrics.Toggles.WithLabelValues(string(domain.EventTask), toggleState(completed)).Inc()
	}
	return res, nil
}

// ToggleChallenge flips a challenge and re-runs evaluation.
func (t *Tracker) ToggleChallenge(ctx context.Context, projectID, challengeID string) (Result, error) {
	var completed bool
	res, err := t.command(ctx, func(now time.Time) bool {
		var changed bool
		completed, changed = progress.ToggleChallenge(&t.progress, t.cat, projectID, challengeID, now)
		return changed
	})
	if err != nil {
		return res, err
	}
	res.Completed = completed
	if res.Changed {
		metrics.Toggles.WithLabelValues(string(domain.EventChallenge), toggleState(completed)).Inc()
	}
	return res, nil
}

// StartProject marks a project started.
func (t *Tracker) StartProject(ctx context.Context, projectID string) (Result, error) {
	return t.command(ctx, func(now time.Time) bool {
		return progress.StartProject(&t.progress, t.cat, projectID, now)
	})
}

// ResetProject clears a project's records. Unlocked achievements stay.
func (t *Tracker) ResetProject(ctx context.Context, projectID string) (Result, error) {
	return t.command(ctx, func(time.Time) bool {
		return progress.ResetProject(&t.progress, t.cat, projectID)
	})
}

// Refresh re-evaluates streak and achievements for the current day without
// changing progress. It lapses a streak whose grace day has passed.
func (t *Tracker) Refresh(ctx context.Context) (Result, error) {
	return t.command(ctx, func(time.Time) bool { return true })
}

// command runs mutate and, if it changed anything, the evaluation pipeline
// followed by a save. A failed save rolls the in-memory state back, so the
// caller never sees an effect that was not persisted.
func (t *Tracker) command(ctx context.Context, mutate func(now time.Time) bool) (Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.loaded {
		return Result{}, domain.ErrNotLoaded
	}

	prevProgress := t.progress.Clone()
	prevStreak := t.streak.Clone()
	prevUnlocked := slices.Clone(t.unlocked)

	now := t.now()
	if !mutate(now) {
		return Result{Streak: t.streak.Clone()}, nil
	}

	today := domain.DateOf(now, t.loc)
	t.streak = engagement.UpdateStreak(t.streak, today, progress.EventsOn(&t.progress, today, t.loc))
	snap := progress.Snapshot(&t.progress, t.cat, t.streak.CurrentStreak)
	newly, unlocked := t.eval.Evaluate(snap, t.unlocked, now)
	t.unlocked = unlocked

	if err := t.saveLocked(ctx); err != nil {
		t.progress, t.streak, t.unlocked = prevProgress, prevStreak, prevUnlocked
		return Result{}, err
	}

	logStreakTransition(prevStreak, t.streak, today)
	for _, a := range newly {
		metrics.AchievementsUnlocked.WithLabelValues(string(a.Category)).Inc()
		log.WithFields(log.Fields{
			"achievement": a.ID,
			"category":    a.Category,
			"rarity":      a.Rarity,
		}).Info("achievement unlocked")
	}
	t.notifier.Push(newly)
	t.publishLocked()
	return Result{Changed: true, NewlyUnlocked: newly, Streak: t.streak.Clone()}, nil
}

func logStreakTransition(before, after domain.StreakState, today string) {
	fields := log.Fields{
		"date":    today,
		"current": after.CurrentStreak,
		"longest": after.LongestStreak,
	}
	switch {
	case before.CurrentStreak > 0 && after.CurrentStreak == 0:
		log.WithFields(fields).WithField("was", before.CurrentStreak).Info("streak lapsed")
	case after.TotalDaysActive > before.TotalDaysActive:
		log.WithFields(fields).WithField("bonus", after.StreakBonusPoints-before.StreakBonusPoints).Debug("streak day recorded")
		for _, m := range engagement.MilestoneTable() {
			if before.CurrentStreak < m.Days && after.CurrentStreak >= m.Days {
				log.WithFields(fields).WithField("milestone", m.Days).Info("streak milestone reached")
			}
		}
	}
}

func toggleState(completed bool) string {
	if completed {
		return "completed"
	}
	return "uncompleted"
}

// publishLocked refreshes gauges from the in-memory state.
func (t *Tracker) publishLocked() {
	metrics.StreakCurrent.Set(float64(t.streak.CurrentStreak))
	metrics.StreakLongest.Set(float64(t.streak.LongestStreak))
	metrics.StreakBonusPoints.Set(float64(t.streak.StreakBonusPoints))
	metrics.OverallPercent.Set(float64(progress.OverallPercent(&t.progress, t.cat)))
}

// ─── Notifications ──────────────────────────────────────────────────────────

// Notifications returns the pending "new achievements" toast list.
func (t *Tracker) Notifications() []domain.Achievement {
	return t.notifier.Pending()
}

// DismissNotifications clears the toast list now.
func (t *Tracker) DismissNotifications() {
	t.notifier.Dismiss()
}
