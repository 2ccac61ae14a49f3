// Package metrics provides Prometheus metrics for roadmap: streak gauges,
// unlock and toggle counters, storage health and background job results.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Streak ─────────────────────────────────────────────────────────────────

// StreakCurrent is the current consecutive-day streak.
var StreakCurrent = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "roadmap",
	Name:      "streak_current_days",
	Help:      "Current consecutive-day streak.",
})

// StreakLongest is the longest streak ever observed.
var StreakLongest = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "roadmap",
	Name:      "streak_longest_days",
	Help:      "Longest consecutive-day streak.",
})

// StreakBonusPoints is the cumulative streak bonus.
var StreakBonusPoints = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "roadmap",
	Name:      "streak_bonus_points",
	Help:      "Cumulative streak bonus points.",
})

// StreakChecks counts daily lapse checks by outcome (kept, lapsed, idle).
var StreakChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "roadmap",
	Name:      "streak_checks_total",
	Help:      "Daily streak checks by outcome.",
}, []string{"result"})

// ─── Progress ───────────────────────────────────────────────────────────────

// Toggles counts task and challenge toggles.
var Toggles = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "roadmap",
	Name:      "toggles_total",
	Help:      "Task and challenge toggles by kind and resulting state.",
}, []string{"kind", "state"})

// OverallPercent is the overall roadmap completion.
var OverallPercent = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "roadmap",
	Name:      "overall_percent",
	Help:      "Overall roadmap completion percentage.",
})

// ─── Achievements ───────────────────────────────────────────────────────────

// AchievementsUnlocked counts unlocks by category.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "roadmap",
	Name:      "achievements_unlocked_total",
	Help:      "Achievements unlocked by category.",
}, []string{"category"})

// NotificationsCleared counts cleared toast batches by reason (expired, dismissed).
var NotificationsCleared = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "roadmap",
	Name:      "notifications_cleared_total",
	Help:      "Cleared achievement notification batches by reason.",
}, []string{"reason"})

// ─── Storage ────────────────────────────────────────────────────────────────

// CorruptBlobs counts stored records that failed to decode and were reset.
var CorruptBlobs = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "roadmap",
	Name:      "corrupt_blobs_total",
	Help:      "Stored records replaced by defaults after a decode failure.",
}, []string{"key"})

// StoreLatency tracks load and save duration in seconds.
var StoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "roadmap",
	Name:      "store_latency_seconds",
	Help:      "State load/save duration in seconds.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
}, []string{"op"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckStatus tracks health check results (1=healthy, 0=unhealthy).
var HealthCheckStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "roadmap",
	Name:      "health_check_status",
	Help:      "Health check result per component (1=healthy, 0=unhealthy).",
}, []string{"check"})

// HealthRecoveries tracks auto-recovery attempts.
var HealthRecoveries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "roadmap",
	Name:      "health_recoveries_total",
	Help:      "Total auto-recovery attempts per check.",
}, []string{"check"})
