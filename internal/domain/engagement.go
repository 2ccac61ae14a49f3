// Package domain holds the roadmap types shared by every layer: curriculum,
// progress records, streak state and achievements. It has no dependencies.
//
// The engagement engine keeps learners coming back through daily streaks,
// streak milestones and a catalog of unlockable achievements.
package domain

import "time"

// ─── Streak Types ───────────────────────────────────────────────────────────

// MaxStreakHistory is the number of most recent active days kept in history.
const MaxStreakHistory = 365

// StreakState is the durable streak record. Dates are "YYYY-MM-DD" in the
// learner's local zone.
type StreakState struct {
	CurrentStreak     int                  `json:"currentStreak"`
	LongestStreak     int                  `json:"longestStreak"`
	LastActivityDate  string               `json:"lastActivityDate"`
	TotalDaysActive   int                  `json:"totalDaysActive"`
	StreakBonusPoints int                  `json:"streakBonusPoints"`
	History           []StreakHistoryEntry `json:"history"`
}

// StreakHistoryEntry records one day of activity.
type StreakHistoryEntry struct {
	Date       string `json:"date"`
	Active     bool   `json:"active"`
	EventCount int    `json:"eventCount"`
}

// HasDay reports whether history already contains an entry for date.
func (s StreakState) HasDay(date string) bool {
	for _, h := range s.History {
		if h.Date == date {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate history safely.
func (s StreakState) Clone() StreakState {
	c := s
	if s.History != nil {
		c.History = make([]StreakHistoryEntry, len(s.History))
		copy(c.History, s.History)
	}
	return c
}

// Milestone is a fixed streak length that pays a one-off bonus.
type Milestone struct {
	Days  int `json:"days"`
	Bonus int `json:"bonus"`
}

// MilestoneStatus is a Milestone with its derived reached flag.
type MilestoneStatus struct {
	Milestone
	Reached bool `json:"reached"`
}

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementCategory groups achievements by theme.
type AchievementCategory string

const (
	CatProject   AchievementCategory = "project"
	CatStage     AchievementCategory = "stage"
	CatChallenge AchievementCategory = "challenge"
	CatMilestone AchievementCategory = "milestone"
	CatSpecial   AchievementCategory = "special"
)

// Rarity drives the display score of an achievement.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Points returns the display score for the rarity.
func (r Rarity) Points() int {
	switch r {
	case RarityCommon:
		return 10
	case RarityUncommon:
		return 25
	case RarityRare:
		return 50
	case RarityEpic:
		return 100
	case RarityLegendary:
		return 250
	default:
		return 0
	}
}

// Achievement is an immutable catalog entry.
type Achievement struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Icon        string              `json:"icon"`
	Category    AchievementCategory `json:"category"`
	Rarity      Rarity              `json:"rarity"`
	Progress    int                 `json:"progress,omitempty"`
	MaxProgress int                 `json:"maxProgress,omitempty"`
}

// UnlockedAchievement records when an achievement was earned.
type UnlockedAchievement struct {
	Achievement
	UnlockedAt time.Time `json:"unlockedAt"`
}

// AchievementStatus is the display view of a catalog entry.
type AchievementStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// ProgressSnapshot is what achievement predicates are evaluated against.
type ProgressSnapshot struct {
	TasksByProject      map[string]int `json:"tasksByProject"`
	TasksCompleted      int            `json:"tasksCompleted"`
	ChallengesCompleted int            `json:"challengesCompleted"`
	OverallPercent      int            `json:"overallPercent"`
	CurrentStreak       int            `json:"currentStreak"`
}
