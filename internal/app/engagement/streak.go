// Package engagement implements the roadmap engagement engine:
// daily streaks, streak milestones, achievements and the unlock toast queue.
// Everything here is a pure function of its inputs except the Notifier.
package engagement

import (
	"github.com/roadmap-labs/roadmap/internal/domain"
)

// Streak bonus: 10 points per active day, +5 for every full week of streak.
const (
	StreakBaseBonus   = 10
	StreakWeeklyBonus = 5
)

// UpdateStreak applies one day's activity count to the streak state.
// today is the learner's local calendar date ("YYYY-MM-DD").
//
//   - events > 0 and today already in history: unchanged (same-day re-entry).
//   - events > 0, last active yesterday: streak extends.
//   - events > 0, otherwise: streak restarts at 1.
//   - events == 0, last active before yesterday: streak lapses to 0.
//   - today earlier than the last active day (clock or zone moved back):
//     unchanged, so history stays in date order.
//
// The input is never mutated.
func UpdateStreak(state domain.StreakState, today string, eventsToday int) domain.StreakState {
	yesterday := domain.AddDays(today, -1)
	next := state.Clone()
	if today < next.LastActivityDate {
		return next
	}

	if eventsToday > 0 {
		if next.HasDay(today) {
			return next
		}

		switch next.LastActivityDate {
		case yesterday:
			next.CurrentStreak++
		case today:
			// Unreachable once history holds today; kept as a no-op branch.
		default:
			next.LongestStreak = max(next.LongestStreak, next.CurrentStreak)
			next.CurrentStreak = 1
		}

		next.LastActivityDate = today
		next.TotalDaysActive++
		next.History = append(next.History, domain.StreakHistoryEntry{
			Date:       today,
			Active:     true,
			EventCount: eventsToday,
		})
		if over := len(next.History) - domain.MaxStreakHistory; over > 0 {
			next.History = append([]domain.StreakHistoryEntry(nil), next.History[over:]...)
		}
		next.StreakBonusPoints += StreakBonus(next.CurrentStreak)
		next.LongestStreak = max(next.LongestStreak, next.CurrentStreak)
		return next
	}

	if next.LastActivityDate != today && next.LastActivityDate != yesterday {
		next.LongestStreak = max(next.LongestStreak, next.CurrentStreak)
		next.CurrentStreak = 0
	}
	return next
}

// StreakBonus is the bonus a day of activity pays at the given streak length.
func StreakBonus(currentStreak int) int {
	if currentStreak < 0 {
		currentStreak = 0
	}
	return StreakBaseBonus + (currentStreak/7)*StreakWeeklyBonus
}

// IsActiveToday reports whether activity was already recorded today.
func IsActiveToday(state domain.StreakState, today string) bool {
	return state.LastActivityDate == today
}

// DaysUntilLoss returns how many days remain before the streak is lost:
// 2 when active today, 1 the day after (act today), 0 once lapsed.
func DaysUntilLoss(state domain.StreakState, today string) int {
	if state.CurrentStreak == 0 {
		return 0
	}
	diff, ok := domain.DaysBetween(state.LastActivityDate, today)
	if !ok {
		return 0
	}
	return min(2, max(0, 2-diff))
}

// AtRisk reports whether the streak will be lost unless the learner acts today.
func AtRisk(state domain.StreakState, today string) bool {
	return state.CurrentStreak > 0 && !IsActiveToday(state, today) && DaysUntilLoss(state, today) == 1
}
