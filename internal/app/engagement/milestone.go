package engagement

import "github.com/roadmap-labs/roadmap/internal/domain"

// milestoneTable is ascending by Days.
var milestoneTable = []domain.Milestone{
	{Days: 7, Bonus: 50},
	{Days: 14, Bonus: 100},
	{Days: 21, Bonus: 150},
	{Days: 30, Bonus: 250},
	{Days: 60, Bonus: 500},
	{Days: 100, Bonus: 1000},
}

// MilestoneTable returns a copy of the fixed streak milestone table.
func MilestoneTable() []domain.Milestone {
	out := make([]domain.Milestone, len(milestoneTable))
	copy(out, milestoneTable)
	return out
}

// Milestones maps the table against the current streak.
func Milestones(currentStreak int) []domain.MilestoneStatus {
	out := make([]domain.MilestoneStatus, len(milestoneTable))
	for i, m := range milestoneTable {
		out[i] = domain.MilestoneStatus{Milestone: m, Reached: currentStreak >= m.Days}
	}
	return out
}

// NextMilestone returns the first milestone not yet reached.
func NextMilestone(currentStreak int) (domain.Milestone, bool) {
	for _, m := range milestoneTable {
		if currentStreak < m.Days {
			return m, true
		}
	}
	return domain.Milestone{}, false
}
