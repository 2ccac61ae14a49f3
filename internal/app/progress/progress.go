// Package progress mutates and derives from the learner's progress record.
// Functions take the record explicitly; the caller owns locking and storage.
package progress

import (
	"slices"
	"sort"
	"time"

	"github.com/roadmap-labs/roadmap/internal/domain"
)

// Catalog is the subset of the curriculum that progress needs.
type Catalog interface {
	Project(id string) (domain.Project, bool)
	Stage(id string) (domain.Stage, bool)
	TotalTasks() int
}

// ─── Commands ───────────────────────────────────────────────────────────────

// ToggleTask flips a task's completion. Completing stamps CompletedAt;
// un-completing removes the record, so two toggles restore the original
// record. Unknown project or task ids are a no-op and report changed=false.
func ToggleTask(p *domain.Progress, cat Catalog, projectID, taskID string, now time.Time) (completed, changed bool) {
	proj, ok := cat.Project(projectID)
	if !ok || !proj.HasTask(taskID) {
		return false, false
	}

	i := taskIndex(p, projectID, taskID)
	if i >= 0 && p.Tasks[i].Completed {
		p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
	} else {
		at := now
		rec := domain.TaskProgress{ProjectID: projectID, TaskID: taskID, Completed: true, CompletedAt: &at}
		if i >= 0 {
			p.Tasks[i] = rec
		} else {
			p.Tasks = append(p.Tasks, rec)
		}
		completed = true
	}
	touchProject(p, projectID, now)
	return completed, true
}

// ToggleChallenge is ToggleTask for challenges.
func ToggleChallenge(p *domain.Progress, cat Catalog, projectID, challengeID string, now time.Time) (completed, changed bool) {
	proj, ok := cat.Project(projectID)
	if !ok || !proj.HasChallenge(challengeID) {
		return false, false
	}

	i := challengeIndex(p, projectID, challengeID)
	if i >= 0 && p.Challenges[i].Completed {
		p.Challenges = append(p.Challenges[:i], p.Challenges[i+1:]...)
	} else {
		at := now
		rec := domain.ChallengeProgress{ProjectID: projectID, ChallengeID: challengeID, Completed: true, CompletedAt: &at}
		if i >= 0 {
			p.Challenges[i] = rec
		} else {
			p.Challenges = append(p.Challenges, rec)
		}
		completed = true
	}
	touchProject(p, projectID, now)
	return completed, true
}

// StartProject marks a project started. Starting an already started project
// changes nothing and reports false, as do unknown ids.
func StartProject(p *domain.Progress, cat Catalog, projectID string, now time.Time) bool {
	if _, ok := cat.Project(projectID); !ok {
		return false
	}
	if pp, ok := Project(p, projectID); ok && pp.Started {
		return false
	}
	touchProject(p, projectID, now)
	return true
}

// ResetProject drops every task, challenge and project record for the
// project. Streak state and unlocked achievements are not touched. It
// reports false when the project is unknown or has no records.
func ResetProject(p *domain.Progress, cat Catalog, projectID string) bool {
	if _, ok := cat.Project(projectID); !ok {
		return false
	}
	before := len(p.Tasks) + len(p.Challenges) + len(p.Projects)

	p.Tasks = slices.DeleteFunc(p.Tasks, func(t domain.TaskProgress) bool { return t.ProjectID == projectID })
	p.Challenges = slices.DeleteFunc(p.Challenges, func(c domain.ChallengeProgress) bool { return c.ProjectID == projectID })
	p.Projects = slices.DeleteFunc(p.Projects, func(pp domain.ProjectProgress) bool { return pp.ProjectID == projectID })

	return len(p.Tasks)+len(p.Challenges)+len(p.Projects) < before
}

// touchProject marks the project started and recomputes its counters.
func touchProject(p *domain.Progress, projectID string, now time.Time) {
	i := projectIndex(p, projectID)
	if i < 0 {
		p.Projects = append(p.Projects, domain.ProjectProgress{ProjectID: projectID})
		i = len(p.Projects) - 1
	}
	pp := &p.Projects[i]
	if !pp.Started {
		at := now
		pp.Started = true
		pp.StartedAt = &at
	}
	pp.TasksCompleted = CompletedTasks(p, projectID)
	pp.ChallengesCompleted = completedChallengesIn(p, projectID)
}

// ─── Queries ────────────────────────────────────────────────────────────────

// TaskDone reports whether the task is complete.
func TaskDone(p *domain.Progress, projectID, taskID string) bool {
	i := taskIndex(p, projectID, taskID)
	return i >= 0 && p.Tasks[i].Completed
}

// ChallengeDone reports whether the challenge is complete.
func ChallengeDone(p *domain.Progress, projectID, challengeID string) bool {
	i := challengeIndex(p, projectID, challengeID)
	return i >= 0 && p.Challenges[i].Completed
}

// Project returns the stored project record, if any.
func Project(p *domain.Progress, projectID string) (domain.ProjectProgress, bool) {
	i := projectIndex(p, projectID)
	if i < 0 {
		return domain.ProjectProgress{}, false
	}
	return p.Projects[i], true
}

// CompletedTasks counts completed tasks in a project.
func CompletedTasks(p *domain.Progress, projectID string) int {
	n := 0
	for _, t := range p.Tasks {
		if t.ProjectID == projectID && t.Completed {
			n++
		}
	}
	return n
}

// TotalCompletedTasks counts completed tasks across all projects.
func TotalCompletedTasks(p *domain.Progress) int {
	n := 0
	for _, t := range p.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// CompletedChallenges counts completed challenges across all projects.
func CompletedChallenges(p *domain.Progress) int {
	n := 0
	for _, c := range p.Challenges {
		if c.Completed {
			n++
		}
	}
	return n
}

func completedChallengesIn(p *domain.Progress, projectID string) int {
	n := 0
	for _, c := range p.Challenges {
		if c.ProjectID == projectID && c.Completed {
			n++
		}
	}
	return n
}

// ProjectPercent is the floor of completed/total tasks for one project.
func ProjectPercent(p *domain.Progress, cat Catalog, projectID string) int {
	proj, ok := cat.Project(projectID)
	if !ok {
		return 0
	}
	return percent(CompletedTasks(p, projectID), len(proj.Tasks))
}

// StagePercent is the floor of completed/total tasks across a stage.
func StagePercent(p *domain.Progress, cat Catalog, stageID string) int {
	st, ok := cat.Stage(stageID)
	if !ok {
		return 0
	}
	done, total := 0, 0
	for _, proj := range st.Projects {
		done += CompletedTasks(p, proj.ID)
		total += len(proj.Tasks)
	}
	return percent(done, total)
}

// OverallPercent is the floor of completed/total tasks across the roadmap.
// Only tasks that still exist in the catalog count.
func OverallPercent(p *domain.Progress, cat Catalog) int {
	done := 0
	for _, t := range p.Tasks {
		if !t.Completed {
			continue
		}
		if proj, ok := cat.Project(t.ProjectID); ok && proj.HasTask(t.TaskID) {
			done++
		}
	}
	return percent(done, cat.TotalTasks())
}

func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	if done > total {
		done = total
	}
	return done * 100 / total
}

// Snapshot builds the achievement evaluator's view of progress.
func Snapshot(p *domain.Progress, cat Catalog, currentStreak int) domain.ProgressSnapshot {
	byProject := map[string]int{}
	for _, t := range p.Tasks {
		if t.Completed {
			byProject[t.ProjectID]++
		}
	}
	return domain.ProgressSnapshot{
		TasksByProject:      byProject,
		TasksCompleted:      TotalCompletedTasks(p),
		ChallengesCompleted: CompletedChallenges(p),
		OverallPercent:      OverallPercent(p, cat),
		CurrentStreak:       currentStreak,
	}
}

// ─── Activity log ───────────────────────────────────────────────────────────

// Events lists a completion event for every completed task and challenge,
// oldest first. Records without a timestamp are skipped.
func Events(p *domain.Progress) []domain.CompletionEvent {
	var out []domain.CompletionEvent
	for _, t := range p.Tasks {
		if t.Completed && t.CompletedAt != nil {
			out = append(out, domain.CompletionEvent{
				SubjectID: t.ProjectID, Kind: domain.EventTask, ItemID: t.TaskID, At: *t.CompletedAt,
			})
		}
	}
	for _, c := range p.Challenges {
		if c.Completed && c.CompletedAt != nil {
			out = append(out, domain.CompletionEvent{
				SubjectID: c.ProjectID, Kind: domain.EventChallenge, ItemID: c.ChallengeID, At: *c.CompletedAt,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// ActivityByDay maps each local calendar date to its completion event count.
func ActivityByDay(p *domain.Progress, loc *time.Location) map[string]int {
	days := map[string]int{}
	for _, e := range Events(p) {
		days[domain.DateOf(e.At, loc)]++
	}
	return days
}

// ActivityLog is ActivityByDay as a date-ordered list.
func ActivityLog(p *domain.Progress, loc *time.Location) []domain.DayActivity {
	days := ActivityByDay(p, loc)
	out := make([]domain.DayActivity, 0, len(days))
	for d, n := range days {
		out = append(out, domain.DayActivity{Date: d, EventCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// EventsOn counts completion events on a local calendar date.
func EventsOn(p *domain.Progress, date string, loc *time.Location) int {
	n := 0
	for _, e := range Events(p) {
		if domain.DateOf(e.At, loc) == date {
			n++
		}
	}
	return n
}

// ─── helpers ────────────────────────────────────────────────────────────────

func taskIndex(p *domain.Progress, projectID, taskID string) int {
	for i, t := range p.Tasks {
		if t.ProjectID == projectID && t.TaskID == taskID {
			return i
		}
	}
	return -1
}

func challengeIndex(p *domain.Progress, projectID, challengeID string) int {
	for i, c := range p.Challenges {
		if c.ProjectID == projectID && c.ChallengeID == challengeID {
			return i
		}
	}
	return -1
}

func projectIndex(p *domain.Progress, projectID string) int {
	for i, pp := range p.Projects {
		if pp.ProjectID == projectID {
			return i
		}
	}
	return -1
}
