package tracker

import (
	"time"

	"github.com/roadmap-labs/roadmap/internal/app/engagement"
	"github.com/roadmap-labs/roadmap/internal/app/progress"
	"github.com/roadmap-labs/roadmap/internal/domain"
)

// Summary is the headline status.
type Summary struct {
	Today                string `json:"today"`
	OverallPercent       int    `json:"overallPercent"`
	TasksCompleted       int    `json:"tasksCompleted"`
	TotalTasks           int    `json:"totalTasks"`
	ChallengesCompleted  int    `json:"challengesCompleted"`
	CurrentStreak        int    `json:"currentStreak"`
	LongestStreak        int    `json:"longestStreak"`
	StreakBonusPoints    int    `json:"streakBonusPoints"`
	AchievementsUnlocked int    `json:"achievementsUnlocked"`
	AchievementsTotal    int    `json:"achievementsTotal"`
	Score                int    `json:"score"`
}

// StreakView is the streak with its derived, date-dependent fields.
type StreakView struct {
	domain.StreakState
	Today         string            `json:"today"`
	ActiveToday   bool              `json:"activeToday"`
	DaysUntilLoss int               `json:"daysUntilLoss"`
	AtRisk        bool              `json:"atRisk"`
	NextBonus     int               `json:"nextBonus"`
	NextMilestone *domain.Milestone `json:"nextMilestone,omitempty"`
}

// ItemView is a task or challenge with its completion state.
type ItemView struct {
	domain.Item
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ProjectView is a project with the learner's progress in it.
type ProjectView struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	StageID     string            `json:"stageId"`
	Concepts    []string          `json:"concepts,omitempty"`
	Resources   []domain.Resource `json:"resources,omitempty"`
	Started     bool              `json:"started"`
	StartedAt   *time.Time        `json:"startedAt,omitempty"`
	Percent     int               `json:"percent"`
	Complete    bool              `json:"complete"`
	Tasks       []ItemView        `json:"tasks"`
	Challenges  []ItemView        `json:"challenges"`
}

// ProjectSummary is one row of a stage listing.
type ProjectSummary struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Started        bool   `json:"started"`
	TasksCompleted int    `json:"tasksCompleted"`
	TotalTasks     int    `json:"totalTasks"`
	Percent        int    `json:"percent"`
	Complete       bool   `json:"complete"`
}

// StageView is a stage with per-project summaries.
type StageView struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Icon     string           `json:"icon,omitempty"`
	Percent  int              `json:"percent"`
	Projects []ProjectSummary `json:"projects"`
}

// Today is the current calendar date in the tracker's zone.
func (t *Tracker) Today() string {
	return domain.DateOf(t.now(), t.loc)
}

// Progress returns a copy of the progress record.
func (t *Tracker) Progress() domain.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return domain.Progress{
		Tasks:      append([]domain.TaskProgress{}, t.progress.Tasks...),
		Challenges: append([]domain.ChallengeProgress{}, t.progress.Challenges...),
		Projects:   append([]domain.ProjectProgress{}, t.progress.Projects...),
	}
}

// Streak returns the stored streak state.
func (t *Tracker) Streak() domain.StreakState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.streak.Clone()
}

// StreakView returns the streak with today's derived fields.
func (t *Tracker) StreakView() StreakView {
	t.mu.Lock()
	s := t.streak.Clone()
	t.mu.Unlock()

	today := t.Today()
	v := StreakView{
		StreakState:   s,
		Today:         today,
		ActiveToday:   engagement.IsActiveToday(s, today),
		DaysUntilLoss: engagement.DaysUntilLoss(s, today),
		AtRisk:        engagement.AtRisk(s, today),
		NextBonus:     engagement.StreakBonus(s.CurrentStreak),
	}
	if m, ok := engagement.NextMilestone(s.CurrentStreak); ok {
		v.NextMilestone = &m
	}
	return v
}

// Milestones maps the milestone table against the current streak.
func (t *Tracker) Milestones() []domain.MilestoneStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return engagement.Milestones(t.streak.CurrentStreak)
}

// Achievements returns every catalog entry with unlock state and progress.
func (t *Tracker) Achievements() []domain.AchievementStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := progress.Snapshot(&t.progress, t.cat, t.streak.CurrentStreak)
	return t.eval.Status(snap, t.unlocked)
}

// Unlocked returns the unlocked achievements in unlock order.
func (t *Tracker) Unlocked() []domain.UnlockedAchievement {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.UnlockedAchievement{}, t.unlocked...)
}

// Events lists completion events, oldest first.
func (t *Tracker) Events() []domain.CompletionEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	return progress.Events(&t.progress)
}

// Activity returns per-day completion counts in the tracker's zone.
func (t *Tracker) Activity() []domain.DayActivity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return progress.ActivityLog(&t.progress, t.loc)
}

// Summary returns headline numbers.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Summary{
		Today:                domain.DateOf(t.now(), t.loc),
		OverallPercent:       progress.OverallPercent(&t.progress, t.cat),
		TasksCompleted:       progress.TotalCompletedTasks(&t.progress),
		TotalTasks:           t.cat.TotalTasks(),
		ChallengesCompleted:  progress.CompletedChallenges(&t.progress),
		CurrentStreak:        t.streak.CurrentStreak,
		LongestStreak:        t.streak.LongestStreak,
		StreakBonusPoints:    t.streak.StreakBonusPoints,
		AchievementsUnlocked: len(t.unlocked),
		AchievementsTotal:    t.eval.TotalCount(),
		Score:                engagement.Score(t.unlocked),
	}
}

// Stages returns every stage with per-project progress.
func (t *Tracker) Stages() []StageView {
	t.mu.Lock()
	defer t.mu.Unlock()

	stages := t.cat.Stages()
	out := make([]StageView, 0, len(stages))
	for _, st := range stages {
		sv := StageView{
			ID:      st.ID,
			Title:   st.Title,
			Icon:    st.Icon,
			Percent: progress.StagePercent(&t.progress, t.cat, st.ID),
		}
		for _, p := range st.Projects {
			done := progress.CompletedTasks(&t.progress, p.ID)
			pp, _ := progress.Project(&t.progress, p.ID)
			sv.Projects = append(sv.Projects, ProjectSummary{
				ID:             p.ID,
				Title:          p.Title,
				Started:        pp.Started,
				TasksCompleted: done,
				TotalTasks:     len(p.Tasks),
				Percent:        progress.ProjectPercent(&t.progress, t.cat, p.ID),
				Complete:       done >= engagement.ProjectCompleteThreshold,
			})
		}
		out = append(out, sv)
	}
	return out
}

// Project returns one project with its task and challenge states.
func (t *Tracker) Project(projectID string) (ProjectView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.cat.Project(projectID)
	if !ok {
		return ProjectView{}, domain.ErrUnknownProject
	}
	st, _ := t.cat.StageOf(projectID)
	pp, _ := progress.Project(&t.progress, projectID)
	done := progress.CompletedTasks(&t.progress, projectID)

	v := ProjectView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		StageID:     st.ID,
		Concepts:    p.Concepts,
		Resources:   p.Resources,
		Started:     pp.Started,
		StartedAt:   pp.StartedAt,
		Percent:     progress.ProjectPercent(&t.progress, t.cat, projectID),
		Complete:    done >= engagement.ProjectCompleteThreshold,
		Tasks:       make([]ItemView, 0, len(p.Tasks)),
		Challenges:  make([]ItemView, 0, len(p.Challenges)),
	}
	for _, it := range p.Tasks {
		v.Tasks = append(v.Tasks, t.itemView(it, projectID, false))
	}
	for _, it := range p.Challenges {
		v.Challenges = append(v.Challenges, t.itemView(it, projectID, true))
	}
	return v, nil
}

func (t *Tracker) itemView(it domain.Item, projectID string, challenge bool) ItemView {
	v := ItemView{Item: it}
	if challenge {
		for _, c := range t.progress.Challenges {
			if c.ProjectID == projectID && c.ChallengeID == it.ID && c.Completed {
				v.Completed, v.CompletedAt = true, c.CompletedAt
			}
		}
		return v
	}
	for _, tp := range t.progress.Tasks {
		if tp.ProjectID == projectID && tp.TaskID == it.ID && tp.Completed {
			v.Completed, v.CompletedAt = true, tp.CompletedAt
		}
	}
	return v
}
