package engagement

import (
	"fmt"
	"time"

	"github.com/roadmap-labs/roadmap/internal/domain"
)

// ProjectCompleteThreshold is the number of completed tasks that completes a project.
const ProjectCompleteThreshold = 4

// AchievementDef pairs a catalog entry with the predicate that unlocks it.
type AchievementDef struct {
	domain.Achievement
	Predicate func(domain.ProgressSnapshot) bool `json:"-"`
	// Measure returns (progress, max) for display; nil means no progress bar.
	Measure func(domain.ProgressSnapshot) (int, int) `json:"-"`
}

// Evaluator checks the achievement catalog against progress snapshots.
// Each achievement is evaluated independently; the unlocked set only grows.
type Evaluator struct {
	definitions []AchievementDef
	index       map[string]int
}

// NewEvaluator builds the catalog for the given curriculum stages.
func NewEvaluator(stages []domain.Stage) *Evaluator {
	defs := BuildCatalog(stages)
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		index[d.ID] = i
	}
	return &Evaluator{definitions: defs, index: index}
}

// TotalCount returns the total number of defined achievements.
func (e *Evaluator) TotalCount() int {
	return len(e.definitions)
}

// Lookup returns the catalog entry for id.
func (e *Evaluator) Lookup(id string) (domain.Achievement, bool) {
	i, ok := e.index[id]
	if !ok {
		return domain.Achievement{}, false
	}
	return e.definitions[i].Achievement, true
}

// Evaluate runs every rule against snap. It returns the achievements unlocked
// by this pass and the updated unlocked set. Already-unlocked ids are skipped,
// so repeated passes never duplicate an entry.
func (e *Evaluator) Evaluate(snap domain.ProgressSnapshot, unlocked []domain.UnlockedAchievement, now time.Time) ([]domain.Achievement, []domain.UnlockedAchievement) {
	have := unlockedSet(unlocked)
	updated := append([]domain.UnlockedAchievement(nil), unlocked...)

	var newly []domain.Achievement
	for _, def := range e.definitions {
		if have[def.ID] {
			continue
		}
		if def.Predicate == nil || !def.Predicate(snap) {
			continue
		}
		have[def.ID] = true
		newly = append(newly, def.Achievement)
		updated = append(updated, domain.UnlockedAchievement{Achievement: def.Achievement, UnlockedAt: now})
	}
	return newly, updated
}

// Unlock adds a single achievement by id. Unknown or already unlocked ids are
// a no-op and report false.
func (e *Evaluator) Unlock(id string, unlocked []domain.UnlockedAchievement, now time.Time) ([]domain.UnlockedAchievement, bool) {
	a, ok := e.Lookup(id)
	if !ok || unlockedSet(unlocked)[id] {
		return unlocked, false
	}
	return append(unlocked, domain.UnlockedAchievement{Achievement: a, UnlockedAt: now}), true
}

// Status returns every catalog entry with its unlocked flag and progress.
func (e *Evaluator) Status(snap domain.ProgressSnapshot, unlocked []domain.UnlockedAchievement) []domain.AchievementStatus {
	at := make(map[string]time.Time, len(unlocked))
	for _, u := range unlocked {
		at[u.ID] = u.UnlockedAt
	}

	out := make([]domain.AchievementStatus, 0, len(e.definitions))
	for _, def := range e.definitions {
		st := domain.AchievementStatus{Achievement: def.Achievement}
		if def.Measure != nil {
			st.Progress, st.MaxProgress = def.Measure(snap)
		}
		if t, ok := at[def.ID]; ok {
			st.Unlocked = true
			st.UnlockedAt = &t
			if st.MaxProgress > 0 {
				st.Progress = st.MaxProgress
			}
		}
		out = append(out, st)
	}
	return out
}

// Score sums the rarity points of unlocked achievements.
func Score(unlocked []domain.UnlockedAchievement) int {
	total := 0
	for _, u := range unlocked {
		total += u.Rarity.Points()
	}
	return total
}

func unlockedSet(unlocked []domain.UnlockedAchievement) map[string]bool {
	set := make(map[string]bool, len(unlocked))
	for _, u := range unlocked {
		set[u.ID] = true
	}
	return set
}

// ─── Catalog ────────────────────────────────────────────────────────────────
// Order matters only for the order of a notification batch:
// project rules, stage rules, milestone rules, then challenge and special.

// BuildCatalog returns the full achievement catalog for the curriculum.
func BuildCatalog(stages []domain.Stage) []AchievementDef {
	var defs []AchievementDef

	for si, stage := range stages {
		for _, p := range stage.Projects {
			defs = append(defs, projectAchievement(p, projectRarity(si, len(stages))))
		}
	}
	for si, stage := range stages {
		defs = append(defs, stageAchievement(stage, stageRarity(si, len(stages))))
	}

	defs = append(defs,
		percentAchievement(25, "Quarter Way", "🌱", domain.RarityUncommon),
		percentAchievement(50, "Halfway There", "🌿", domain.RarityRare),
		percentAchievement(75, "Home Stretch", "🌳", domain.RarityEpic),
		percentAchievement(100, "Roadmap Complete", "🏆", domain.RarityLegendary),

		challengeAchievement("first_challenge", "Challenger", "Complete your first challenge", "⚔️", 1, domain.RarityCommon),
		challengeAchievement("challenge_collector", "Challenge Collector", "Complete 10 challenges", "🗡️", 10, domain.RarityRare),

		AchievementDef{
			Achievement: domain.Achievement{
				ID: "first_steps", Name: "First Steps", Description: "Complete your first task",
				Icon: "👣", Category: domain.CatSpecial, Rarity: domain.RarityCommon,
			},
			Predicate: func(s domain.ProgressSnapshot) bool { return s.TasksCompleted >= 1 },
			Measure:   func(s domain.ProgressSnapshot) (int, int) { return min(s.TasksCompleted, 1), 1 },
		},
		streakAchievement("streak_week", "Week Warrior", "Keep a 7-day streak", "🔥", 7, domain.RarityUncommon),
		streakAchievement("streak_month", "Monthly Machine", "Keep a 30-day streak", "💪", 30, domain.RarityEpic),
	)
	return defs
}

// ProjectAchievementID is the id unlocked when a project is complete.
func ProjectAchievementID(projectID string) string { return "project_" + projectID }

// StageAchievementID is the id unlocked when every project of a stage is complete.
func StageAchievementID(stageID string) string { return "stage_" + stageID }

// PercentAchievementID is the id unlocked at an overall completion percentage.
func PercentAchievementID(pct int) string { return fmt.Sprintf("milestone_%d_percent", pct) }

func projectDone(s domain.ProgressSnapshot, projectID string) bool {
	return s.TasksByProject[projectID] >= ProjectCompleteThreshold
}

func projectAchievement(p domain.Project, rarity domain.Rarity) AchievementDef {
	id := p.ID
	return AchievementDef{
		Achievement: domain.Achievement{
			ID:          ProjectAchievementID(id),
			Name:        p.Title,
			Description: fmt.Sprintf("Complete %d tasks in %s", ProjectCompleteThreshold, p.Title),
			Icon:        "📦",
			Category:    domain.CatProject,
			Rarity:      rarity,
		},
		Predicate: func(s domain.ProgressSnapshot) bool { return projectDone(s, id) },
		Measure: func(s domain.ProgressSnapshot) (int, int) {
			return min(s.TasksByProject[id], ProjectCompleteThreshold), ProjectCompleteThreshold
		},
	}
}

func stageAchievement(st domain.Stage, rarity domain.Rarity) AchievementDef {
	projectIDs := make([]string, len(st.Projects))
	for i, p := range st.Projects {
		projectIDs[i] = p.ID
	}
	icon := st.Icon
	if icon == "" {
		icon = "🏅"
	}
	countDone := func(s domain.ProgressSnapshot) int {
		n := 0
		for _, id := range projectIDs {
			if projectDone(s, id) {
				n++
			}
		}
		return n
	}
	return AchievementDef{
		Achievement: domain.Achievement{
			ID:          StageAchievementID(st.ID),
			Name:        st.Title + " Cleared",
			Description: fmt.Sprintf("Complete every project in %s", st.Title),
			Icon:        icon,
			Category:    domain.CatStage,
			Rarity:      rarity,
		},
		Predicate: func(s domain.ProgressSnapshot) bool {
			return len(projectIDs) > 0 && countDone(s) == len(projectIDs)
		},
		Measure: func(s domain.ProgressSnapshot) (int, int) { return countDone(s), len(projectIDs) },
	}
}

func percentAchievement(pct int, name, icon string, rarity domain.Rarity) AchievementDef {
	return AchievementDef{
		Achievement: domain.Achievement{
			ID:          PercentAchievementID(pct),
			Name:        name,
			Description: fmt.Sprintf("Complete %d%% of the roadmap", pct),
			Icon:        icon,
			Category:    domain.CatMilestone,
			Rarity:      rarity,
		},
		Predicate: func(s domain.ProgressSnapshot) bool { return s.OverallPercent >= pct },
		Measure:   func(s domain.ProgressSnapshot) (int, int) { return min(s.OverallPercent, pct), pct },
	}
}

func challengeAchievement(id, name, desc, icon string, count int, rarity domain.Rarity) AchievementDef {
	return AchievementDef{
		Achievement: domain.Achievement{
			ID: id, Name: name, Description: desc, Icon: icon,
			Category: domain.CatChallenge, Rarity: rarity,
		},
		Predicate: func(s domain.ProgressSnapshot) bool { return s.ChallengesCompleted >= count },
		Measure:   func(s domain.ProgressSnapshot) (int, int) { return min(s.ChallengesCompleted, count), count },
	}
}

func streakAchievement(id, name, desc, icon string, days int, rarity domain.Rarity) AchievementDef {
	return AchievementDef{
		Achievement: domain.Achievement{
			ID: id, Name: name, Description: desc, Icon: icon,
			Category: domain.CatSpecial, Rarity: rarity,
		},
		Predicate: func(s domain.ProgressSnapshot) bool { return s.CurrentStreak >= days },
		Measure:   func(s domain.ProgressSnapshot) (int, int) { return min(s.CurrentStreak, days), days },
	}
}

// projectRarity grows with the stage position: early stages are common.
func projectRarity(stageIdx, stageCount int) domain.Rarity {
	switch {
	case stageCount == 0 || stageIdx*3 < stageCount:
		return domain.RarityCommon
	case stageIdx*3 < stageCount*2:
		return domain.RarityUncommon
	default:
		return domain.RarityRare
	}
}

// stageRarity: the final stage is legendary.
func stageRarity(stageIdx, stageCount int) domain.Rarity {
	switch {
	case stageIdx == stageCount-1:
		return domain.RarityLegendary
	case stageIdx*2 < stageCount:
		return domain.RarityRare
	default:
		return domain.RarityEpic
	}
}
