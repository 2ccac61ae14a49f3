package domain

import (
	"slices"
	"time"
)

// TaskProgress is the stored completion record of one task.
type TaskProgress struct {
	ProjectID   string     `json:"projectId"`
	TaskID      string     `json:"taskId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ChallengeProgress is the stored completion record of one challenge.
type ChallengeProgress struct {
	ProjectID   string     `json:"projectId"`
	ChallengeID string     `json:"challengeId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ProjectProgress caches per-project counters.
type ProjectProgress struct {
	ProjectID           string     `json:"projectId"`
	Started             bool       `json:"started"`
	StartedAt           *time.Time `json:"startedAt,omitempty"`
	TasksCompleted      int        `json:"tasksCompleted"`
	ChallengesCompleted int        `json:"challengesCompleted"`
}

// Progress is the persisted progress blob.
type Progress struct {
	Tasks      []TaskProgress      `json:"tasks"`
	Challenges []ChallengeProgress `json:"challenges"`
	Projects   []ProjectProgress   `json:"projects"`
}

// Clone returns a copy whose slices do not share backing arrays with p.
func (p Progress) Clone() Progress {
	return Progress{
		Tasks:      slices.Clone(p.Tasks),
		Challenges: slices.Clone(p.Challenges),
		Projects:   slices.Clone(p.Projects),
	}
}

// EventKind tells which kind of item produced a completion event.
type EventKind string

const (
	EventTask      EventKind = "task"
	EventChallenge EventKind = "challenge"
)

// CompletionEvent is derived from a completed task or challenge.
type CompletionEvent struct {
	SubjectID string    `json:"subjectId"`
	Kind      EventKind `json:"kind"`
	ItemID    string    `json:"itemId"`
	At        time.Time `json:"at"`
}

// DayActivity is one row of the activity log.
type DayActivity struct {
	Date       string `json:"date"`
	EventCount int    `json:"eventCount"`
}
