package progress_test

import (
	"testing"
	"time"

	"github.com/roadmap-labs/roadmap/internal/app/progress"
	"github.com/roadmap-labs/roadmap/internal/curriculum"
	"github.com/roadmap-labs/roadmap/internal/domain"
)

const testRoadmap = `
trails:
  - id: t
    stages:
      - id: s1
        projects:
          - id: p1
            tasks: [{id: a}, {id: b}, {id: c}, {id: d}]
            challenges: [{id: x}]
          - id: p2
            tasks: [{id: a}, {id: b}, {id: c}, {id: d}]
      - id: s2
        projects:
          - id: p3
            tasks: [{id: a}, {id: b}, {id: c}, {id: d}, {id: e}, {id: f}, {id: g}, {id: h}]
`

func testCatalog(t *testing.T) *curriculum.Curriculum {
	t.Helper()
	c, err := curriculum.Parse([]byte(testRoadmap))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return c
}

var now = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func TestToggleTask_TwiceRestores(t *testing.T) {
	cat := testCatalog(t)
	var p domain.Progress

	completed, changed := progress.ToggleTask(&p, cat, "p1", "a", now)
	if !completed || !changed {
		t.Fatalf("first toggle: completed=%v changed=%v", completed, changed)
	}
	if !progress.TaskDone(&p, "p1", "a") {
		t.Fatal("task not marked done")
	}
	if p.Tasks[0].CompletedAt == nil || !p.Tasks[0].CompletedAt.Equal(now) {
		t.Errorf("completedAt = %v", p.Tasks[0].CompletedAt)
	}

	completed, changed = progress.ToggleTask(&p, cat, "p1", "a", now.Add(time.Minute))
	if completed || !changed {
		t.Fatalf("second toggle: completed=%v changed=%v", completed, changed)
	}
	if progress.TaskDone(&p, "p1", "a") {
		t.Error("task still done after second toggle")
	}
	if len(p.Tasks) != 0 {
		t.Errorf("expected no task records, got %+v", p.Tasks)
	}
}

func TestToggleTask_UnknownIsNoop(t *testing.T) {
	cat := testCatalog(t)
	var p domain.Progress

	tests := []struct {
		name      string
		projectID string
		taskID    string
	}{
		{"unknown project", "nope", "a"},
		{"unknown task", "p1", "zz"},
		{"challenge id as task", "p1", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, changed := progress.ToggleTask(&p, cat, tt.projectID, tt.taskID, now)
			if changed {
				t.Error("expected no change")
			}
		})
	}
	if len(p.Tasks) != 0 || len(p.Projects) != 0 {
		t.Errorf("progress mutated: %+v", p)
	}
}

func TestToggleTask_UpgradesIncompleteRecord(t *testing.T) {
	cat := testCatalog(t)
	p := domain.Progress{Tasks: []domain.TaskProgress{{ProjectID: "p1", TaskID: "a"}}}

	completed, _ := progress.ToggleTask(&p, cat, "p1", "a", now)
	if !completed || len(p.Tasks) != 1 || !p.Tasks[0].Completed {
		t.Errorf("expected stored incomplete record to be completed in place: %+v", p.Tasks)
	}
}

func TestToggle_MarksProjectStarted(t *testing.T) {
	cat := testCatalog(t)
	var p domain.Progress

	progress.ToggleTask(&p, cat, "p1", "a", now)
	progress.ToggleTask(&p, cat, "p1", "b", now.Add(time.Hour))
	progress.ToggleChallenge(&p, cat, "p1", "x", now.Add(2*time.Hour))

	pp, ok := progress.Project(&p, "p1")
	if !ok || !pp.Started {
		t.Fatalf("project not started: %+v", pp)
	}
	if pp.StartedAt == nil || !pp.StartedAt.Equal(now) {
		t.Errorf("startedAt = %v, want first toggle time", pp.StartedAt)
	}
	if pp.TasksCompleted != 2 || pp.ChallengesCompleted != 1 {
		t.Errorf("counters = %d tasks, %d challenges", pp.TasksCompleted, pp.ChallengesCompleted)
	}
}

func TestToggleChallenge(t *testing.T) {
	cat := testCatalog(t)
	var p domain.Progress

	if _, changed := progress.ToggleChallenge(&p, cat, "p2", "x", now); changed {
		t.Error("challenge from another project should be a no-op")
	}

	progress.ToggleChallenge(&p, cat, "p1", "x", now)
	if !progress.ChallengeDone(&p, "p1", "x") || progress.CompletedChallenges(&p) != 1 {
		t.Fatal("challenge not completed")
	}
	progress.ToggleChallenge(&p, cat, "p1", "x", now)
	if progress.ChallengeDone(&p, "p1", "x") || len(p.Challenges) != 0 {
		t.Error("challenge not restored by second toggle")
	}
}

func TestStartAndResetProject(t *testing.T) {
	cat := testCatalog(t)
	var p domain.Progress

	if !progress.StartProject(&p, cat, "p2", now) {
		t.Fatal("StartProject returned false")
	}
	if progress.StartProject(&p, cat, "p2", now.Add(time.Hour)) {
		t.Error("second StartProject should report no change")
	}
	pp, _ := progress.Project(&p, "p2")
	if !pp.StartedAt.Equal(now) {
		t.Errorf("second start overwrote startedAt: %v", pp.StartedAt)
	}
	if progress.StartProject(&p, cat, "missing", now) {
		t.Error("StartProject on unknown id returned true")
	}

	if progress.ResetProject(&p, cat, "p1") {
		t.Error("ResetProject on a project without records should report no change")
	}
	if progress.ResetProject(&p, cat, "missing") {
		t.Error("ResetProject on unknown id returned true")
	}

	progress.ToggleTask(&p, cat, "p1", "a", now)
	progress.ToggleTask(&p, cat, "p2", "a", now)
	progress.ToggleChallenge(&p, cat, "p1", "x", now)

	if !progress.ResetProject(&p, cat, "p1") {
		t.Fatal("ResetProject returned false")
	}
	if progress.CompletedTasks(&p, "p1") != 0 || progress.CompletedChallenges(&p) != 0 {
		t.Error("p1 records survived reset")
	}
	if _, ok := progress.Project(&p, "p1"); ok {
		t.Error("p1 project record survived reset")
	}
	if progress.CompletedTasks(&p, "p2") != 1 {
		t.Error("reset touched another project")
	}
	if progress.ResetProject(&p, cat, "p1") {
		t.Error("second ResetProject should report no change")
	}
}

func TestPercentages(t *testing.T) {
	cat := testCatalog(t)
	var p domain.Progress

	for _, id := range []string{"a", "b", "c"} {
		progress.ToggleTask(&p, cat, "p1", id, now)
	}
	progress.ToggleTask(&p, cat, "p3", "a", now)

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"project p1", progress.ProjectPercent(&p, cat, "p1"), 75},
		{"project p3", progress.ProjectPercent(&p, cat, "p3"), 12},
		{"project unknown", progress.ProjectPercent(&p, cat, "zz"), 0},
		{"stage s1", progress.StagePercent(&p, cat, "s1"), 37},
		{"stage s2", progress.StagePercent(&p, cat, "s2"), 12},
		{"overall", progress.OverallPercent(&p, cat), 25},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestOverallPercent_IgnoresStaleRecords(t *testing.T) {
	cat := testCatalog(t)
	p := domain.Progress{Tasks: []domain.TaskProgress{
		{ProjectID: "gone", TaskID: "a", Completed: true},
		{ProjectID: "p1", TaskID: "removed", Completed: true},
	}}
	if got := progress.OverallPercent(&p, cat); got != 0 {
		t.Errorf("OverallPercent = %d, want 0", got)
	}
}

func TestSnapshot(t *testing.T) {
	cat := testCatalog(t)
	var p domain.Progress

	for _, id := range []string{"a", "b", "c", "d"} {
		progress.ToggleTask(&p, cat, "p1", id, now)
	}
	progress.ToggleChallenge(&p, cat, "p1", "x", now)

	snap := progress.Snapshot(&p, cat, 3)
	if snap.TasksByProject["p1"] != 4 || snap.TasksCompleted != 4 {
		t.Errorf("task counts = %+v", snap)
	}
	if snap.ChallengesCompleted != 1 || snap.CurrentStreak != 3 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.OverallPercent != 25 {
		t.Errorf("overall = %d, want 25", snap.OverallPercent)
	}
}

func TestActivity(t *testing.T) {
	cat := testCatalog(t)
	var p domain.Progress

	day1 := time.Date(2024, 3, 14, 22, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 15, 1, 0, 0, 0, time.UTC)
	progress.ToggleTask(&p, cat, "p1", "a", day2)
	progress.ToggleTask(&p, cat, "p1", "b", day1)
	progress.ToggleChallenge(&p, cat, "p1", "x", day2.Add(time.Hour))

	events := progress.Events(&p)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].ItemID != "b" || events[2].Kind != domain.EventChallenge {
		t.Errorf("events not ordered by time: %+v", events)
	}

	if got := progress.EventsOn(&p, "2024-03-15", time.UTC); got != 2 {
		t.Errorf("EventsOn(UTC 15th) = %d, want 2", got)
	}

	// Three hours behind UTC, all three land on the 14th.
	west := time.FixedZone("west", -3*3600)
	if got := progress.EventsOn(&p, "2024-03-14", west); got != 3 {
		t.Errorf("EventsOn(west 14th) = %d, want 3", got)
	}

	log := progress.ActivityLog(&p, time.UTC)
	want := []domain.DayActivity{{Date: "2024-03-14", EventCount: 1}, {Date: "2024-03-15", EventCount: 2}}
	if len(log) != len(want) || log[0] != want[0] || log[1] != want[1] {
		t.Errorf("ActivityLog = %+v, want %+v", log, want)
	}

	// Un-completing removes the event.
	progress.ToggleTask(&p, cat, "p1", "a", day2)
	if got := progress.ActivityByDay(&p, time.UTC)["2024-03-15"]; got != 1 {
		t.Errorf("after untoggle 15th count = %d, want 1", got)
	}
}
