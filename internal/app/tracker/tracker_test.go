package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roadmap-labs/roadmap/internal/app/tracker"
	"github.com/roadmap-labs/roadmap/internal/curriculum"
	"github.com/roadmap-labs/roadmap/internal/domain"
	"github.com/roadmap-labs/roadmap/internal/infra/sqlite"
)

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) set(date string) {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	c.t = d.Add(10 * time.Hour)
}

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTracker(t *testing.T, store tracker.Store, c *clock) *tracker.Tracker {
	t.Helper()
	cur, err := curriculum.Load()
	if err != nil {
		t.Fatalf("curriculum.Load() error: %v", err)
	}
	tr := tracker.New(store, cur, tracker.Options{
		Location:     time.UTC,
		DismissAfter: time.Hour,
		Now:          c.Now,
	})
	t.Cleanup(tr.Close)
	if err := tr.Load(context.Background()); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return tr
}

var helloTasks = []string{"install-toolchain", "print-greeting", "read-args", "format-output"}

func ids(as []domain.Achievement) map[string]bool {
	out := map[string]bool{}
	for _, a := range as {
		out[a.ID] = true
	}
	return out
}

func TestTracker_NotLoaded(t *testing.T) {
	cur, _ := curriculum.Load()
	tr := tracker.New(newTestDB(t), cur, tracker.Options{})
	defer tr.Close()

	if _, err := tr.ToggleTask(context.Background(), "hello-cli", "read-args"); !errors.Is(err, domain.ErrNotLoaded) {
		t.Errorf("ToggleTask before Load: err = %v, want ErrNotLoaded", err)
	}
	if err := tr.Save(context.Background()); !errors.Is(err, domain.ErrNotLoaded) {
		t.Errorf("Save before Load: err = %v, want ErrNotLoaded", err)
	}
}

func TestTracker_StreakScenario(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	tr := newTracker(t, newTestDB(t), c)

	c.set("2024-01-01")
	res, err := tr.ToggleTask(ctx, "hello-cli", "install-toolchain")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed || !res.Completed {
		t.Fatalf("result = %+v", res)
	}
	if s := res.Streak; s.CurrentStreak != 1 || s.TotalDaysActive != 1 || s.StreakBonusPoints != 10 {
		t.Errorf("day 1 streak = %+v", s)
	}

	c.set("2024-01-02")
	res, _ = tr.ToggleTask(ctx, "hello-cli", "print-greeting")
	if s := res.Streak; s.CurrentStreak != 2 || s.TotalDaysActive != 2 || s.StreakBonusPoints != 20 {
		t.Errorf("day 2 streak = %+v", s)
	}

	// A second completion on the same day does not double count.
	res, _ = tr.ToggleTask(ctx, "hello-cli", "read-args")
	if s := res.Streak; s.CurrentStreak != 2 || s.TotalDaysActive != 2 {
		t.Errorf("same-day streak = %+v", s)
	}

	c.set("2024-01-05")
	res, _ = tr.ToggleChallenge(ctx, "hello-cli", "colour-output")
	s := res.Streak
	if s.CurrentStreak != 1 || s.LongestStreak != 2 || s.TotalDaysActive != 3 {
		t.Errorf("day 5 streak = %+v", s)
	}
	if len(s.History) != 3 || s.History[2].Date != "2024-01-05" {
		t.Errorf("history = %+v", s.History)
	}
}

func TestTracker_ProjectAchievementOnce(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	c.set("2024-02-01")
	tr := newTracker(t, newTestDB(t), c)

	seen := 0
	for _, task := range helloTasks {
		res, err := tr.ToggleTask(ctx, "hello-cli", task)
		if err != nil {
			t.Fatal(err)
		}
		if ids(res.NewlyUnlocked)["project_hello-cli"] {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("project_hello-cli announced %d times after reaching threshold", seen)
	}

	// Re-toggling tasks never re-announces it.
	for i := 0; i < 2; i++ {
		res, _ := tr.ToggleTask(ctx, "hello-cli", "read-args")
		if ids(res.NewlyUnlocked)["project_hello-cli"] {
			t.Error("project_hello-cli re-announced")
		}
	}

	n := 0
	for _, u := range tr.Unlocked() {
		if u.ID == "project_hello-cli" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("project_hello-cli stored %d times", n)
	}
	// Passes without unlocks leave the last batch in place.
	if !ids(tr.Notifications())["project_hello-cli"] {
		t.Errorf("notifications = %+v, want project_hello-cli", tr.Notifications())
	}
}

func TestTracker_NotificationsAndDismiss(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	c.set("2024-02-01")
	tr := newTracker(t, newTestDB(t), c)

	tr.ToggleTask(ctx, "hello-cli", "install-toolchain")
	if !ids(tr.Notifications())["first_steps"] {
		t.Fatalf("notifications = %+v, want first_steps", tr.Notifications())
	}

	// A pass with no unlocks leaves the list alone.
	tr.ToggleTask(ctx, "hello-cli", "print-greeting")
	if !ids(tr.Notifications())["first_steps"] {
		t.Error("empty evaluation pass cleared notifications")
	}

	tr.DismissNotifications()
	if len(tr.Notifications()) != 0 {
		t.Error("dismiss did not clear notifications")
	}
}

func TestTracker_UnknownIDsAreNoops(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	c.set("2024-02-01")
	db := newTestDB(t)
	tr := newTracker(t, db, c)

	calls := []func() (tracker.Result, error){
		func() (tracker.Result, error) { return tr.ToggleTask(ctx, "nope", "a") },
		func() (tracker.Result, error) { return tr.ToggleTask(ctx, "hello-cli", "nope") },
		func() (tracker.Result, error) { return tr.ToggleChallenge(ctx, "hello-cli", "nope") },
		func() (tracker.Result, error) { return tr.StartProject(ctx, "nope") },
		func() (tracker.Result, error) { return tr.ResetProject(ctx, "nope") },
	}
	for i, call := range calls {
		res, err := call()
		if err != nil || res.Changed {
			t.Errorf("call %d: changed=%v err=%v", i, res.Changed, err)
		}
	}
	if _, ok, _ := db.GetBlob(ctx, tracker.KeyProgress); ok {
		t.Error("no-op commands should not write state")
	}
	if _, err := tr.Project("nope"); !errors.Is(err, domain.ErrUnknownProject) {
		t.Errorf("Project(nope) err = %v", err)
	}
}

func TestTracker_PersistsAcrossLoad(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	c.set("2024-03-01")
	db := newTestDB(t)

	tr := newTracker(t, db, c)
	for _, task := range helloTasks {
		tr.ToggleTask(ctx, "hello-cli", task)
	}
	want := tr.Summary()

	again := newTracker(t, db, c)
	got := again.Summary()
	if got != want {
		t.Errorf("reloaded summary = %+v, want %+v", got, want)
	}
	if got.TasksCompleted != 4 || got.CurrentStreak != 1 || got.AchievementsUnlocked == 0 {
		t.Errorf("summary = %+v", got)
	}

	pv, err := again.Project("hello-cli")
	if err != nil {
		t.Fatal(err)
	}
	if !pv.Started || !pv.Complete || pv.Percent != 100 || pv.StageID != "foundations" {
		t.Errorf("project view = %+v", pv)
	}
}

func TestTracker_CorruptBlobFallsBack(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	c.set("2024-03-01")
	db := newTestDB(t)

	tr := newTracker(t, db, c)
	tr.ToggleTask(ctx, "hello-cli", "install-toolchain")

	if err := db.PutBlob(ctx, tracker.KeyStreak, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if err := db.PutBlob(ctx, tracker.KeyAchievements, []byte(`{"oops":true}`)); err != nil {
		t.Fatal(err)
	}

	again := newTracker(t, db, c)
	if s := again.Streak(); s.CurrentStreak != 0 || s.TotalDaysActive != 0 || len(s.History) != 0 {
		t.Errorf("corrupt streak not reset: %+v", s)
	}
	if len(again.Unlocked()) != 0 {
		t.Errorf("corrupt achievements not reset: %+v", again.Unlocked())
	}
	if again.Summary().TasksCompleted != 1 {
		t.Error("intact progress blob should survive")
	}
}

type failingStore struct{ err error }

func (f failingStore) GetBlob(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingStore) PutBlobs(context.Context, map[string][]byte) error     { return f.err }

func TestTracker_StoreErrorsPropagate(t *testing.T) {
	cur, _ := curriculum.Load()
	boom := errors.New("disk gone")
	tr := tracker.New(failingStore{err: boom}, cur, tracker.Options{})
	defer tr.Close()

	if err := tr.Load(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Load() err = %v, want %v", err, boom)
	}
}

func TestTracker_RefreshLapsesStreak(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	c.set("2024-04-01")
	tr := newTracker(t, newTestDB(t), c)
	tr.ToggleTask(ctx, "hello-cli", "install-toolchain")

	c.set("2024-04-02")
	res, _ := tr.Refresh(ctx)
	if res.Streak.CurrentStreak != 1 {
		t.Errorf("grace day: streak = %d, want 1", res.Streak.CurrentStreak)
	}
	if v := tr.StreakView(); !v.AtRisk || v.DaysUntilLoss != 1 {
		t.Errorf("grace day view = %+v", v)
	}

	c.set("2024-04-03")
	res, _ = tr.Refresh(ctx)
	if res.Streak.CurrentStreak != 0 || res.Streak.LongestStreak != 1 {
		t.Errorf("lapsed: streak = %+v", res.Streak)
	}
}

func TestTracker_ResetProjectKeepsAchievements(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	c.set("2024-05-01")
	tr := newTracker(t, newTestDB(t), c)

	for _, task := range helloTasks {
		tr.ToggleTask(ctx, "hello-cli", task)
	}
	before := len(tr.Unlocked())

	res, err := tr.ResetProject(ctx, "hello-cli")
	if err != nil || !res.Changed {
		t.Fatalf("ResetProject: %+v, %v", res, err)
	}
	if got := tr.Summary().TasksCompleted; got != 0 {
		t.Errorf("tasks after reset = %d", got)
	}
	if got := len(tr.Unlocked()); got != before {
		t.Errorf("unlocked after reset = %d, want %d", got, before)
	}
	if tr.Streak().CurrentStreak != 1 {
		t.Error("reset should not touch the streak")
	}
}

func TestTracker_Views(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	c.set("2024-06-01")
	tr := newTracker(t, newTestDB(t), c)
	tr.StartProject(ctx, "todo-list")
	tr.ToggleTask(ctx, "todo-list", "todo-struct")

	stages := tr.Stages()
	if len(stages) != 7 {
		t.Fatalf("stages = %d, want 7", len(stages))
	}
	var row tracker.ProjectSummary
	for _, st := range stages {
		for _, p := range st.Projects {
			if p.ID == "todo-list" {
				row = p
			}
		}
	}
	if !row.Started || row.TasksCompleted != 1 || row.Percent != 20 {
		t.Errorf("todo-list row = %+v", row)
	}

	if got := tr.Activity(); len(got) != 1 || got[0].Date != "2024-06-01" || got[0].EventCount != 1 {
		t.Errorf("activity = %+v", got)
	}
	if got := tr.Events(); len(got) != 1 || got[0].ItemID != "todo-struct" {
		t.Errorf("events = %+v", got)
	}
	if ms := tr.Milestones(); len(ms) != 6 || ms[0].Reached {
		t.Errorf("milestones = %+v", ms)
	}

	total := 0
	for _, a := range tr.Achievements() {
		total++
		if a.ID == "first_steps" && !a.Unlocked {
			t.Error("first_steps should be unlocked")
		}
	}
	if total != tr.Summary().AchievementsTotal {
		t.Errorf("achievement list %d != total %d", total, tr.Summary().AchievementsTotal)
	}
}

// flakyStore fails every PutBlobs while fail is set.
type flakyStore struct {
	*sqlite.DB
	fail bool
}

func (s *flakyStore) PutBlobs(ctx context.Context, blobs map[string][]byte) error {
	if s.fail {
		return errors.New("disk full")
	}
	return s.DB.PutBlobs(ctx, blobs)
}

func TestTracker_FailedSaveLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	c.set("2024-03-01")
	store := &flakyStore{DB: newTestDB(t), fail: true}
	tr := newTracker(t, store, c)

	if _, err := tr.ToggleTask(ctx, "hello-cli", "read-args"); err == nil {
		t.Fatal("ToggleTask should report the save error")
	}
	if got := len(tr.Progress().Tasks); got != 0 {
		t.Errorf("tasks after failed save = %d, want 0", got)
	}
	if s := tr.Streak(); s.CurrentStreak != 0 || s.StreakBonusPoints != 0 || len(s.History) != 0 {
		t.Errorf("streak after failed save = %+v", s)
	}
	if len(tr.Unlocked()) != 0 || len(tr.Notifications()) != 0 {
		t.Errorf("failed save leaked unlocks: %v, %v", tr.Unlocked(), tr.Notifications())
	}

	store.fail = false
	res, err := tr.ToggleTask(ctx, "hello-cli", "read-args")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !res.Changed || !res.Completed {
		t.Errorf("retry should complete the task: %+v", res)
	}
	if !ids(res.NewlyUnlocked)["first_steps"] {
		t.Errorf("retry should unlock first_steps: %v", res.NewlyUnlocked)
	}
}

func TestTracker_FailedSaveKeepsEarlierProgress(t *testing.T) {
	ctx := context.Background()
	c := &clock{}
	c.set("2024-03-01")
	store := &flakyStore{DB: newTestDB(t)}
	tr := newTracker(t, store, c)

	for _, task := range helloTasks[:3] {
		if _, err := tr.ToggleTask(ctx, "hello-cli", task); err != nil {
			t.Fatal(err)
		}
	}
	tr.DismissNotifications()
	unlocked := len(tr.Unlocked())

	store.fail = true
	if _, err := tr.ResetProject(ctx, "hello-cli"); err == nil {
		t.Fatal("ResetProject should report the save error")
	}
	if _, err := tr.ToggleTask(ctx, "hello-cli", helloTasks[3]); err == nil {
		t.Fatal("ToggleTask should report the save error")
	}
	if got := len(tr.Progress().Tasks); got != 3 {
		t.Errorf("tasks = %d, want 3 after failed reset and toggle", got)
	}
	if got := len(tr.Unlocked()); got != unlocked {
		t.Errorf("unlocked = %d, want %d", got, unlocked)
	}
	if len(tr.Notifications()) != 0 {
		t.Errorf("notifications = %v, want none", tr.Notifications())
	}

	reloaded := newTracker(t, store.DB, c)
	if got := len(reloaded.Progress().Tasks); got != 3 {
		t.Errorf("stored tasks = %d, want 3", got)
	}
}
