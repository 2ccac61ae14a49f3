package curriculum_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roadmap-labs/roadmap/internal/curriculum"
	"github.com/roadmap-labs/roadmap/internal/domain"
)

func TestLoad_Builtin(t *testing.T) {
	c, err := curriculum.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if got := len(c.Stages()); got != 7 {
		t.Errorf("expected 7 stages, got %d", got)
	}
	if got := len(c.Trails()); got != 3 {
		t.Errorf("expected 3 trails, got %d", got)
	}
	if c.TotalTasks() == 0 {
		t.Fatal("expected tasks in built-in roadmap")
	}

	sum := 0
	for _, p := range c.Projects() {
		if len(p.Tasks) < curriculum.MinProjectTasks {
			t.Errorf("project %s has only %d tasks", p.ID, len(p.Tasks))
		}
		sum += len(p.Tasks)
	}
	if sum != c.TotalTasks() {
		t.Errorf("TotalTasks() = %d, sum over projects = %d", c.TotalTasks(), sum)
	}
}

func TestLookups(t *testing.T) {
	c, err := curriculum.Load()
	if err != nil {
		t.Fatal(err)
	}

	p, ok := c.Project("hello-cli")
	if !ok || p.Title != "Hello CLI" {
		t.Fatalf("Project(hello-cli) = %+v, %v", p, ok)
	}
	if !p.HasTask("print-greeting") || p.HasTask("nope") {
		t.Error("HasTask mismatch")
	}

	st, ok := c.StageOf("hello-cli")
	if !ok || st.ID != "foundations" {
		t.Errorf("StageOf(hello-cli) = %s, %v", st.ID, ok)
	}
	if trail := c.TrailOf("foundations"); trail != "programming" {
		t.Errorf("TrailOf(foundations) = %q", trail)
	}

	if _, ok := c.Project("missing"); ok {
		t.Error("expected missing project lookup to fail")
	}
	if _, ok := c.Stage("missing"); ok {
		t.Error("expected missing stage lookup to fail")
	}
}

func TestStageProjects(t *testing.T) {
	c, err := curriculum.Load()
	if err != nil {
		t.Fatal(err)
	}

	table := c.StageProjects()
	if len(table) != 7 {
		t.Fatalf("expected 7 stage groups, got %d", len(table))
	}
	want := []string{"hello-cli", "number-guesser"}
	got := table["foundations"]
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("foundations projects = %v, want %v", got, want)
	}

	// Every project belongs to exactly one stage.
	seen := map[string]string{}
	for stage, ids := range table {
		for _, id := range ids {
			if prev, dup := seen[id]; dup {
				t.Errorf("project %s in both %s and %s", id, prev, stage)
			}
			seen[id] = stage
		}
	}
	if len(seen) != len(c.Projects()) {
		t.Errorf("stage table covers %d projects, roadmap has %d", len(seen), len(c.Projects()))
	}
}

func TestSearch(t *testing.T) {
	c, err := curriculum.Load()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query    string
		wantKind string
		wantID   string
	}{
		{"worker pool", curriculum.HitProject, "worker-pool"},
		{"BINARY SEARCH", curriculum.HitTask, "binary-search"},
		{"goroutines", curriculum.HitProject, "url-checker"},
		{"backoff", curriculum.HitChallenge, "retry-backoff"},
		{"docs, issues", curriculum.HitStage, "technical-english"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			found := false
			for _, h := range c.Search(tt.query) {
				if h.Kind == tt.wantKind && h.ID == tt.wantID {
					found = true
				}
			}
			if !found {
				t.Errorf("Search(%q) missing %s %s", tt.query, tt.wantKind, tt.wantID)
			}
		})
	}

	if hits := c.Search("   "); len(hits) != 0 {
		t.Errorf("blank query returned %d hits", len(hits))
	}
	if hits := c.Search("zzz-no-such-thing"); len(hits) != 0 {
		t.Errorf("unmatched query returned %d hits", len(hits))
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", "trails: [\n"},
		{"no stages", "trails: []\n"},
		{"too few tasks", `
trails:
  - id: t
    stages:
      - id: s
        projects:
          - id: p
            tasks:
              - {id: a, title: A}
`},
		{"duplicate project", `
trails:
  - id: t
    stages:
      - id: s1
        projects:
          - id: p
            tasks: [{id: a}, {id: b}, {id: c}, {id: d}]
      - id: s2
        projects:
          - id: p
            tasks: [{id: a}, {id: b}, {id: c}, {id: d}]
`},
		{"duplicate task", `
trails:
  - id: t
    stages:
      - id: s
        projects:
          - id: p
            tasks: [{id: a}, {id: a}, {id: c}, {id: d}]
`},
		{"empty stage", `
trails:
  - id: t
    stages:
      - id: s
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := curriculum.Parse([]byte(tt.doc))
			if !errors.Is(err, domain.ErrInvalidCurriculum) {
				t.Errorf("expected ErrInvalidCurriculum, got %v", err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roadmap.yaml")
	doc := `
trails:
  - id: solo
    title: Solo
    stages:
      - id: only
        title: Only Stage
        projects:
          - id: one
            title: One
            tasks: [{id: a}, {id: b}, {id: c}, {id: d}, {id: e}]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := curriculum.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if c.TotalTasks() != 5 || len(c.Stages()) != 1 {
		t.Errorf("unexpected roadmap: %d tasks, %d stages", c.TotalTasks(), len(c.Stages()))
	}

	if _, err := curriculum.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
