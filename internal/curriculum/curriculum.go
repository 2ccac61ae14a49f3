// Package curriculum provides the roadmap content: trails, stages, projects,
// tasks and challenges. The built-in roadmap is embedded as YAML; a user file
// with the same shape can replace it.
package curriculum

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roadmap-labs/roadmap/internal/domain"
)

// MinProjectTasks is the smallest task count a project may declare. A project
// with fewer tasks could never reach the project-complete threshold.
const MinProjectTasks = 4

//go:embed curriculum.yaml
var builtin []byte

// file is the on-disk shape of a curriculum document.
type file struct {
	Version int            `yaml:"version"`
	Trails  []domain.Trail `yaml:"trails"`
}

type projectRef struct {
	stage   int
	project int
}

// Curriculum is a validated, indexed roadmap. It is read-only after Parse.
type Curriculum struct {
	trails []domain.Trail
	stages []domain.Stage // flattened across trails, in file order

	stageIdx   map[string]int
	projectIdx map[string]projectRef
	stageTrail map[string]string
	totalTasks int
}

// Load parses the built-in roadmap.
func Load() (*Curriculum, error) {
	return Parse(builtin)
}

// LoadFile parses a roadmap from path.
func LoadFile(path string) (*Curriculum, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read curriculum %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML roadmap document.
func Parse(data []byte) (*Curriculum, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCurriculum, err)
	}
	if err := Validate(f.Trails); err != nil {
		return nil, err
	}
	return index(f.Trails), nil
}

// Validate checks structural rules: at least one stage, unique non-empty
// stage and project ids, task and challenge ids unique within their project,
// and at least MinProjectTasks tasks per project.
func Validate(trails []domain.Trail) error {
	stages := map[string]bool{}
	projects := map[string]bool{}
	nStages := 0

	for _, tr := range trails {
		if tr.ID == "" {
			return fmt.Errorf("%w: trail %q has no id", domain.ErrInvalidCurriculum, tr.Title)
		}
		for _, st := range tr.Stages {
			nStages++
			if st.ID == "" {
				return fmt.Errorf("%w: stage %q in trail %s has no id", domain.ErrInvalidCurriculum, st.Title, tr.ID)
			}
			if stages[st.ID] {
				return fmt.Errorf("%w: duplicate stage id %q", domain.ErrInvalidCurriculum, st.ID)
			}
			stages[st.ID] = true
			if len(st.Projects) == 0 {
				return fmt.Errorf("%w: stage %s has no projects", domain.ErrInvalidCurriculum, st.ID)
			}

			for _, p := range st.Projects {
				if p.ID == "" {
					return fmt.Errorf("%w: project %q in stage %s has no id", domain.ErrInvalidCurriculum, p.Title, st.ID)
				}
				if projects[p.ID] {
					return fmt.Errorf("%w: duplicate project id %q", domain.ErrInvalidCurriculum, p.ID)
				}
				projects[p.ID] = true
				if len(p.Tasks) < MinProjectTasks {
					return fmt.Errorf("%w: project %s has %d tasks, need at least %d",
						domain.ErrInvalidCurriculum, p.ID, len(p.Tasks), MinProjectTasks)
				}
				if err := uniqueItems(p.ID, "task", p.Tasks); err != nil {
					return err
				}
				if err := uniqueItems(p.ID, "challenge", p.Challenges); err != nil {
					return err
				}
			}
		}
	}
	if nStages == 0 {
		return fmt.Errorf("%w: no stages", domain.ErrInvalidCurriculum)
	}
	return nil
}

func uniqueItems(projectID, kind string, items []domain.Item) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.ID == "" {
			return fmt.Errorf("%w: %s %q in project %s has no id", domain.ErrInvalidCurriculum, kind, it.Title, projectID)
		}
		if seen[it.ID] {
			return fmt.Errorf("%w: duplicate %s id %q in project %s", domain.ErrInvalidCurriculum, kind, it.ID, projectID)
		}
		seen[it.ID] = true
	}
	return nil
}

func index(trails []domain.Trail) *Curriculum {
	c := &Curriculum{
		trails:     trails,
		stageIdx:   map[string]int{},
		projectIdx: map[string]projectRef{},
		stageTrail: map[string]string{},
	}
	for _, tr := range trails {
		for _, st := range tr.Stages {
			si := len(c.stages)
			c.stages = append(c.stages, st)
			c.stageIdx[st.ID] = si
			c.stageTrail[st.ID] = tr.ID
			for pi, p := range st.Projects {
				c.projectIdx[p.ID] = projectRef{stage: si, project: pi}
				c.totalTasks += len(p.Tasks)
			}
		}
	}
	return c
}

// Trails returns the trails in file order.
func (c *Curriculum) Trails() []domain.Trail { return c.trails }

// Stages returns every stage across all trails, in file order.
func (c *Curriculum) Stages() []domain.Stage { return c.stages }

// Projects returns every project in stage order.
func (c *Curriculum) Projects() []domain.Project {
	var out []domain.Project
	for _, st := range c.stages {
		out = append(out, st.Projects...)
	}
	return out
}

// Stage looks up a stage by id.
func (c *Curriculum) Stage(id string) (domain.Stage, bool) {
	i, ok := c.stageIdx[id]
	if !ok {
		return domain.Stage{}, false
	}
	return c.stages[i], true
}

// Project looks up a project by id.
func (c *Curriculum) Project(id string) (domain.Project, bool) {
	ref, ok := c.projectIdx[id]
	if !ok {
		return domain.Project{}, false
	}
	return c.stages[ref.stage].Projects[ref.project], true
}

// StageOf returns the stage containing the project.
func (c *Curriculum) StageOf(projectID string) (domain.Stage, bool) {
	ref, ok := c.projectIdx[projectID]
	if !ok {
		return domain.Stage{}, false
	}
	return c.stages[ref.stage], true
}

// TrailOf returns the id of the trail containing the stage.
func (c *Curriculum) TrailOf(stageID string) string { return c.stageTrail[stageID] }

// StageProjects maps each stage id to its project ids.
func (c *Curriculum) StageProjects() map[string][]string {
	out := make(map[string][]string, len(c.stages))
	for _, st := range c.stages {
		ids := make([]string, len(st.Projects))
		for i, p := range st.Projects {
			ids[i] = p.ID
		}
		out[st.ID] = ids
	}
	return out
}

// TotalTasks is the number of tasks across the whole roadmap.
func (c *Curriculum) TotalTasks() int { return c.totalTasks }

// ─── Search ─────────────────────────────────────────────────────────────────

// Hit kinds returned by Search.
const (
	HitStage     = "stage"
	HitProject   = "project"
	HitTask      = "task"
	HitChallenge = "challenge"
)

// Hit is one search result.
type Hit struct {
	Kind      string `json:"kind"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	StageID   string `json:"stageId"`
	ProjectID string `json:"projectId,omitempty"`
}

// Search does a case-insensitive substring match over stage, project, task
// and challenge titles, descriptions and project concepts. An empty or
// blank query matches nothing.
func (c *Curriculum) Search(query string) []Hit {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	match := func(fields ...string) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}

	var hits []Hit
	for _, st := range c.stages {
		if match(st.Title, st.Description) {
			hits = append(hits, Hit{Kind: HitStage, ID: st.ID, Title: st.Title, StageID: st.ID})
		}
		for _, p := range st.Projects {
			if match(append([]string{p.Title, p.Description}, p.Concepts...)...) {
				hits = append(hits, Hit{Kind: HitProject, ID: p.ID, Title: p.Title, StageID: st.ID, ProjectID: p.ID})
			}
			for _, t := range p.Tasks {
				if match(t.Title) {
					hits = append(hits, Hit{Kind: HitTask, ID: t.ID, Title: t.Title, StageID: st.ID, ProjectID: p.ID})
				}
			}
			for _, ch := range p.Challenges {
				if match(ch.Title) {
					hits = append(hits, Hit{Kind: HitChallenge, ID: ch.ID, Title: ch.Title, StageID: st.ID, ProjectID: p.ID})
				}
			}
		}
	}
	return hits
}
