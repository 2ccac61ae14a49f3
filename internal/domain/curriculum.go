package domain

// Trail is a top-level learning track (programming, English, math).
type Trail struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Stages      []Stage `json:"stages" yaml:"stages"`
}

// Stage groups projects. Stage completion requires every project in it.
type Stage struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Icon        string    `json:"icon" yaml:"icon"`
	Projects    []Project `json:"projects" yaml:"projects"`
}

// Project is the unit learners work through.
type Project struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Concepts    []string   `json:"concepts,omitempty" yaml:"concepts"`
	Tasks       []Item     `json:"tasks" yaml:"tasks"`
	Challenges  []Item     `json:"challenges,omitempty" yaml:"challenges"`
	Resources   []Resource `json:"resources,omitempty" yaml:"resources"`
}

// Item is a task or challenge inside a project.
type Item struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Resource is an external learning link.
type Resource struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// HasTask reports whether the project defines the task.
func (p Project) HasTask(id string) bool {
	for _, t := range p.Tasks {
		if t.ID == id {
			return true
		}
	}
	return false
}

// HasChallenge reports whether the project defines the challenge.
func (p Project) HasChallenge(id string) bool {
	for _, c := range p.Challenges {
		if c.ID == id {
			return true
		}
	}
	return false
}
