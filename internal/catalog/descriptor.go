package catalog

import (
	"encoding/json"
	"fmt"
)

// Defaults applied to optional manifest fields.
const (
	DefaultVersion    = "1.0.0"
	DefaultDifficulty = "Beginner"
)

// TaskDescriptor is the immutable parsed metadata for one task. Points are
// non-negative; the sum of points over a module's tasks is its maximum
// score.
type TaskDescriptor struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Points             int      `json:"points"`
	Required           bool     `json:"required"`
	ScreenshotRequired bool     `json:"screenshotRequired"`
	Instructions       []string `json:"instructions"`
}

// ModuleDescriptor is the immutable parsed metadata for one training
// module. Prerequisites gate on completion of other modules; Dependencies
// name modules whose executable units must be loadable before this one
// runs. A descriptor with unresolved dependencies is valid as data but not
// instantiable.
type ModuleDescriptor struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Version           string           `json:"version"`
	Description       string           `json:"description"`
	Category          string           `json:"category"`
	Difficulty        string           `json:"difficulty"`
	EstimatedDuration string           `json:"estimatedDuration"`
	Prerequisites     []string         `json:"prerequisites"`
	Dependencies      []string         `json:"dependencies"`
	Objectives        []string         `json:"learningObjectives"`
	Tags              []string         `json:"tags"`
	Author            string           `json:"author"`
	Tasks             []TaskDescriptor `json:"tasks"`
	Resources         []string         `json:"resources"`
}

// MaxScore is the sum of task points.
func (d *ModuleDescriptor) MaxScore() int {
	total := 0
	for _, t := range d.Tasks {
		total += t.Points
	}
	return total
}

// Task returns the task with the given id, or nil.
func (d *ModuleDescriptor) Task(taskID string) *TaskDescriptor {
	for i := range d.Tasks {
		if d.Tasks[i].ID == taskID {
			return &d.Tasks[i]
		}
	}
	return nil
}

// RequiredTaskIDs returns the ids of tasks flagged required.
func (d *ModuleDescriptor) RequiredTaskIDs() []string {
	var ids []string
	for _, t := range d.Tasks {
		if t.Required {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// ParseDescriptor parses manifest bytes into a validated descriptor. It
// performs no I/O; discovery and file access belong to the Loader. A
// manifest without an id falls back to its name; missing both fails with
// ErrMissingIdentity. Optional fields receive documented defaults.
func ParseDescriptor(manifest []byte) (*ModuleDescriptor, error) {
	var d ModuleDescriptor
	if err := json.Unmarshal(manifest, &d); err != nil {
		return nil, &ParseError{Cause: err}
	}

	if d.ID == "" {
		d.ID = d.Name
	}
	if d.ID == "" {
		return nil, &ParseError{Cause: ErrMissingIdentity}
	}
	if d.Name == "" {
		d.Name = d.ID
	}
	if d.Version == "" {
		d.Version = DefaultVersion
	}
	if d.Difficulty == "" {
		d.Difficulty = DefaultDifficulty
	}
	if d.Prerequisites == nil {
		d.Prerequisites = []string{}
	}
	if d.Dependencies == nil {
		d.Dependencies = []string{}
	}
	if d.Tasks == nil {
		d.Tasks = []TaskDescriptor{}
	}

	for i := range d.Tasks {
		t := &d.Tasks[i]
		if t.ID == "" {
			t.ID = fmt.Sprintf("task_%d", i+1)
		}
		if t.Points < 0 {
			return nil, &ParseError{Cause: fmt.Errorf("task %s: negative points", t.ID)}
		}
	}
	return &d, nil
}
