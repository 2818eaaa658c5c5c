// Package catalog manages the YAML subject catalog offered as input suggestions.
package catalog

import (
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Subject is a study subject and the task types usually logged for it.
type Subject struct {
	Name      string   `yaml:"name" json:"name"`
	TaskTypes []string `yaml:"task_types" json:"task_types"`
}

// Config is the top-level YAML structure.
type Config struct {
	Subjects []Subject `yaml:"subjects"`
}

// Catalog holds loaded subjects, keyed by name.
type Catalog struct {
	byName map[string]*Subject
	order  []string // preserves definition order
}

// DefaultSubjects are used when no catalog file exists.
var DefaultSubjects = []Subject{
	{Name: "Информатика", TaskTypes: []string{"Тип 1", "Тип 13", "Тип 24"}},
	{Name: "Математика", TaskTypes: []string{"Тип 1", "Тип 13", "Тип 24"}},
	{Name: "Физика", TaskTypes: []string{"Тип 1", "Тип 13", "Тип 24"}},
}

// Default returns a catalog of DefaultSubjects.
func Default() *Catalog {
	subjects := make([]Subject, len(DefaultSubjects))
	for i, s := range DefaultSubjects {
		subjects[i] = Subject{Name: s.Name, TaskTypes: append([]string(nil), s.TaskTypes...)}
	}
	return build(subjects)
}

// Load reads the YAML file at path. A missing file yields the default catalog.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return build(cfg.Subjects), nil
}

func build(subjects []Subject) *Catalog {
	c := &Catalog{byName: make(map[string]*Subject, len(subjects))}
	for i := range subjects {
		s := &subjects[i]
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			continue
		}
		if existing, ok := c.byName[s.Name]; ok {
			existing.TaskTypes = mergeTypes(existing.TaskTypes, s.TaskTypes)
			continue
		}
		s.TaskTypes = mergeTypes(nil, s.TaskTypes)
		c.byName[s.Name] = s
		c.order = append(c.order, s.Name)
	}
	return c
}

func mergeTypes(dst, src []string) []string {
	seen := make(map[string]bool, len(dst)+len(src))
	for _, t := range dst {
		seen[t] = true
	}
	for _, t := range src {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		dst = append(dst, t)
	}
	if dst == nil {
		dst = []string{}
	}
	return dst
}

// Get returns a subject by name. Returns (nil, false) if not found.
func (c *Catalog) Get(name string) (*Subject, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// All returns all subjects in definition order.
func (c *Catalog) All() []*Subject {
	result := make([]*Subject, 0, len(c.order))
	for _, name := range c.order {
		result = append(result, c.byName[name])
	}
	return result
}

// Names returns a sorted list of subject names.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	sort.Strings(names)
	return names
}

// Known reports whether subject and taskType are both in the catalog.
// Unknown pairs are still valid records; callers use this only to warn.
func (c *Catalog) Known(subject, taskType string) bool {
	s, ok := c.byName[subject]
	if !ok {
		return false
	}
	for _, t := range s.TaskTypes {
		if t == taskType {
			return true
		}
	}
	return false
}
