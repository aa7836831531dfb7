package model

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kstasik/schema-tools/scope"
)

// Container owns every interned Model plus the regex/format tables the
// extractor populates alongside it (§3 "Model container").
type Container struct {
	Models []Model

	byPath    map[string]int
	byContent map[string]int
	usedNames map[string]bool

	Regexps []string
	Formats []string

	log logrus.FieldLogger
}

// NewContainer returns an empty Container.
func NewContainer(log logrus.FieldLogger) *Container {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Container{
		byPath:    map[string]int{},
		byContent: map[string]int{},
		usedNames: map[string]bool{},
		log:       log,
	}
}

// Add interns m under s's current path, returning its index. Insertion is
// idempotent by scope path and by structural content (§3 container
// invariants); a name collision with a structurally-different model bumps a
// numeric suffix and retries.
func (c *Container) Add(s *scope.Scope, m Model) int {
	path := s.Path()
	if idx, ok := c.byPath[path]; ok {
		return idx
	}

	contentKey := c.contentKey(m)
	if idx, ok := c.byContent[contentKey]; ok {
		c.byPath[path] = idx
		return idx
	}

	if name, ok := m.Name(); ok {
		unique := c.uniqueName(name)
		if unique != name {
			m = m.rename(unique)
			contentKey = c.contentKey(m)
		}
		c.usedNames[unique] = true
	}

	idx := len(c.Models)
	c.Models = append(c.Models, m)
	c.byPath[path] = idx
	c.byContent[contentKey] = idx
	return idx
}

func (c *Container) uniqueName(name string) string {
	if !c.usedNames[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", name, i)
		if !c.usedNames[candidate] {
			return candidate
		}
	}
}

// contentKey is a structural-equality key ignoring the model's own name
// (renaming on collision must not create a spurious distinct entry) and
// ignoring Spaces (orthogonal annotations, not identity per §3).
func (c *Container) contentKey(m Model) string {
	anon := m
	if _, ok := m.Name(); ok {
		anon = m.rename("")
	}
	anon.Spaces = nil

	b, err := json.Marshal(anon)
	if err != nil {
		c.log.WithError(err).Warn("model: failed to hash container entry, treating as unique")
		return fmt.Sprintf("unhashable:%p", &m)
	}
	return string(b)
}

// UpsertRegexp interns pattern, returning its table index.
func (c *Container) UpsertRegexp(pattern string) int {
	for i, p := range c.Regexps {
		if p == pattern {
			return i
		}
	}
	c.Regexps = append(c.Regexps, pattern)
	return len(c.Regexps) - 1
}

// UpsertFormat interns a format name, returning its table index.
func (c *Container) UpsertFormat(format string) int {
	for i, f := range c.Formats {
		if f == format {
			return i
		}
	}
	c.Formats = append(c.Formats, format)
	return len(c.Formats) - 1
}

// Get returns the model at idx.
func (c *Container) Get(idx int) Model { return c.Models[idx] }
