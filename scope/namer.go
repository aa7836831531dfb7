package scope

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kstasik/schema-tools/schemaerr"
)

// Namer derives canonical identifiers from a frozen scope segment stack. It
// is produced by Scope.Namer and is itself immutable.
type Namer struct {
	segments []Segment
}

var wordBoundary = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Convert PascalCases an arbitrary title string the same way an Entity
// segment's name is cased: split on any run of non-alphanumerics and
// capitalize each resulting word.
func Convert(title string) string {
	words := wordBoundary.Split(title, -1)
	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		if len(w) > 1 {
			b.WriteString(w[1:])
		}
	}
	return b.String()
}

// Name computes the simple name of the scope per the rules in the data
// model: the last non-Form, non-Index, non-Reference segment decides the
// base name; Entity wins outright (optionally disambiguated by its
// immediately preceding Form(oneOf|anyOf)+Index or Form(allOf)+Index
// sibling), Property/Definition glue onto the last enclosing Entity, and
// everything else falls back to concatenated Glue segments.
func (n *Namer) Name() (string, error) {
	if len(n.segments) == 0 {
		return "", schemaerr.ErrNoBaseName
	}

	idx := -1
	for i := len(n.segments) - 1; i >= 0; i-- {
		k := n.segments[i].Kind
		if k == Form || k == Index || k == Reference {
			continue
		}
		idx = i
		break
	}
	if idx == -1 {
		return n.glue(), nil
	}

	seg := n.segments[idx]
	switch seg.Kind {
	case Entity:
		name := Convert(seg.Name)
		if idx > 0 {
			prev := n.segments[idx-1]
			if prev.Kind == Index {
				if formIdx := idx - 2; formIdx >= 0 {
					form := n.segments[formIdx]
					if form.Kind == Form {
						switch form.Name {
						case "oneOf", "anyOf":
							return fmt.Sprintf("%sOption%d", name, prev.Index+1), nil
						case "allOf":
							return fmt.Sprintf("%sPartial%d", name, prev.Index+1), nil
						}
					}
				}
			}
		}
		return name, nil
	case Property, Definition:
		entity := n.lastEntity(idx)
		return entity + Convert(seg.Name), nil
	default:
		return n.glue(), nil
	}
}

// lastEntity finds the closest enclosing Entity segment name before index
// upTo (exclusive), PascalCased. Returns "" if none exists.
func (n *Namer) lastEntity(upTo int) string {
	for i := upTo - 1; i >= 0; i-- {
		if n.segments[i].Kind == Entity {
			return Convert(n.segments[i].Name)
		}
	}
	return ""
}

// glue concatenates every Glue segment's PascalCased name, used when the
// last significant segment is itself a Glue (or an Any segment, which
// contributes nothing here) rather than an Entity/Property/Definition.
func (n *Namer) glue() string {
	var b strings.Builder
	for _, seg := range n.segments {
		if seg.Kind == Glue {
			b.WriteString(Convert(seg.Name))
		}
	}
	return b.String()
}

// Decorate appends PascalCased suffix parts to the scope's simple name, used
// e.g. to derive a oneOf/anyOf wrapper's name ("FooVariant").
func (n *Namer) Decorate(parts ...string) (string, error) {
	base, err := n.Name()
	if err != nil {
		return "", err
	}
	for _, p := range parts {
		base += Convert(p)
	}
	return base, nil
}
