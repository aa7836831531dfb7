// Package traverse implements C4: a small parser and walker for the
// "/<kind>:<match>/..." pointer-pattern grammar used by every processing
// pass to address parts of a schema tree, plus the filter language (C6's
// allOf branch filter) and the -o key=value argument filler recovered from
// original_source/tools.rs.
package traverse

import (
	"fmt"
	"strings"

	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/scope"
)

// SegmentKind is the declared kind of one pattern segment.
type SegmentKind string

const (
	KindPath       SegmentKind = "path"
	KindAny        SegmentKind = "any"
	KindDefinition SegmentKind = "definition"
	KindProperty   SegmentKind = "property"
)

// PatternSegment is one "<kind>:<match>" unit of a parsed pattern.
type PatternSegment struct {
	Kind  SegmentKind
	Match string // literal key, or "*" for wildcard
}

// ParsePattern parses a pattern string such as
// "/any:components/definition:*/any:*" into its segments.
func ParsePattern(pattern string) ([]PatternSegment, error) {
	pattern = strings.TrimPrefix(pattern, "/")
	if pattern == "" {
		return nil, nil
	}
	raw := strings.Split(pattern, "/")
	out := make([]PatternSegment, 0, len(raw))
	for _, seg := range raw {
		kind, match, ok := strings.Cut(seg, ":")
		if !ok {
			return nil, fmt.Errorf("traverse: segment %q is missing a <kind>: prefix", seg)
		}
		k := SegmentKind(kind)
		switch k {
		case KindPath, KindAny, KindDefinition, KindProperty:
		default:
			return nil, fmt.Errorf("traverse: unknown segment kind %q", kind)
		}
		out = append(out, PatternSegment{Kind: k, Match: match})
	}
	return out, nil
}

func (k SegmentKind) scopeKind() scope.Kind {
	switch k {
	case KindDefinition:
		return scope.Definition
	case KindProperty:
		return scope.Property
	default:
		return scope.Any
	}
}

// NodeFunc is invoked for every node a pattern walk reaches; parts holds the
// literal keys captured by each "*" segment, in order, and s is the scope at
// the point the node was reached.
type NodeFunc func(node interface{}, parts []string, s *scope.Scope) error

// EachNode walks root according to pattern (read-only with respect to the
// tree shape; the callback may still mutate node's own fields through its
// reference since the tree is made of pointers/maps).
func EachNode(root interface{}, s *scope.Scope, pattern string, fn NodeFunc) error {
	segs, err := ParsePattern(pattern)
	if err != nil {
		return err
	}
	return walk(root, s, segs, nil, fn)
}

func walk(node interface{}, s *scope.Scope, segs []PatternSegment, parts []string, fn NodeFunc) error {
	if len(segs) == 0 {
		return fn(node, parts, s)
	}

	head, rest := segs[0], segs[1:]
	om, ok := schemadoc.ToOrderedMap(node)
	if !ok {
		return nil
	}

	if head.Match == "*" {
		for _, key := range om.Keys() {
			child, _ := om.Get(key)
			s.PushKind(head.Kind.scopeKind(), key)
			err := walk(child, s, rest, append(append([]string(nil), parts...), key), fn)
			s.Pop()
			if err != nil {
				return err
			}
		}
		return nil
	}

	child, ok := om.Get(head.Match)
	if !ok {
		return nil
	}
	s.PushKind(head.Kind.scopeKind(), head.Match)
	err := walk(child, s, rest, parts, fn)
	s.Pop()
	return err
}
