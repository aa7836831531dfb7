// Package mergeallof implements C6: flattening allOf arrays by deep-merging
// resolved branches in document order, respecting an optional per-branch
// filter.
package mergeallof

import (
	"github.com/imdario/mergo"
	"github.com/sirupsen/logrus"

	"github.com/kstasik/schema-tools/resolver"
	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/scope"
	"github.com/kstasik/schema-tools/traverse"
)

// Options configures a merge pass.
type Options struct {
	// Filter, when non-nil, is evaluated against every allOf branch; a
	// branch that fails the filter is excluded from the merge rather than
	// aborting the pass.
	Filter *traverse.Filter
}

// Merger runs C6 against a document tree.
type Merger struct {
	resolver *resolver.Resolver
	opts     Options
	log      logrus.FieldLogger
}

// New returns a Merger that resolves $ref branches via r.
func New(r *resolver.Resolver, opts Options, log logrus.FieldLogger) *Merger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Merger{resolver: r, opts: defaultOptions(opts), log: log}
}

// Run merges every allOf in doc's body in place.
func (m *Merger) Run(root interface{}) (interface{}, error) {
	s := scope.New()
	return m.walk(root, s)
}

func (m *Merger) walk(node interface{}, s *scope.Scope) (interface{}, error) {
	switch t := node.(type) {
	case *schemadoc.OrderedMap:
		// Depth-first: process children first so nested allOf chains
		// collapse bottom-up before this node's own allOf (if any) is
		// merged.
		for _, k := range t.Keys() {
			v, _ := t.Get(k)
			s.PushProperty(k)
			nv, err := m.walk(v, s)
			s.Pop()
			if err != nil {
				return nil, err
			}
			t.Set(k, nv)
		}

		allOfVal, hasAllOf := t.Get("allOf")
		if !hasAllOf {
			return t, nil
		}
		branches, ok := allOfVal.([]interface{})
		if !ok {
			return t, nil
		}
		if len(branches) == 0 {
			m.log.Warn("mergeallof: empty allOf array, leaving as-is")
			return t, nil
		}

		var accumulated interface{}
		for i, branch := range branches {
			if m.opts.Filter != nil && !m.opts.Filter.Match(branch) {
				continue
			}

			s.PushForm("allOf")
			s.PushIndex(i)
			resolved, err := m.resolveBranch(branch, s)
			s.Pop()
			s.Pop()
			if err != nil {
				return nil, err
			}

			if accumulated == nil {
				accumulated = resolved
			} else {
				accumulated = mergeValues(accumulated, resolved)
			}
		}

		t.Delete("allOf")
		if accumulated == nil {
			return t, nil
		}
		return mergeValues(accumulated, t), nil

	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			s.PushIndex(i)
			v, err := m.walk(e, s)
			s.Pop()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	default:
		return node, nil
	}
}

// resolveBranch follows a single $ref (if present) before recursing into
// the branch so nested allOf inside referenced definitions are flattened
// too.
func (m *Merger) resolveBranch(branch interface{}, s *scope.Scope) (interface{}, error) {
	var resolved interface{}
	err := m.resolver.Resolve(branch, s, func(node interface{}, s *scope.Scope) error {
		v, err := m.walk(schemadoc.CloneValue(node), s)
		if err != nil {
			return err
		}
		resolved = v
		return nil
	})
	return resolved, err
}

// mergeValues is the recursive deep merge rule shared by every allOf branch
// accumulation and the final sibling merge: objects are unioned by key
// (recursing on shared keys), arrays are concatenated, and scalars are
// overwritten by the right-hand value. It walks OrderedMap and slice values
// directly; mergo is used only by defaultOptions.
func mergeValues(a, b interface{}) interface{} {
	aMap, aOK := schemadoc.ToOrderedMap(a)
	bMap, bOK := schemadoc.ToOrderedMap(b)
	if aOK && bOK {
		out := aMap.Clone()
		for _, k := range bMap.Keys() {
			bv, _ := bMap.Get(k)
			if av, ok := out.Get(k); ok {
				out.Set(k, mergeValues(av, bv))
			} else {
				out.Set(k, schemadoc.CloneValue(bv))
			}
		}
		return out
	}

	aArr, aOK := a.([]interface{})
	bArr, bOK := b.([]interface{})
	if aOK && bOK {
		out := make([]interface{}, 0, len(aArr)+len(bArr))
		out = append(out, aArr...)
		out = append(out, bArr...)
		return out
	}

	// Type mismatch or scalar: right-hand value wins.
	return b
}

// defaultOptions fills any zero-valued field of opts from defaults, the way
// the teacher's spec.Schema.FlattenAllOf leans on mergo for struct merging;
// here it lets callers pass a partially-populated Options and get the
// package defaults (currently just a permissive nil Filter) for the rest.
func defaultOptions(opts Options) Options {
	defaults := Options{Filter: nil}
	if err := mergo.Merge(&opts, defaults); err != nil {
		return opts
	}
	return opts
}
