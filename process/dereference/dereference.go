// Package dereference implements C5: recursively inlining $ref nodes,
// optionally creating internal back-pointers when the same target is
// inlined more than once.
package dereference

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kstasik/schema-tools/resolver"
	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/schemaerr"
	"github.com/kstasik/schema-tools/scope"
)

// maxDepth bounds reference chains; exceeding it is a fatal error rather
// than a recovered-and-logged condition, per §4.5.
const maxDepth = 50

// Options configures a dereference pass.
type Options struct {
	// SkipRootInternal leaves a $ref intact at depth 1 when it targets the
	// root document itself.
	SkipRootInternal bool
	// CreateInternalRefs replaces every inlining after the first of the
	// same target with {"$ref": "#<scope-path>"} pointing at the first
	// occurrence, instead of duplicating the full subtree.
	CreateInternalRefs bool
	// SkipHosts leaves any $ref whose target host matches one of these
	// values intact.
	SkipHosts []string
}

// Dereferencer runs C5 against a single document.
type Dereferencer struct {
	resolver *resolver.Resolver
	rootURL  *url.URL
	opts     Options
	log      logrus.FieldLogger

	seen map[string]string // absolute ref -> scope path of first inlining
}

// New returns a Dereferencer for doc, resolving $refs via r.
func New(r *resolver.Resolver, doc *schemadoc.Document, opts Options, log logrus.FieldLogger) *Dereferencer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dereferencer{
		resolver: r,
		rootURL:  doc.URL,
		opts:     opts,
		log:      log,
		seen:     map[string]string{},
	}
}

// Run dereferences doc.Body in place.
func (d *Dereferencer) Run(doc *schemadoc.Document) error {
	s := scope.New()
	result, err := d.walk(doc.Body, s, 1)
	if err != nil {
		return err
	}
	doc.Body = result
	return nil
}

func (d *Dereferencer) walk(node interface{}, s *scope.Scope, depth int) (interface{}, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("%w: exceeded depth %d", schemaerr.ErrCycleOverflow, maxDepth)
	}

	om, ok := schemadoc.ToOrderedMap(node)
	if !ok {
		if arr, ok := node.([]interface{}); ok {
			out := make([]interface{}, len(arr))
			for i, e := range arr {
				s.PushIndex(i)
				v, err := d.walk(e, s, depth)
				s.Pop()
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return out, nil
		}
		return node, nil
	}

	refVal, hasRef := om.Get("$ref")
	ref, isStringRef := refVal.(string)
	if !hasRef || !isStringRef {
		return d.walkObjectFields(om, s, depth)
	}

	target, err := schemadoc.RefToURL(d.rootURL, ref)
	if err != nil {
		d.log.WithField("ref", ref).Warn("dereference: could not parse reference, leaving intact")
		return om, nil
	}

	if d.hostSkipped(target) {
		return om, nil
	}

	if d.opts.SkipRootInternal && depth == 1 && d.isRoot(target) {
		return om, nil
	}

	if d.opts.CreateInternalRefs {
		if path, ok := d.seen[ref]; ok {
			return internalRef(path), nil
		}
	}

	resolved, err := d.resolver.ResolveOnce(ref)
	if err != nil {
		d.log.WithField("ref", ref).Warn("dereference: reference did not resolve, leaving intact")
		return om, nil
	}

	var firstPath string
	if d.opts.CreateInternalRefs {
		firstPath = s.Path()
		if !strings.HasPrefix(firstPath, "/") {
			firstPath = "/" + firstPath
		}
	}

	s.PushReference(ref)
	if d.opts.CreateInternalRefs {
		d.seen[ref] = firstPath
	}
	merged, err := d.merge(resolved, om, s, depth+1)
	s.Pop()
	return merged, err
}

// merge inlines resolved in place of a $ref node, adding any sibling key
// from original that is not $ref and not already present on resolved
// (resolved wins; siblings are added only when absent — see DESIGN.md's
// "Open question resolutions" for why this follows spec.md's prose over the
// original Rust source's unconditional-overwrite behavior).
func (d *Dereferencer) merge(resolved interface{}, original *schemadoc.OrderedMap, s *scope.Scope, depth int) (interface{}, error) {
	resolvedCopy := schemadoc.CloneValue(resolved)

	walked, err := d.walk(resolvedCopy, s, depth)
	if err != nil {
		return nil, err
	}

	target, ok := schemadoc.ToOrderedMap(walked)
	if !ok {
		return walked, nil
	}

	for _, k := range original.Keys() {
		if k == "$ref" {
			continue
		}
		if target.Has(k) {
			continue
		}
		v, _ := original.Get(k)
		target.Set(k, v)
	}
	return target, nil
}

func (d *Dereferencer) walkObjectFields(om *schemadoc.OrderedMap, s *scope.Scope, depth int) (interface{}, error) {
	out := schemadoc.NewOrderedMap()
	for _, k := range om.Keys() {
		v, _ := om.Get(k)
		s.PushProperty(k)
		nv, err := d.walk(v, s, depth)
		s.Pop()
		if err != nil {
			return nil, err
		}
		out.Set(k, nv)
	}
	return out, nil
}

func (d *Dereferencer) hostSkipped(target *url.URL) bool {
	for _, h := range d.opts.SkipHosts {
		if strings.EqualFold(target.Host, h) {
			return true
		}
	}
	return false
}

func (d *Dereferencer) isRoot(target *url.URL) bool {
	if d.rootURL == nil {
		return false
	}
	cleared := *target
	cleared.Fragment = ""
	rootCleared := *d.rootURL
	rootCleared.Fragment = ""
	return cleared.String() == rootCleared.String()
}

func internalRef(path string) *schemadoc.OrderedMap {
	om := schemadoc.NewOrderedMap()
	om.Set("$ref", "#"+path)
	return om
}
