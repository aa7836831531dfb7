// Package resolver implements C2: given a $ref-bearing node and a scope, it
// yields the referent (possibly across documents), pushing a Reference
// segment onto the scope for the duration of the callback and detecting
// cyclic recursion via the scope's own bookkeeping.
package resolver

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/schemaerr"
	"github.com/kstasik/schema-tools/scope"
)

// Callback receives the (possibly resolved) node together with the scope at
// the point of invocation.
type Callback func(node interface{}, s *scope.Scope) error

// Resolver resolves $ref nodes against a Storage-backed set of documents.
type Resolver struct {
	storage *schemadoc.Storage
	base    *url.URL
	log     logrus.FieldLogger
}

// New returns a Resolver that looks up external documents in storage and
// treats base as the document the current node was read from (used to
// resolve same-document fragment refs).
func New(storage *schemadoc.Storage, base *url.URL, log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{storage: storage, base: base, log: log}
}

// Resolve implements the C2 contract: if node is an object containing a
// $ref string, it resolves to the target across documents, pushes
// Reference(path) for the duration of k, then pops. Any other node is
// passed to k unchanged. An unresolvable fragment within an otherwise-known
// document is a hard UnresolvedReference error; an unknown base URL is
// logged and the call falls through with the original node.
func (r *Resolver) Resolve(node interface{}, s *scope.Scope, k Callback) error {
	om, ok := schemadoc.ToOrderedMap(node)
	if !ok {
		return k(node, s)
	}
	refVal, ok := om.Get("$ref")
	if !ok {
		return k(node, s)
	}
	ref, ok := refVal.(string)
	if !ok {
		return k(node, s)
	}

	target, err := r.ResolveOnce(ref)
	if err != nil {
		if err == errUnknownDocument {
			r.log.WithField("ref", ref).Warn("resolver: unknown base document, leaving node intact")
			return k(node, s)
		}
		return &schemaerr.ReferenceError{Ref: ref, Scope: s.Path(), Err: err}
	}

	s.PushReference(ref)
	defer s.Pop()

	if s.Recurse() {
		r.log.WithField("ref", ref).Warn("resolver: cycle detected, short-circuiting")
		return k(node, s)
	}

	return k(target, s)
}

// errUnknownDocument signals that the target base URL isn't in storage at
// all, as opposed to being known but failing fragment navigation; Resolve
// treats the two differently (log-and-fallthrough vs. hard error).
var errUnknownDocument = fmt.Errorf("resolver: unknown base document")

// ResolveOnce performs exactly one level of resolution without recursing
// into the result: it locates the base document (by absolute URL, fragment
// stripped) and, if a fragment is present, navigates it with a JSON
// pointer. Used by the dereferencer to step through reference chains while
// keeping custody of the transformation between steps.
func (r *Resolver) ResolveOnce(ref string) (interface{}, error) {
	target, err := schemadoc.RefToURL(r.base, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemaerr.ErrInvalidReference, err)
	}

	doc, ok := r.storage.Get(target)
	if !ok {
		return nil, errUnknownDocument
	}

	if target.Fragment == "" {
		return doc.Body, nil
	}
	return navigate(doc.Body, target.Fragment)
}

// navigate performs RFC-6901 JSON-pointer navigation of fragment against
// root. fragment is net/url's Fragment field, so it carries no "#"; a
// missing leading "/" is added, and the pointer "/" yields root. This is a
// direct pointer walk rather than a call into a generic RFC-6901 library:
// the tree being navigated is the OrderedMap/[]interface{} representation
// every other package in this repo walks, not map[string]interface{}, which
// is what every such library (e.g. go-jspointer) expects — see DESIGN.md's
// "Dropped teacher dependencies" for why one was tried and dropped rather
// than kept as a decorative no-op ahead of this.
func navigate(root interface{}, fragment string) (interface{}, error) {
	pointer := fragment
	if !strings.HasPrefix(pointer, "/") {
		pointer = "/" + pointer
	}
	if pointer == "/" {
		return root, nil
	}

	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	cur := root
	for _, raw := range parts {
		key := strings.ReplaceAll(raw, "~1", "/")
		key = strings.ReplaceAll(key, "~0", "~")

		switch t := cur.(type) {
		case *schemadoc.OrderedMap:
			v, ok := t.Get(key)
			if !ok {
				return nil, fmt.Errorf("%w: no key %q", schemaerr.ErrUnresolvedReference, key)
			}
			cur = v
		case []interface{}:
			idx := 0
			if _, err := fmt.Sscanf(key, "%d", &idx); err != nil {
				return nil, fmt.Errorf("%w: %q is not an array index", schemaerr.ErrUnresolvedReference, key)
			}
			if idx < 0 || idx >= len(t) {
				return nil, fmt.Errorf("%w: index %d out of range", schemaerr.ErrUnresolvedReference, idx)
			}
			cur = t[idx]
		default:
			return nil, fmt.Errorf("%w: cannot navigate into scalar at %q", schemaerr.ErrUnresolvedReference, key)
		}
	}
	return cur, nil
}
