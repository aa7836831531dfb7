// Package mergeopenapi implements C7: unioning two OpenAPI documents —
// components/*, paths, and tags — with optional retagging.
package mergeopenapi

import (
	"fmt"

	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/schemaerr"
	"github.com/kstasik/schema-tools/scope"
	"github.com/kstasik/schema-tools/traverse"
)

// Options configures a merge: With is the secondary document merged into
// the primary; Retag, if set, replaces every inserted operation's tags
// field with [*Retag] and suppresses the tags[] union step entirely.
type Options struct {
	With  interface{} // secondary document body (*schemadoc.OrderedMap)
	Retag *string
}

// Merge unions opts.With into primary in place, per §4.7. primary must be a
// JSON object.
func Merge(primary interface{}, opts Options) error {
	root, ok := schemadoc.ToOrderedMap(primary)
	if !ok {
		return schemaerr.ErrInvalidOpenapiRoot
	}
	merged, ok := schemadoc.ToOrderedMap(opts.With)
	if !ok {
		return fmt.Errorf("%w: secondary document", schemaerr.ErrInvalidOpenapiRoot)
	}

	components := ensureObject(root, "components")
	s := scope.New()
	err := traverse.EachNode(merged, s, "/any:components/definition:*/any:*", func(node interface{}, parts []string, _ *scope.Scope) error {
		if len(parts) != 2 {
			return nil
		}
		definition, name := parts[0], parts[1]
		set := ensureObject(components, definition)
		if !set.Has(name) {
			set.Set(name, schemadoc.CloneValue(node))
		}
		return nil
	})
	if err != nil {
		return err
	}

	paths := ensureObject(root, "paths")
	err = traverse.EachNode(merged, s, "/path:paths/any:*/any:*", func(node interface{}, parts []string, _ *scope.Scope) error {
		if len(parts) != 2 {
			return nil
		}
		path, method := parts[0], parts[1]
		set := ensureObject(paths, path)
		if set.Has(method) {
			return nil
		}

		value := schemadoc.CloneValue(node)
		if opts.Retag != nil {
			if om, ok := schemadoc.ToOrderedMap(value); ok {
				om.Set("tags", []interface{}{*opts.Retag})
			}
		}
		set.Set(method, value)
		return nil
	})
	if err != nil {
		return err
	}

	if opts.Retag != nil {
		return nil
	}

	return mergeTags(root, merged)
}

// ensureObject returns (creating if absent) the *schemadoc.OrderedMap stored
// under key in parent.
func ensureObject(parent *schemadoc.OrderedMap, key string) *schemadoc.OrderedMap {
	if v, ok := parent.Get(key); ok {
		if om, ok := schemadoc.ToOrderedMap(v); ok {
			return om
		}
	}
	om := schemadoc.NewOrderedMap()
	parent.Set(key, om)
	return om
}

// mergeTags unions merged's top-level tags[] into root's, preserving
// root's ordering and appending any secondary tag whose name wasn't already
// present. Like the component insertion in Merge (see DESIGN.md's open
// question resolutions), this deduplicates by name only, not by content.
func mergeTags(root, merged *schemadoc.OrderedMap) error {
	tagsVal, ok := root.Get("tags")
	var tags []interface{}
	if ok {
		tags, _ = tagsVal.([]interface{})
	}

	names := map[string]bool{}
	for _, t := range tags {
		if om, ok := schemadoc.ToOrderedMap(t); ok {
			if n, ok := om.Get("name"); ok {
				if s, ok := n.(string); ok {
					names[s] = true
				}
			}
		}
	}

	mergedTagsVal, ok := merged.Get("tags")
	if ok {
		mergedTags, _ := mergedTagsVal.([]interface{})
		for _, t := range mergedTags {
			om, ok := schemadoc.ToOrderedMap(t)
			if !ok {
				continue
			}
			n, ok := om.Get("name")
			if !ok {
				continue
			}
			name, ok := n.(string)
			if !ok || names[name] {
				continue
			}
			tags = append(tags, schemadoc.CloneValue(t))
			names[name] = true
		}
	}

	if tags == nil {
		tags = []interface{}{}
	}
	root.Set("tags", tags)
	return nil
}
