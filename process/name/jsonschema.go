package name

import (
	"github.com/sirupsen/logrus"

	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/schemaerr"
	"github.com/kstasik/schema-tools/scope"
)

// nestedDefinitionKeys are object keys whose entries are named as
// Definition segments.
var nestedDefinitionKeys = []string{"definitions", "$defs"}

// nestedFormKeys are object keys whose values recurse as a single nested
// schema under a Form segment.
var nestedFormKeys = []string{"items", "oneOf", "allOf", "anyOf", "not"}

// SchemaNamerOptions configures NameSchema.
type SchemaNamerOptions struct {
	// Overwrite replaces an existing "title", not just a missing one.
	Overwrite bool
	// BaseName supplies the root schema's title when it has none (or is
	// overwritten); required at the root, since the root scope is empty
	// and Namer.Name cannot derive anything from it.
	BaseName string
	Log      logrus.FieldLogger
}

// NameSchema recursively assigns a "title" to root and every nested
// schema (properties, definitions/$defs, items, oneOf/allOf/anyOf, not),
// per §4.10, grounded on original_source/src/process/name/jsonschema.rs.
func NameSchema(root interface{}, s *scope.Scope, opts SchemaNamerOptions) error {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}

	switch t := root.(type) {
	case *schemadoc.OrderedMap:
		title, err := schemaTitle(t, s, opts)
		if err != nil {
			return err
		}
		if title != "" {
			s.PushEntity(title)
			t.Set("title", title)
		}

		if v, ok := t.Get("properties"); ok {
			if props, ok := schemadoc.ToOrderedMap(v); ok {
				s.PushForm("properties")
				for _, k := range props.Keys() {
					pv, _ := props.Get(k)
					s.PushProperty(k)
					if err := NameSchema(pv, s, opts); err != nil {
						return err
					}
					s.Pop()
				}
				s.Pop()
			}
		}

		for _, key := range nestedDefinitionKeys {
			v, ok := t.Get(key)
			if !ok {
				continue
			}
			defs, ok := schemadoc.ToOrderedMap(v)
			if !ok {
				continue
			}
			s.PushAny(key)
			for _, k := range defs.Keys() {
				dv, _ := defs.Get(k)
				s.PushKind(scope.Definition, k)
				if err := NameSchema(dv, s, opts); err != nil {
					return err
				}
				s.Pop()
			}
			s.Pop()
		}

		for _, key := range nestedFormKeys {
			v, ok := t.Get(key)
			if !ok {
				continue
			}
			s.PushForm(key)
			if err := NameSchema(v, s, opts); err != nil {
				return err
			}
			s.Pop()
		}

		if title != "" {
			s.Pop()
		}
		return nil

	case []interface{}:
		for i, v := range t {
			s.PushIndex(i)
			if err := NameSchema(v, s, opts); err != nil {
				return err
			}
			s.Pop()
		}
		return nil

	default:
		return nil
	}
}

// schemaTitle decides the title (if any) map should receive, following
// get_title in jsonschema.rs: the root always gets a title (existing,
// Overwrite, or BaseName, in that priority); nested schemas keep an
// existing title unless Overwrite is set, skip non-object simple types,
// and otherwise propose one via the scope's Namer.
func schemaTitle(m *schemadoc.OrderedMap, s *scope.Scope, opts SchemaNamerOptions) (string, error) {
	existing, _ := m.Get("title")
	existingStr, hasTitle := existing.(string)

	if s.IsEmpty() {
		if !hasTitle || opts.Overwrite {
			if opts.BaseName == "" {
				return "", schemaerr.ErrNoBaseName
			}
			return opts.BaseName, nil
		}
		return existingStr, nil
	}

	if hasTitle && !opts.Overwrite {
		return existingStr, nil
	}

	if typeVal, ok := m.Get("type"); ok {
		if ts, ok := typeVal.(string); ok && ts != "object" {
			return "", nil
		}
	}

	proposal, err := s.Namer().Name()
	if err != nil {
		return "", err
	}
	opts.Log.WithField("scope", s.Path()).Infof("naming -> %s", proposal)
	return proposal, nil
}
