// Package anyoneof implements the discriminator-detection extractors used
// by C11 while building a oneOf/anyOf Wrapper: Simple (autodetects an
// external or internal tag property) and Discriminator (driven by an
// OpenAPI `discriminator` object). Grounded on
// original_source/crates/schematools/src/codegen/jsonschema/anyoneof/extractor.rs.
package anyoneof

import (
	"github.com/kstasik/schema-tools/model"
	"github.com/kstasik/schema-tools/schemadoc"
)

// DiscriminatorMeta is attached to a variant's attributes.Extensions under
// the "_discriminator" key once an extractor identifies its tag.
type DiscriminatorMeta struct {
	Property      string `json:"property"`
	ValueName     string `json:"value"`
	ValueKind     string `json:"kind"`
	PropertyCount int    `json:"properties"`
}

// Extractor decides, per variant, which property (if any) discriminates it
// from its siblings, and reports the overall Wrapper strategy once every
// variant has been seen.
type Extractor interface {
	// Preprocess expands the raw variant list (Discriminator duplicates a
	// $ref-only branch once per mapping entry pointing at it).
	Preprocess(variants []interface{}) []interface{}
	// Discriminate inspects original (the variant's raw schema node) and
	// properties (the already-extracted object's flattened properties, if
	// the variant is an object; nil otherwise), returning the meta to
	// attach (nil if none detected) and the properties list to keep
	// (Discriminator strips its own tag property).
	Discriminate(original interface{}, properties []model.FlatRef) (*DiscriminatorMeta, []model.FlatRef)
	Strategy() model.Strategy
}

func refOf(original interface{}) (string, bool) {
	om, ok := schemadoc.ToOrderedMap(original)
	if !ok {
		return "", false
	}
	v, ok := om.Get("$ref")
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// simplePropertyKind classifies how a single variant reported its tag.
type simplePropertyKind int

const (
	simpleUnknown simplePropertyKind = iota
	simpleInternal
	simpleExternal
)

// Simple autodetects a discriminator: a single-property object is an
// external tag (the property name is the tag, its value the variant); an
// object with a `const`-typed property uses that property as an internal
// tag.
type Simple struct {
	seen []simplePropertyKind
	// firstInternal is the property name recorded on the first internally-
	// tagged variant, used if every variant turns out internal.
	firstInternal string
}

// NewSimple returns a fresh Simple extractor.
func NewSimple() *Simple { return &Simple{} }

func (s *Simple) Preprocess(variants []interface{}) []interface{} { return variants }

func (s *Simple) Discriminate(_ interface{}, properties []model.FlatRef) (*DiscriminatorMeta, []model.FlatRef) {
	if len(properties) == 1 {
		p := properties[0]
		s.seen = append(s.seen, simpleExternal)
		return &DiscriminatorMeta{
			Property:      p.Name,
			ValueName:     p.Name,
			ValueKind:     string(p.TypeTag),
			PropertyCount: 1,
		}, properties
	}

	for _, p := range properties {
		if p.TypeTag == model.KindConst {
			if s.firstInternal == "" {
				s.firstInternal = p.Name
			}
			s.seen = append(s.seen, simpleInternal)
			return &DiscriminatorMeta{
				Property:      p.Name,
				ValueName:     p.Name,
				ValueKind:     string(p.TypeTag),
				PropertyCount: len(properties) - 1,
			}, properties
		}
	}

	s.seen = append(s.seen, simpleUnknown)
	return nil, properties
}

func (s *Simple) Strategy() model.Strategy {
	if len(s.seen) == 0 {
		return model.Strategy{Kind: model.StrategyBruteForce}
	}

	external, internal := 0, 0
	for _, k := range s.seen {
		switch k {
		case simpleExternal:
			external++
		case simpleInternal:
			internal++
		}
	}

	switch {
	case external == len(s.seen):
		return model.Strategy{Kind: model.StrategyExternally}
	case internal == len(s.seen):
		return model.Strategy{Kind: model.StrategyInternally, Property: s.firstInternal}
	default:
		return model.Strategy{Kind: model.StrategyBruteForce}
	}
}

// Discriminator is driven by an OpenAPI `discriminator` object: a
// propertyName plus a mapping of tag value -> $ref.
type Discriminator struct {
	property string
	// mapping is $ref -> remaining tag values to assign, in mapping order;
	// each Discriminate call for that $ref consumes the last remaining one.
	mapping map[string][]string
}

// NewDiscriminator builds a Discriminator from a `discriminator` schema
// node ({"propertyName": ..., "mapping": {tag: ref, ...}}), or returns
// false if propertyName is absent.
func NewDiscriminator(node interface{}) (*Discriminator, bool) {
	om, ok := schemadoc.ToOrderedMap(node)
	if !ok {
		return nil, false
	}
	propVal, ok := om.Get("propertyName")
	if !ok {
		return nil, false
	}
	property, ok := propVal.(string)
	if !ok {
		return nil, false
	}

	mapping := map[string][]string{}
	if mv, ok := om.Get("mapping"); ok {
		if mom, ok := schemadoc.ToOrderedMap(mv); ok {
			for _, tag := range mom.Keys() {
				rv, _ := mom.Get(tag)
				ref, ok := rv.(string)
				if !ok {
					continue
				}
				mapping[ref] = append(mapping[ref], tag)
			}
		}
	}

	return &Discriminator{property: property, mapping: mapping}, true
}

// Preprocess duplicates any $ref-only variant once per tag value the
// mapping assigns to it, so each resulting entry corresponds to exactly
// one discriminator value.
func (d *Discriminator) Preprocess(variants []interface{}) []interface{} {
	var out []interface{}
	for _, v := range variants {
		ref, ok := refOf(v)
		if !ok {
			out = append(out, v)
			continue
		}
		count := len(d.mapping[ref])
		if count == 0 {
			out = append(out, v)
			continue
		}
		for i := 0; i < count; i++ {
			out = append(out, v)
		}
	}
	return out
}

func (d *Discriminator) Discriminate(original interface{}, properties []model.FlatRef) (*DiscriminatorMeta, []model.FlatRef) {
	ref, ok := refOf(original)
	if !ok {
		return nil, properties
	}
	values := d.mapping[ref]
	if len(values) == 0 {
		return nil, properties
	}
	value := values[len(values)-1]
	d.mapping[ref] = values[:len(values)-1]

	var filtered []model.FlatRef
	for _, p := range properties {
		if p.Name != d.property {
			filtered = append(filtered, p)
		}
	}

	return &DiscriminatorMeta{
		Property:      d.property,
		ValueName:     value,
		ValueKind:     "string",
		PropertyCount: len(filtered),
	}, filtered
}

func (d *Discriminator) Strategy() model.Strategy {
	return model.Strategy{Kind: model.StrategyInternally, Property: d.property}
}
