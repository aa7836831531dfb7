package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/kstasik/schema-tools/model/anyoneof"
	"github.com/kstasik/schema-tools/resolver"
	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/scope"
)

// recognizedFacets are the JSON-Schema validation keywords collected into
// Attributes.ValidationFacets verbatim, per §4.11 step 5.
var recognizedFacets = []string{
	"format", "maximum", "exclusiveMaximum", "minimum", "exclusiveMinimum",
	"maxLength", "minLength", "pattern", "maxItems", "minItems",
	"uniqueItems", "maxProperties", "minProperties", "default",
}

// Options configures an extraction run.
type Options struct {
	// OptionalAndNullableAsModels wraps a property's FlatRef in a
	// NullableOptionalWrapper when it is both optional and nullable (§4.11.1).
	OptionalAndNullableAsModels bool
	// OriginalSchemaFilter, when non-nil and returning true for a raw
	// schema node, stashes that node verbatim in Attributes.OriginalSchema.
	OriginalSchemaFilter func(node interface{}) bool
	Log                  logrus.FieldLogger
}

// Extractor runs C11 against a resolved schema tree.
type Extractor struct {
	resolver  *resolver.Resolver
	opts      Options
	container *Container
}

// NewExtractor returns an Extractor backed by r for following $refs and
// storing results in container.
func NewExtractor(r *resolver.Resolver, container *Container, opts Options) *Extractor {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	return &Extractor{resolver: r, opts: opts, container: container}
}

// Container returns the container this extractor populates.
func (e *Extractor) Container() *Container { return e.container }

// Extract lowers schema (root or any subtree) into a FlatRef, interning
// named models into e.Container() as it goes. The entry point for a whole
// document; scope should be a fresh scope.New() for top-level extraction.
func (e *Extractor) Extract(schema interface{}, s *scope.Scope) (FlatRef, error) {
	m, err := e.extractRef(schema, s)
	if err != nil {
		return FlatRef{}, err
	}
	return e.flatten(m, s), nil
}

// extractRef follows a $ref via C2 (cycle-safe) before dispatching to
// extractNode; non-ref nodes pass straight through resolver.Resolve.
func (e *Extractor) extractRef(node interface{}, s *scope.Scope) (Model, error) {
	originalRef, isRef := refString(node)

	var result Model
	err := e.resolver.Resolve(node, s, func(resolved interface{}, s *scope.Scope) error {
		if isRef {
			if rr, ok := refString(resolved); ok && rr == originalRef {
				e.opts.Log.WithField("scope", s.Path()).Warn("model: cyclic reference, emitting Any")
				result = Model{Kind: KindAny, Attributes: DefaultAttributes()}
				return nil
			}
		}
		m, err := e.extractNode(resolved, s)
		if err != nil {
			return err
		}
		result = m
		return nil
	})
	return result, err
}

func refString(node interface{}) (string, bool) {
	om, ok := schemadoc.ToOrderedMap(node)
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

// extractNode implements §4.11 steps 1-5 against a single (already
// resolved) schema node.
func (e *Extractor) extractNode(node interface{}, s *scope.Scope) (Model, error) {
	om, ok := schemadoc.ToOrderedMap(node)
	if !ok {
		return Model{Kind: KindAny, Attributes: DefaultAttributes()}, nil
	}

	// 1. Title derivation.
	popEntity := false
	if titleVal, ok := om.Get("title"); ok {
		if title, ok := titleVal.(string); ok && title != "" {
			s.PushEntity(scope.Convert(title))
			popEntity = true
		}
	}
	if !popEntity {
		if name, err := s.Namer().Name(); err == nil {
			s.PushEntity(name)
			popEntity = true
		}
	}
	if popEntity {
		defer s.Pop()
	}

	// 2. $id handling.
	if idVal, ok := om.Get("$id"); ok {
		if id, ok := idVal.(string); ok && id != "" {
			s.PushSpace(scope.Space{Kind: scope.SpaceID, Value: id})
			defer s.PopSpace()
		}
	}

	m, err := e.dispatch(om, s)
	if err != nil {
		return Model{}, err
	}

	// 4. Enum coercion.
	if enumVal, ok := om.Get("enum"); ok {
		if variants, ok := enumVal.([]interface{}); ok {
			if coerced, ok := coerceEnum(m, variants); ok {
				m = coerced
			}
		}
	}

	// 5. Validation & attribute attachment.
	m.Attributes = e.attributes(om, s, m.Attributes)
	return m, nil
}

// dispatch implements §4.11 step 3.
func (e *Extractor) dispatch(om *schemadoc.OrderedMap, s *scope.Scope) (Model, error) {
	typeVal, hasType := om.Get("type")

	if hasType {
		switch t := typeVal.(type) {
		case string:
			switch t {
			case "object":
				return e.extractObject(om, s)
			case "array":
				return e.extractArray(om, s)
			default:
				return e.extractPrimitive(om, t), nil
			}
		case []interface{}:
			simplified, nullable := simplifyMultiType(om, t)
			m, err := e.dispatch(simplified, s)
			if err != nil {
				return Model{}, err
			}
			if nullable {
				m.Attributes.Nullable = true
			}
			return m, nil
		}
	}

	if oneOf, ok := om.Get("oneOf"); ok {
		if branches, ok := oneOf.([]interface{}); ok {
			return e.extractComposite(om, s, branches, "oneOf", WrapperOneOf)
		}
	}
	if anyOf, ok := om.Get("anyOf"); ok {
		if branches, ok := anyOf.([]interface{}); ok {
			return e.extractComposite(om, s, branches, "anyOf", WrapperOneOf)
		}
	}
	if allOf, ok := om.Get("allOf"); ok {
		if branches, ok := allOf.([]interface{}); ok {
			return e.extractAllOf(om, s, branches)
		}
	}
	if pp, ok := om.Get("patternProperties"); ok {
		if ppMap, ok := schemadoc.ToOrderedMap(pp); ok {
			return e.extractPatternProperties(s, ppMap)
		}
	}
	if constVal, ok := om.Get("const"); ok {
		return e.extractConst(s, constVal), nil
	}
	if props, ok := om.Get("properties"); ok {
		if _, ok := schemadoc.ToOrderedMap(props); ok {
			return e.extractObject(om, s)
		}
	}
	if addl, ok := om.Get("additionalProperties"); ok {
		if addlMap, ok := schemadoc.ToOrderedMap(addl); ok {
			return e.extractMapFromSchema(s, addlMap)
		}
	}

	return Model{Kind: KindAny, Attributes: DefaultAttributes()}, nil
}

// simplifyMultiType implements §4.11.4 against a raw `type: [...]` array,
// returning a synthetic node dispatch can recurse into (either the same
// object with `type` replaced by the sole remaining scalar, or rewritten
// as a oneOf of single-typed clones) plus whether "null" was present.
func simplifyMultiType(om *schemadoc.OrderedMap, types []interface{}) (*schemadoc.OrderedMap, bool) {
	var rest []string
	nullable := false
	for _, t := range types {
		if ts, ok := t.(string); ok {
			if ts == "null" {
				nullable = true
				continue
			}
			rest = append(rest, ts)
		}
	}

	out := om.Clone()
	if len(rest) == 1 {
		out.Set("type", rest[0])
		return out, nullable
	}

	out.Delete("type")
	var branches []interface{}
	for _, t := range rest {
		branch := om.Clone()
		branch.Delete("type")
		branch.Set("type", t)
		branches = append(branches, branch)
	}
	out.Set("oneOf", branches)
	return out, nullable
}

func (e *Extractor) extractPrimitive(om *schemadoc.OrderedMap, scalar string) Model {
	name, _ := om.Get("title")
	n, _ := name.(string)
	return Model{
		Kind:       KindPrimitive,
		Primitive:  &Primitive{Name: n, Type: scalar},
		Attributes: DefaultAttributes(),
	}
}

func (e *Extractor) extractConst(s *scope.Scope, value interface{}) Model {
	name, err := s.Namer().Name()
	if err != nil {
		name = "Const"
	}
	return Model{
		Kind:       KindConst,
		Const:      &Const{Name: name, BaseType: scalarTypeOf(value), Literal: fmt.Sprintf("%v", value)},
		Attributes: DefaultAttributes(),
	}
}

func scalarTypeOf(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	default:
		return "string"
	}
}

// extractObject implements §4.11.1.
func (e *Extractor) extractObject(om *schemadoc.OrderedMap, s *scope.Scope) (Model, error) {
	required := map[string]bool{}
	if reqVal, ok := om.Get("required"); ok {
		if reqs, ok := reqVal.([]interface{}); ok {
			for _, r := range reqs {
				if rs, ok := r.(string); ok {
					required[rs] = true
				}
			}
		}
	}

	name, err := s.Namer().Name()
	if err != nil {
		return Model{}, err
	}

	var flatProps []FlatRef
	if propsVal, ok := om.Get("properties"); ok {
		if props, ok := schemadoc.ToOrderedMap(propsVal); ok {
			s.PushForm("properties")
			for _, key := range props.Keys() {
				propNode, _ := props.Get(key)
				s.PushProperty(key)
				sub, err := e.extractRef(propNode, s)
				if err != nil {
					s.Pop()
					s.Pop()
					return Model{}, err
				}
				flat := e.flatten(sub, s)
				flat.Name = key
				flat.Attributes.Required = required[key]

				if e.opts.OptionalAndNullableAsModels && !flat.Attributes.Required && flat.Attributes.Nullable {
					wrapper := Model{
						Kind: KindNullableOptionalWrapper,
						NullableOptionalWrapper: &NullableOptionalWrapper{
							Name:  name + scope.Convert(key) + "Optional",
							Inner: flat,
						},
						Attributes: DefaultAttributes(),
					}
					s.PushGlue("optional")
					idx := e.container.Add(s, wrapper)
					s.Pop()
					flat = FlatRef{
						Name:          key,
						TypeTag:       KindNullableOptionalWrapper,
						OriginalIndex: &idx,
						Attributes:    Attributes{Required: false, Nullable: false},
					}
				}

				flatProps = append(flatProps, flat)
				s.Pop()
			}
			s.Pop()
		}
	}

	additional := true
	if addlVal, ok := om.Get("additionalProperties"); ok {
		if b, ok := addlVal.(bool); ok {
			additional = b
		} else if _, ok := schemadoc.ToOrderedMap(addlVal); ok {
			additional = true
		}
	}

	return Model{
		Kind:       KindObject,
		Object:     &Object{Name: name, Properties: flatProps, AdditionalPropertiesAllowed: additional},
		Attributes: DefaultAttributes(),
	}, nil
}

// extractArray implements §4.11.2.
func (e *Extractor) extractArray(om *schemadoc.OrderedMap, s *scope.Scope) (Model, error) {
	itemsVal, ok := om.Get("items")
	if !ok {
		return Model{}, fmt.Errorf("model: array schema missing items at %s", s.Path())
	}
	if _, isArr := itemsVal.([]interface{}); isArr {
		return Model{}, fmt.Errorf("model: tuple-form items not supported at %s", s.Path())
	}

	s.PushForm("items")
	sub, err := e.extractRef(itemsVal, s)
	s.Pop()
	if err != nil {
		return Model{}, err
	}
	item := e.flatten(sub, s)

	var name string
	if titleVal, ok := om.Get("title"); ok {
		if t, ok := titleVal.(string); ok {
			name = scope.Convert(t)
		}
	}

	return Model{
		Kind:       KindArray,
		Array:      &Array{Name: name, Item: item},
		Attributes: Attributes{Required: true},
	}, nil
}

// extractMapFromSchema implements §4.11.8 (additionalProperties as schema).
func (e *Extractor) extractMapFromSchema(s *scope.Scope, valueSchema *schemadoc.OrderedMap) (Model, error) {
	s.PushForm("additionalProperties")
	sub, err := e.extractRef(valueSchema, s)
	s.Pop()
	if err != nil {
		return Model{}, err
	}
	value := e.flatten(sub, s)
	return Model{
		Kind:       KindMap,
		Map:        &MapModel{Value: value},
		Attributes: Attributes{Required: true},
	}, nil
}

// extractPatternProperties implements §4.11.7.
func (e *Extractor) extractPatternProperties(s *scope.Scope, pp *schemadoc.OrderedMap) (Model, error) {
	s.PushForm("patternProperties")
	defer s.Pop()

	var values []FlatRef
	for _, pattern := range pp.Keys() {
		branch, _ := pp.Get(pattern)
		s.PushProperty(pattern)
		sub, err := e.extractRef(branch, s)
		if err != nil {
			s.Pop()
			return Model{}, err
		}
		values = append(values, e.flatten(sub, s))
		s.Pop()
	}

	if len(values) == 0 {
		return Model{Kind: KindAny, Attributes: DefaultAttributes()}, nil
	}
	first := values[0]
	for _, v := range values[1:] {
		if v.TypeTag != first.TypeTag || !sameOriginal(v.OriginalIndex, first.OriginalIndex) {
			return Model{Kind: KindAny, Attributes: DefaultAttributes()}, nil
		}
	}
	return Model{Kind: KindMap, Map: &MapModel{Value: first}, Attributes: Attributes{Required: true}}, nil
}

func sameOriginal(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// extractAllOf implements §4.11.6.
func (e *Extractor) extractAllOf(om *schemadoc.OrderedMap, s *scope.Scope, branches []interface{}) (Model, error) {
	name, err := s.Namer().Name()
	if err != nil {
		name = "AllOf"
	}

	var variants []FlatRef
	s.PushForm("allOf")
	for i, branch := range branches {
		s.PushIndex(i)
		sub, err := e.extractRef(branch, s)
		if err != nil {
			s.Pop()
			s.Pop()
			return Model{}, err
		}
		flat := e.flatten(sub, s)
		flat.Name = fmt.Sprintf("Variant%d", i+1)
		variants = append(variants, flat)
		s.Pop()
	}
	s.Pop()

	return Model{
		Kind: KindWrapper,
		Wrapper: &Wrapper{
			Name:     name,
			Variants: variants,
			Kind:     WrapperAllOf,
			Strategy: Strategy{Kind: StrategyBruteForce},
		},
		Attributes: DefaultAttributes(),
	}, nil
}

// extractComposite implements §4.11.5 (oneOf/anyOf), including the
// nullable two-branch collapse and discriminator detection.
func (e *Extractor) extractComposite(om *schemadoc.OrderedMap, s *scope.Scope, branches []interface{}, formName string, kind WrapperKind) (Model, error) {
	if len(branches) == 2 {
		if nullIdx, otherIdx, ok := nullBranch(branches); ok {
			s.PushForm(formName)
			s.PushIndex(otherIdx)
			sub, err := e.extractRef(branches[otherIdx], s)
			s.Pop()
			s.Pop()
			if err != nil {
				return Model{}, err
			}
			_ = nullIdx
			sub.Attributes.Nullable = true
			return sub, nil
		}
	}

	var extractor anyoneof.Extractor
	if discVal, ok := om.Get("discriminator"); ok {
		if d, ok := anyoneof.NewDiscriminator(discVal); ok {
			extractor = d
		}
	}
	if extractor == nil {
		extractor = anyoneof.NewSimple()
	}

	branches = extractor.Preprocess(branches)

	name, err := s.Namer().Name()
	if err != nil {
		name = "Wrapper"
	}

	var variants []FlatRef
	s.PushForm(formName)
	for i, branch := range branches {
		s.PushIndex(i)
		sub, err := e.extractRef(branch, s)
		if err != nil {
			s.Pop()
			s.Pop()
			return Model{}, err
		}

		var properties []FlatRef
		if sub.Kind == KindObject {
			properties = sub.Object.Properties
			sub = sub.rename(sub.Object.Name + "Variant")
		}

		flat := e.flatten(sub, s)

		meta, filtered := extractor.Discriminate(branch, properties)
		if sub.Kind == KindObject && filtered != nil {
			sub.Object.Properties = filtered
		}
		if meta != nil {
			if flat.Attributes.Extensions == nil {
				flat.Attributes.Extensions = map[string]interface{}{}
			}
			flat.Attributes.Extensions["_discriminator"] = meta
		}

		flat.Name = fmt.Sprintf("Variant%d", i+1)
		variants = append(variants, flat)
		s.Pop()
	}
	s.Pop()

	return Model{
		Kind: KindWrapper,
		Wrapper: &Wrapper{
			Name:     name,
			Variants: variants,
			Kind:     kind,
			Strategy: extractor.Strategy(),
		},
		Attributes: DefaultAttributes(),
	}, nil
}

// nullBranch reports whether exactly one of a two-element oneOf/anyOf is a
// bare {"type": "null"}, returning (nullIndex, otherIndex, true) if so.
func nullBranch(branches []interface{}) (int, int, bool) {
	isNull := func(v interface{}) bool {
		om, ok := schemadoc.ToOrderedMap(v)
		if !ok {
			return false
		}
		t, ok := om.Get("type")
		if !ok {
			return false
		}
		ts, ok := t.(string)
		return ok && ts == "null" && om.Len() == 1
	}

	if isNull(branches[0]) && !isNull(branches[1]) {
		return 0, 1, true
	}
	if isNull(branches[1]) && !isNull(branches[0]) {
		return 1, 0, true
	}
	return 0, 0, false
}

// coerceEnum implements §4.11 step 4: if variants are all strings or all
// numbers, and m is a primitive, convert to Enum.
func coerceEnum(m Model, variants []interface{}) (Model, bool) {
	if m.Kind != KindPrimitive {
		return m, false
	}

	allStrings, allNumbers := true, true
	var strs []string
	for _, v := range variants {
		switch t := v.(type) {
		case string:
			allNumbers = false
			strs = append(strs, t)
		case float64, json.Number:
			allStrings = false
			strs = append(strs, fmt.Sprintf("%v", t))
		default:
			return m, false
		}
	}

	variantType := ""
	switch {
	case allStrings:
		variantType = "string"
	case allNumbers:
		variantType = "number"
	default:
		return m, false
	}

	return Model{
		Kind:       KindEnum,
		Enum:       &Enum{Name: m.Primitive.Name, VariantType: variantType, Variants: strs},
		Attributes: m.Attributes,
	}, true
}

// attributes implements §4.11 step 5 against the raw schema node om,
// merging into base (the model's attributes computed so far, e.g.
// nullable/required set during composite/array extraction).
func (e *Extractor) attributes(om *schemadoc.OrderedMap, s *scope.Scope, base Attributes) Attributes {
	facets := map[string]interface{}{}
	for _, f := range recognizedFacets {
		if v, ok := om.Get(f); ok {
			facets[f] = v
		}
	}

	// intern pattern/format into the container's shared tables per §4.11
	// step 5; pattern's facet value becomes the regex table index, format's
	// facet value is left as-is (the format table is a side accumulation,
	// not a reference).
	if pattern, ok := facets["pattern"].(string); ok {
		facets["pattern"] = e.container.UpsertRegexp(pattern)
	}
	if format, ok := facets["format"].(string); ok {
		e.container.UpsertFormat(format)
	}

	if len(facets) > 0 {
		base.ValidationFacets = facets
		if dv, ok := facets["default"]; ok {
			base.Default = dv
		}
	}

	if descVal, ok := om.Get("description"); ok {
		if d, ok := descVal.(string); ok {
			base.Description = &d
		}
	}

	if nullableVal, ok := om.Get("nullable"); ok {
		if n, ok := nullableVal.(bool); ok && n {
			base.Nullable = true
		}
	}

	extensions := map[string]interface{}{}
	for _, k := range om.Keys() {
		if strings.HasPrefix(k, "x-") {
			v, _ := om.Get(k)
			extensions[strings.TrimPrefix(k, "x-")] = v
		}
	}
	if len(extensions) > 0 {
		if base.Extensions == nil {
			base.Extensions = extensions
		} else {
			for k, v := range extensions {
				base.Extensions[k] = v
			}
		}
	}

	if e.opts.OriginalSchemaFilter != nil && e.opts.OriginalSchemaFilter(om) {
		base.OriginalSchema = om
	}

	return base
}

// flatten turns m into a FlatRef: container-owned kinds (Object, Enum,
// Const, Wrapper, NullableOptionalWrapper) are interned and referenced by
// index; everything else (Primitive, Array, Map, Any) is wrapped inline.
func (e *Extractor) flatten(m Model, s *scope.Scope) FlatRef {
	switch m.Kind {
	case KindObject, KindEnum, KindConst, KindWrapper, KindNullableOptionalWrapper:
		idx := e.container.Add(s, m)
		name, _ := m.Name()
		return FlatRef{
			Name:          name,
			TypeTag:       m.Kind,
			OriginalIndex: &idx,
			Attributes:    Attributes{Required: m.Attributes.Required, Nullable: m.Attributes.Nullable, IsReference: true},
		}

	case KindArray:
		return FlatRef{TypeTag: KindArray, Inner: &m.Array.Item, Attributes: m.Attributes}

	case KindMap:
		return FlatRef{TypeTag: KindMap, Inner: &m.Map.Value, Attributes: m.Attributes}

	case KindPrimitive:
		return FlatRef{Name: m.Primitive.Name, TypeTag: KindPrimitive, Scalar: m.Primitive.Type, Attributes: m.Attributes}

	default:
		return FlatRef{TypeTag: KindAny, Attributes: m.Attributes}
	}
}
