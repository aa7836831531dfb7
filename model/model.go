// Package model implements C11: lowering a resolved JSON-Schema/OpenAPI
// document into the intermediate model graph (IMG) — a deduplicated,
// named, typed graph of primitives, objects, arrays, enums, constants,
// maps, and oneOf/anyOf/allOf wrappers ready for a template renderer.
//
// Grounded on
// original_source/crates/schematools/src/codegen/jsonschema/{types,mod,
// properties,oneof,anyoneof}.rs; the Go types here follow spec.md §3's
// data model rather than translating the Rust enum layout literally, since
// Go has no tagged union — Model carries a Kind discriminator plus the one
// pointer field that kind populates.
package model

import "github.com/kstasik/schema-tools/scope"

// Kind discriminates a Model/FlatRef's payload.
type Kind string

const (
	KindPrimitive               Kind = "primitive"
	KindObject                  Kind = "object"
	KindArray                   Kind = "array"
	KindEnum                    Kind = "enum"
	KindConst                   Kind = "const"
	KindMap                     Kind = "map"
	KindWrapper                 Kind = "wrapper"
	KindNullableOptionalWrapper Kind = "optional"
	KindAny                     Kind = "any"
)

// WrapperKind is allOf vs oneOf/anyOf.
type WrapperKind string

const (
	WrapperAllOf WrapperKind = "allOf"
	WrapperOneOf WrapperKind = "oneOf"
)

// StrategyKind is how a Wrapper's variants are told apart at decode time.
type StrategyKind string

const (
	StrategyBruteForce  StrategyKind = "bruteForce"
	StrategyInternally  StrategyKind = "internally"
	StrategyExternally  StrategyKind = "externally"
)

// Strategy is a Wrapper's discriminator strategy; Property is set only for
// StrategyInternally.
type Strategy struct {
	Kind     StrategyKind
	Property string
}

// Attributes is shared by every Model and FlatRef.
type Attributes struct {
	Description      *string
	Default          interface{}
	Nullable         bool
	Required         bool
	IsReference      bool
	ValidationFacets map[string]interface{}
	OriginalSchema   interface{}
	Extensions       map[string]interface{}
}

// DefaultAttributes mirrors the Rust original's Default impl: required
// defaults true (most contexts set it false explicitly when optional).
func DefaultAttributes() Attributes {
	return Attributes{Required: true}
}

// FlatRef is a lightweight reference into a ModelContainer, or an inline
// leaf when OriginalIndex is nil (the model was never worth interning,
// e.g. a bare primitive).
type FlatRef struct {
	Name    string
	TypeTag Kind
	// Scalar carries the JSON-Schema scalar type word ("string", "integer",
	// "number", "boolean") for an inline Primitive FlatRef; Primitive models
	// are never interned in a Container, so this is their only type carrier.
	Scalar        string
	Inner         *FlatRef
	Attributes    Attributes
	OriginalIndex *int
}

// Object is a JSON object with named, ordered properties.
type Object struct {
	Name                        string
	Properties                  []FlatRef
	AdditionalPropertiesAllowed bool
}

// Array is a homogeneous JSON array.
type Array struct {
	Name string
	Item FlatRef
}

// Primitive is a scalar JSON type.
type Primitive struct {
	Name string
	Type string
}

// Enum is a closed set of scalar literals.
type Enum struct {
	Name        string
	VariantType string
	Variants    []string
}

// Const is a single pinned literal.
type Const struct {
	Name     string
	BaseType string
	Literal  string
}

// MapModel is a homogeneous-valued dictionary (named Map in spec.md; Map is
// a predeclared Go identifier collision risk for nothing, but MapModel
// avoids shadowing the builtin in call sites that also handle map[string]...).
type MapModel struct {
	Name  string
	Value FlatRef
}

// Wrapper is an allOf/oneOf/anyOf composite.
type Wrapper struct {
	Name     string
	Variants []FlatRef
	Kind     WrapperKind
	Strategy Strategy
}

// NullableOptionalWrapper wraps a FlatRef that is both optional and
// nullable, when Options.OptionalAndNullableAsModels is set.
type NullableOptionalWrapper struct {
	Name  string
	Inner FlatRef
}

// Model is one IMG node. Kind says which of the pointer fields is set.
type Model struct {
	Kind Kind

	Primitive               *Primitive
	Object                  *Object
	Array                   *Array
	Enum                    *Enum
	Const                   *Const
	Map                     *MapModel
	Wrapper                 *Wrapper
	NullableOptionalWrapper *NullableOptionalWrapper

	Attributes Attributes
	Spaces     []scope.Space
}

// Name returns the model's own name, if its kind carries one.
func (m Model) Name() (string, bool) {
	switch m.Kind {
	case KindObject:
		return m.Object.Name, true
	case KindEnum:
		return m.Enum.Name, true
	case KindConst:
		return m.Const.Name, true
	case KindWrapper:
		return m.Wrapper.Name, true
	case KindNullableOptionalWrapper:
		return m.NullableOptionalWrapper.Name, true
	case KindPrimitive:
		return m.Primitive.Name, m.Primitive.Name != ""
	case KindArray:
		return m.Array.Name, m.Array.Name != ""
	case KindMap:
		return m.Map.Name, m.Map.Name != ""
	default:
		return "", false
	}
}

// rename returns a copy of m with its name field (if any) set to name.
func (m Model) rename(name string) Model {
	switch m.Kind {
	case KindObject:
		o := *m.Object
		o.Name = name
		m.Object = &o
	case KindEnum:
		e := *m.Enum
		e.Name = name
		m.Enum = &e
	case KindConst:
		c := *m.Const
		c.Name = name
		m.Const = &c
	case KindWrapper:
		w := *m.Wrapper
		w.Name = name
		m.Wrapper = &w
	case KindNullableOptionalWrapper:
		n := *m.NullableOptionalWrapper
		n.Name = name
		m.NullableOptionalWrapper = &n
	case KindPrimitive:
		p := *m.Primitive
		p.Name = name
		m.Primitive = &p
	case KindArray:
		a := *m.Array
		a.Name = name
		m.Array = &a
	case KindMap:
		mm := *m.Map
		mm.Name = name
		m.Map = &mm
	}
	return m
}
