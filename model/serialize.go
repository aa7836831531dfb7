package model

import "encoding/json"

// MarshalJSON implements the §6 IMG serialization contract: a Model is
// tagged by its variant name (primitive|object|array|enum|const|any|
// wrapper|optional|map) alongside its attributes and, for Wrapper, its
// variant FlatRefs and discriminator strategy.
func (m Model) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"variant":    string(m.Kind),
		"attributes": marshalAttributes(m.Attributes),
	}
	if len(m.Spaces) > 0 {
		out["spaces"] = m.Spaces
	}

	switch m.Kind {
	case KindPrimitive:
		out["name"] = m.Primitive.Name
		out["type"] = m.Primitive.Type
	case KindObject:
		out["name"] = m.Object.Name
		out["properties"] = m.Object.Properties
		out["additionalPropertiesAllowed"] = m.Object.AdditionalPropertiesAllowed
	case KindArray:
		out["name"] = m.Array.Name
		out["item"] = m.Array.Item
	case KindEnum:
		out["name"] = m.Enum.Name
		out["type"] = m.Enum.VariantType
		out["variants"] = m.Enum.Variants
	case KindConst:
		out["name"] = m.Const.Name
		out["type"] = m.Const.BaseType
		out["value"] = m.Const.Literal
	case KindMap:
		out["name"] = m.Map.Name
		out["value"] = m.Map.Value
	case KindWrapper:
		out["name"] = m.Wrapper.Name
		out["kind"] = string(m.Wrapper.Kind)
		out["variants"] = m.Wrapper.Variants
		out["strategy"] = marshalStrategy(m.Wrapper.Strategy)
	case KindNullableOptionalWrapper:
		out["name"] = m.NullableOptionalWrapper.Name
		out["inner"] = m.NullableOptionalWrapper.Inner
	}

	return json.Marshal(out)
}

func marshalStrategy(s Strategy) map[string]interface{} {
	out := map[string]interface{}{"kind": string(s.Kind)}
	if s.Kind == StrategyInternally {
		out["property"] = s.Property
	}
	return out
}

// MarshalJSON implements the §6 FlatRef serialization contract:
// {name, type, model, required, nullable, validation, x, description,
// default}. "model" carries either an inline nested FlatRef (Array/Map
// Inner) or the interned container index (OriginalIndex), never both.
func (f FlatRef) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"name":     f.Name,
		"type":     string(f.TypeTag),
		"required": f.Attributes.Required,
		"nullable": f.Attributes.Nullable,
	}
	if f.Scalar != "" {
		out["scalar"] = f.Scalar
	}
	if f.Inner != nil {
		out["model"] = f.Inner
	} else if f.OriginalIndex != nil {
		out["model"] = *f.OriginalIndex
	}
	if f.Attributes.ValidationFacets != nil {
		out["validation"] = f.Attributes.ValidationFacets
	}
	if f.Attributes.Extensions != nil {
		out["x"] = f.Attributes.Extensions
	}
	if f.Attributes.Description != nil {
		out["description"] = *f.Attributes.Description
	}
	if f.Attributes.Default != nil {
		out["default"] = f.Attributes.Default
	}
	return json.Marshal(out)
}

func marshalAttributes(a Attributes) map[string]interface{} {
	out := map[string]interface{}{
		"required":    a.Required,
		"nullable":    a.Nullable,
		"isReference": a.IsReference,
	}
	if a.Description != nil {
		out["description"] = *a.Description
	}
	if a.Default != nil {
		out["default"] = a.Default
	}
	if a.ValidationFacets != nil {
		out["validation"] = a.ValidationFacets
	}
	if a.Extensions != nil {
		out["x"] = a.Extensions
	}
	return out
}

// MarshalJSON implements the §6 container serialization contract:
// { regexps: [...], formats: [...], models: [...] }.
func (c *Container) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"regexps": c.Regexps,
		"formats": c.Formats,
		"models":  c.Models,
	}
	if out["regexps"] == nil {
		out["regexps"] = []string{}
	}
	if out["formats"] == nil {
		out["formats"] = []string{}
	}
	if out["models"] == nil {
		out["models"] = []Model{}
	}
	return json.Marshal(out)
}
