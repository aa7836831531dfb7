package anyoneof

import (
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/kstasik/schema-tools/model"
	"github.com/kstasik/schema-tools/schemadoc"
)

func flatProp(name string, kind model.Kind) model.FlatRef {
	return model.FlatRef{Name: name, TypeTag: kind}
}

func TestSimpleExternalTag(t *testing.T) {
	s := NewSimple()
	meta, props := s.Discriminate(nil, []model.FlatRef{flatProp("cat", model.KindObject)})
	assert.NotNil(t, meta)
	assert.Equal(t, "cat", meta.Property)
	assert.Len(t, props, 1)
	assert.Equal(t, model.Strategy{Kind: model.StrategyExternally}, s.Strategy())
}

func TestSimpleInternalTag(t *testing.T) {
	s := NewSimple()
	props := []model.FlatRef{flatProp("type", model.KindConst), flatProp("name", model.KindPrimitive)}
	meta, kept := s.Discriminate(nil, props)
	assert.NotNil(t, meta)
	assert.Equal(t, "type", meta.Property)
	assert.Len(t, kept, 2)
	assert.Equal(t, model.Strategy{Kind: model.StrategyInternally, Property: "type"}, s.Strategy())
}

func TestSimpleMixedFallsBackToBruteForce(t *testing.T) {
	s := NewSimple()
	s.Discriminate(nil, []model.FlatRef{flatProp("cat", model.KindObject)})
	s.Discriminate(nil, []model.FlatRef{flatProp("name", model.KindPrimitive), flatProp("age", model.KindPrimitive)})
	assert.Equal(t, model.Strategy{Kind: model.StrategyBruteForce}, s.Strategy())
}

func TestSimpleNoVariantsDefaultsBruteForce(t *testing.T) {
	s := NewSimple()
	assert.Equal(t, model.Strategy{Kind: model.StrategyBruteForce}, s.Strategy())
}

func TestNewDiscriminatorRequiresPropertyName(t *testing.T) {
	m := schemadoc.NewOrderedMap()
	_, ok := NewDiscriminator(m)
	assert.False(t, ok)

	m.Set("propertyName", "petType")
	d, ok := NewDiscriminator(m)
	assert.True(t, ok)
	assert.Equal(t, model.Strategy{Kind: model.StrategyInternally, Property: "petType"}, d.Strategy())
}

func TestDiscriminatorPreprocessAndDiscriminate(t *testing.T) {
	mapping := schemadoc.NewOrderedMap()
	mapping.Set("dog", "#/components/schemas/Dog")
	mapping.Set("cat", "#/components/schemas/Cat")
	root := schemadoc.NewOrderedMap()
	root.Set("propertyName", "petType")
	root.Set("mapping", mapping)

	d, ok := NewDiscriminator(root)
	assert.True(t, ok)

	ref := schemadoc.NewOrderedMap()
	ref.Set("$ref", "#/components/schemas/Dog")

	expanded := d.Preprocess([]interface{}{ref})
	assert.Len(t, expanded, 1)

	meta, _ := d.Discriminate(ref, []model.FlatRef{flatProp("petType", model.KindConst)})
	assert.NotNil(t, meta)
	assert.Equal(t, "dog", meta.ValueName)
	assert.Equal(t, "petType", meta.Property)

	meta2, _ := d.Discriminate(ref, nil)
	assert.Nil(t, meta2, "the single mapping entry for Dog was already consumed")
}
