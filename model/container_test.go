package model

import (
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/kstasik/schema-tools/scope"
)

func enumModel(name string) Model {
	return Model{
		Kind: KindEnum,
		Enum: &Enum{
			Name:        name,
			VariantType: "string",
			Variants:    []string{"a", "b"},
		},
		Attributes: DefaultAttributes(),
	}
}

func TestContainerAddIdempotentByPath(t *testing.T) {
	c := NewContainer(nil)
	s := scope.New()
	s.PushEntity("Status")

	idx1 := c.Add(s, enumModel("Status"))
	idx2 := c.Add(s, enumModel("Status"))

	assert.Equal(t, idx1, idx2)
	assert.Len(t, c.Models, 1)
}

func TestContainerAddIdempotentByContent(t *testing.T) {
	c := NewContainer(nil)

	s1 := scope.New()
	s1.PushEntity("Status")
	idx1 := c.Add(s1, enumModel("Status"))

	s2 := scope.New()
	s2.PushEntity("OrderStatus")
	idx2 := c.Add(s2, enumModel("Status"))

	assert.Equal(t, idx1, idx2, "same structural content should intern to the same model")
	assert.Len(t, c.Models, 1)
}

func TestContainerAddCollisionSuffix(t *testing.T) {
	c := NewContainer(nil)

	s1 := scope.New()
	s1.PushEntity("Status")
	idx1 := c.Add(s1, enumModel("Status"))

	s2 := scope.New()
	s2.PushEntity("OtherStatus")
	different := Model{
		Kind: KindEnum,
		Enum: &Enum{
			Name:        "Status",
			VariantType: "string",
			Variants:    []string{"x", "y", "z"},
		},
		Attributes: DefaultAttributes(),
	}
	idx2 := c.Add(s2, different)

	assert.NotEqual(t, idx1, idx2)
	assert.Len(t, c.Models, 2)
	name2, _ := c.Models[idx2].Name()
	assert.Equal(t, "Status2", name2)
}

func TestContainerUpsertRegexpAndFormat(t *testing.T) {
	c := NewContainer(nil)
	i1 := c.UpsertRegexp(`^[a-z]+$`)
	i2 := c.UpsertRegexp(`^[a-z]+$`)
	i3 := c.UpsertRegexp(`^[0-9]+$`)
	assert.Equal(t, i1, i2)
	assert.NotEqual(t, i1, i3)
	assert.Equal(t, []string{`^[a-z]+$`, `^[0-9]+$`}, c.Regexps)

	f1 := c.UpsertFormat("date-time")
	f2 := c.UpsertFormat("date-time")
	assert.Equal(t, f1, f2)
}
