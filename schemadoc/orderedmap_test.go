package schemadoc

import (
	"encoding/json"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestOrderedMapPreservesInsertionOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", 1)
	m.Set("a", 2)
	m.Set("m", 3)
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys())

	m.Set("a", 99)
	assert.Equal(t, []string{"z", "a", "m"}, m.Keys(), "overwrite keeps original position")
	v, _ := m.Get("a")
	assert.Equal(t, 99, v)
}

func TestOrderedMapDelete(t *testing.T) {
	m := NewOrderedMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Delete("b")

	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.False(t, m.Has("b"))
	v, ok := m.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestOrderedMapMarshalPreservesOrder(t *testing.T) {
	m := NewOrderedMap()
	m.Set("z", 1)
	m.Set("a", 2)

	b, err := json.Marshal(m)
	assert.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":2}`, string(b))
}

func TestUnmarshalPreservesObjectOrderAndTypes(t *testing.T) {
	v, err := Unmarshal([]byte(`{"b":1,"a":"two","c":[1,2,3],"d":null}`))
	assert.NoError(t, err)

	om, ok := ToOrderedMap(v)
	assert.True(t, ok)
	assert.Equal(t, []string{"b", "a", "c", "d"}, om.Keys())

	arr, ok := om.Get("c")
	assert.True(t, ok)
	assert.Len(t, arr.([]interface{}), 3)
}

func TestUnmarshalEmptyArrayNotNil(t *testing.T) {
	v, err := Unmarshal([]byte(`{"tags":[]}`))
	assert.NoError(t, err)
	om, _ := ToOrderedMap(v)
	arr, ok := om.Get("tags")
	assert.True(t, ok)
	assert.NotNil(t, arr)
	assert.Len(t, arr.([]interface{}), 0)
}

func TestOrderedMapClone(t *testing.T) {
	nested := NewOrderedMap()
	nested.Set("x", 1)
	m := NewOrderedMap()
	m.Set("nested", nested)

	clone := m.Clone()
	nestedClone, _ := clone.Get("nested")
	nestedClone.(*OrderedMap).Set("x", 2)

	original, _ := nested.Get("x")
	assert.Equal(t, 1, original, "mutating the clone must not affect the original")
}

func TestToOrderedMapRejectsNonObject(t *testing.T) {
	_, ok := ToOrderedMap("not an object")
	assert.False(t, ok)
}
