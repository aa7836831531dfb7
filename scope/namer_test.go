package scope

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	assert.Equal(t, "UserGroup", Convert("user_group"))
	assert.Equal(t, "UserGroup", Convert("user-group"))
	assert.Equal(t, "UserGroup", Convert("User Group"))
	assert.Equal(t, "Foo", Convert("foo"))
}

func TestNamerEntity(t *testing.T) {
	s := New()
	s.PushEntity("user")
	name, err := s.Namer().Name()
	assert.NoError(t, err)
	assert.Equal(t, "User", name)
}

func TestNamerProperty(t *testing.T) {
	s := New()
	s.PushEntity("user")
	s.PushForm("properties")
	s.PushProperty("group")
	name, err := s.Namer().Name()
	assert.NoError(t, err)
	assert.Equal(t, "UserGroup", name)
}

func TestNamerOneOfOption(t *testing.T) {
	s := New()
	s.PushEntity("pet")
	s.PushForm("oneOf")
	s.PushIndex(0)
	s.PushEntity("pet")
	name, err := s.Namer().Name()
	assert.NoError(t, err)
	assert.Equal(t, "PetOption1", name)
}

func TestNamerAllOfPartial(t *testing.T) {
	s := New()
	s.PushEntity("pet")
	s.PushForm("allOf")
	s.PushIndex(1)
	s.PushEntity("pet")
	name, err := s.Namer().Name()
	assert.NoError(t, err)
	assert.Equal(t, "PetPartial2", name)
}

func TestNamerEmptyErrors(t *testing.T) {
	s := New()
	_, err := s.Namer().Name()
	assert.Error(t, err)
}

func TestNamerDecorate(t *testing.T) {
	s := New()
	s.PushEntity("pet")
	name, err := s.Namer().Decorate("variant")
	assert.NoError(t, err)
	assert.Equal(t, "PetVariant", name)
}

func TestScopePath(t *testing.T) {
	s := New()
	s.PushEntity("pet")
	s.PushForm("properties")
	s.PushProperty("name")
	assert.Equal(t, "pet/properties/name", s.Path())
}

func TestScopePathReferenceTerminator(t *testing.T) {
	s := New()
	s.PushEntity("pet")
	s.PushReference("#/definitions/Pet")
	s.PushProperty("name")
	assert.Equal(t, "#~1definitions~1Pet/name", s.Path())
}

func TestScopeRecurse(t *testing.T) {
	s := New()
	s.PushReference("#/definitions/Pet")
	assert.False(t, s.Recurse())
	s.PushProperty("owner")
	s.PushReference("#/definitions/Pet")
	assert.True(t, s.Recurse())
}

func TestScopeIsAmbiguous(t *testing.T) {
	s := New()
	s.PushForm("oneOf")
	s.PushIndex(0)
	assert.True(t, s.IsAmbiguous())

	s2 := New()
	s2.PushForm("properties")
	s2.PushProperty("name")
	assert.False(t, s2.IsAmbiguous())
}
