package traverse

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestParseArgumentsPlainStrings(t *testing.T) {
	args := ParseArguments([]string{"name=pet", "color=red"})
	assert.Equal(t, "pet", args["name"])
	assert.Equal(t, "red", args["color"])
}

func TestParseArgumentsJSONLiterals(t *testing.T) {
	args := ParseArguments([]string{"active=~true", "count=~42", "tag=~null", "label=~\"quoted\""})
	assert.Equal(t, true, args["active"])
	assert.Equal(t, float64(42), args["count"])
	assert.Nil(t, args["tag"])
	assert.Equal(t, "quoted", args["label"])
}

func TestParseArgumentsSkipsMalformed(t *testing.T) {
	args := ParseArguments([]string{"novalue"})
	assert.Empty(t, args)
}

func TestFillParameters(t *testing.T) {
	args := ParseArguments([]string{"id=123"})
	result := FillParameters("/users/{id}/groups", args)
	assert.Equal(t, "/users/123/groups", result)
}
