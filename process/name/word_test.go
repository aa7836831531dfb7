package name

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestSingularize(t *testing.T) {
	cases := map[string]string{
		"statuses": "status",
		"buses":    "bus",
		"quizzes":  "quiz",
		"oxen":     "ox",
		"mice":     "mouse",
		"boxes":    "box",
		"movies":   "movie",
		"series":   "series",
		"parties":  "party",
		"knives":   "knife",
		"analyses": "analysis",
		"users":    "user",
		"groups":   "group",
	}
	for input, want := range cases {
		assert.Equal(t, want, Singularize(input), input)
	}
}

func TestPluralize(t *testing.T) {
	cases := map[string]string{
		"status": "statuses",
		"bus":    "buses",
		"quiz":   "quizzes",
		"ox":     "oxen",
		"mouse":  "mice",
		"box":    "boxes",
		"party":  "parties",
		"knife":  "knives",
		"user":   "users",
		"group":  "groups",
		"potato": "potatoes",
	}
	for input, want := range cases {
		assert.Equal(t, want, Pluralize(input), input)
	}
}

func TestIsPlural(t *testing.T) {
	assert.True(t, IsPlural("users"))
	assert.True(t, IsPlural("statuses"))
	assert.False(t, IsPlural("user"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "usergroups", Normalize("user-groups"))
	assert.Equal(t, "usergroups", Normalize("user_groups"))
	assert.Equal(t, "usergroups", Normalize("User Groups"))
}
