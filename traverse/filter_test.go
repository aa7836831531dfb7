package traverse

import (
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/kstasik/schema-tools/schemadoc"
)

func TestParseFilterEmptyMatchesEverything(t *testing.T) {
	f, err := ParseFilter("")
	assert.NoError(t, err)
	assert.True(t, f.Match(schemadoc.NewOrderedMap()))
}

func TestParseFilterEqualsAndNotEquals(t *testing.T) {
	f, err := ParseFilter("vendor=telnyx, type!=internal")
	assert.NoError(t, err)
	assert.Len(t, f.Conditions, 2)

	node := schemadoc.NewOrderedMap()
	node.Set("vendor", "telnyx")
	node.Set("type", "public")
	assert.True(t, f.Match(node))

	node.Set("type", "internal")
	assert.False(t, f.Match(node))
}

func TestParseFilterDoubleEquals(t *testing.T) {
	f, err := ParseFilter("vendor==telnyx")
	assert.NoError(t, err)
	node := schemadoc.NewOrderedMap()
	node.Set("vendor", "telnyx")
	assert.True(t, f.Match(node))
}

func TestParseFilterMalformedClauseErrors(t *testing.T) {
	_, err := ParseFilter("novalueoroperator")
	assert.Error(t, err)
}

func TestFilterMatchMissingFieldFailsEquals(t *testing.T) {
	f, err := ParseFilter("vendor=telnyx")
	assert.NoError(t, err)
	node := schemadoc.NewOrderedMap()
	assert.False(t, f.Match(node))
}
