package registry

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestParseMetaTypeAndFilename(t *testing.T) {
	meta, ok := ParseMeta("{# type=model, filename=model.rs #}\npub struct {{ name }} {}")
	assert.True(t, ok)
	assert.Equal(t, "model", meta.Type)
	assert.Equal(t, "model.rs", meta.Filename)
}

func TestParseMetaExtraKeys(t *testing.T) {
	meta, ok := ParseMeta("{# type=endpoint, filename=endpoint.rs, lang=rust #}\nbody")
	assert.True(t, ok)
	assert.Equal(t, "rust", meta.Extra["lang"])
}

func TestParseMetaMissingCommentReturnsFalse(t *testing.T) {
	_, ok := ParseMeta("pub struct Foo {}")
	assert.False(t, ok)
}
