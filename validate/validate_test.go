package validate

import (
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/kstasik/schema-tools/schemadoc"
)

func unmarshalDoc(t *testing.T, raw string) interface{} {
	t.Helper()
	v, err := schemadoc.Unmarshal([]byte(raw))
	assert.NoError(t, err)
	return v
}

func TestValidateOpenAPIAcceptsMinimalDocument(t *testing.T) {
	body := unmarshalDoc(t, `{
		"openapi": "3.0.0",
		"info": {"title": "Pets", "version": "1.0.0"},
		"paths": {}
	}`)
	err := ValidateOpenAPI(body, "test.json", nil)
	assert.NoError(t, err)
}

func TestValidateOpenAPIRejectsMissingRequired(t *testing.T) {
	body := unmarshalDoc(t, `{"info": {"title": "Pets", "version": "1.0.0"}}`)
	err := ValidateOpenAPI(body, "test.json", nil)
	assert.Error(t, err)
}

func TestValidateJSONSchemaAcceptsWellFormed(t *testing.T) {
	body := unmarshalDoc(t, `{"type": "object", "properties": {"name": {"type": "string"}}}`)
	err := ValidateJSONSchema(body, "test.json")
	assert.NoError(t, err)
}
