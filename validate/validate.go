// Package validate implements C12: validating a loaded document against the
// bundled OpenAPI 3.0 meta-schema, or compiling an arbitrary JSON-Schema
// document to confirm it is itself well-formed. Grounded on
// original_source/src/validate/mod.rs (validate_openapi, validate_jsonschema).
package validate

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/schemaerr"
)

//go:embed resources/openapi-3.0-schema.json
var openapiMetaSchemaBytes []byte

// metaSchema is compiled once and reused across calls; the Rust original
// recompiles the bundled meta-schema per call, but gojsonschema.Schema is
// immutable and safe to share once compiled.
var metaSchema *gojsonschema.Schema

func compiledMetaSchema() (*gojsonschema.Schema, error) {
	if metaSchema != nil {
		return metaSchema, nil
	}
	loader := gojsonschema.NewBytesLoader(openapiMetaSchemaBytes)
	s, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("validate: compile bundled openapi meta-schema: %w", err)
	}
	metaSchema = s
	return s, nil
}

// ValidateOpenAPI checks body (the document's root node) against the
// bundled OpenAPI 3.0 meta-schema, returning schemaerr.ErrMetaValidation
// wrapping a *schemaerr.ValidationErrors listing every failure.
func ValidateOpenAPI(body interface{}, sourceURL string, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}

	schema, err := compiledMetaSchema()
	if err != nil {
		return err
	}

	raw, err := marshal(body)
	if err != nil {
		return fmt.Errorf("validate: encode document %q: %w", sourceURL, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate: run openapi validation against %q: %w", sourceURL, err)
	}
	if result.Valid() {
		return nil
	}

	errs := &schemaerr.ValidationErrors{}
	for _, e := range result.Errors() {
		log.WithField("source", sourceURL).Errorf("%s", e.String())
		errs.Errors = append(errs.Errors, e.String())
	}
	return fmt.Errorf("%w: %s: %w", schemaerr.ErrMetaValidation, sourceURL, errs)
}

// ValidateJSONSchema compiles body as a standalone JSON-Schema document,
// confirming it is itself well-formed (not validating any instance against
// it). Returns schemaerr.ErrMetaValidation on a compile failure.
func ValidateJSONSchema(body interface{}, sourceURL string) error {
	raw, err := marshal(body)
	if err != nil {
		return fmt.Errorf("validate: encode document %q: %w", sourceURL, err)
	}

	if _, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw)); err != nil {
		return fmt.Errorf("%w: %s: %v", schemaerr.ErrMetaValidation, sourceURL, err)
	}
	return nil
}

func marshal(body interface{}) ([]byte, error) {
	if om, ok := schemadoc.ToOrderedMap(body); ok {
		return json.Marshal(om)
	}
	return json.Marshal(body)
}
