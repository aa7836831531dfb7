package dereference

import (
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	assert "github.com/stretchr/testify/require"

	"github.com/kstasik/schema-tools/resolver"
	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/schemaerr"
)

// fakeFetcher satisfies schemadoc.Fetcher for a single canned remote URL,
// used only by the skip-hosts test so storage's load closure can succeed
// without a real network call.
type fakeFetcher struct{}

func (fakeFetcher) Fetch(u *url.URL) ([]byte, string, error) {
	return []byte(`{"definitions":{"moduleType":{"type":"object"}}}`), "", nil
}

// loadTestDocument writes files (name -> raw JSON) to a temp directory and
// loads root through the same Storage/Resolver wiring cmd/schematools uses,
// mirroring the original's spec_from_file test fixtures.
func loadTestDocument(t *testing.T, files map[string]string, root string) (*schemadoc.Document, *resolver.Resolver) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	rootURL, err := schemadoc.PathToURL(filepath.Join(dir, root))
	assert.NoError(t, err)

	storage := schemadoc.NewStorage(fakeFetcher{}, nil)
	assert.NoError(t, storage.LoadRoots([]*url.URL{rootURL}))

	doc, ok := storage.Get(rootURL)
	assert.True(t, ok)

	return doc, resolver.New(storage, rootURL, nil)
}

func asJSON(t *testing.T, v interface{}) interface{} {
	t.Helper()
	raw, err := json.Marshal(v)
	assert.NoError(t, err)
	var out interface{}
	assert.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// Grounded on test_simple_with_reference (02-simple-with-reference.json): a
// $ref pointing at a sibling "definitions" entry in the same document is
// inlined in place.
func TestDereferenceInlinesLocalDefinition(t *testing.T) {
	doc, r := loadTestDocument(t, map[string]string{
		"root.json": `{
			"$id": "https://example.com/arrays.schema.json",
			"type": "object",
			"properties": {
				"vegetables": {
					"type": "array",
					"items": { "$ref": "#/definitions/veggie" }
				}
			},
			"definitions": {
				"veggie": {
					"type": "object",
					"required": ["veggieName", "veggieLike"],
					"properties": {
						"veggieName": { "type": "string" },
						"veggieLike": { "type": "boolean" }
					}
				}
			}
		}`,
	}, "root.json")

	d := New(r, doc, Options{}, nil)
	assert.NoError(t, d.Run(doc))

	expected := asJSON(t, mustUnmarshal(t, `{
		"$id": "https://example.com/arrays.schema.json",
		"type": "object",
		"properties": {
			"vegetables": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["veggieName", "veggieLike"],
					"properties": {
						"veggieName": { "type": "string" },
						"veggieLike": { "type": "boolean" }
					}
				}
			}
		},
		"definitions": {
			"veggie": {
				"type": "object",
				"required": ["veggieName", "veggieLike"],
				"properties": {
					"veggieName": { "type": "string" },
					"veggieLike": { "type": "boolean" }
				}
			}
		}
	}`))

	assert.Equal(t, expected, asJSON(t, doc.Body))
}

// Grounded on test_with_local_reference (06-with-local-reference.json): when
// a $ref target carries its own $id/title, the merge keeps the resolved
// node's keys and only adds the referencing node's sibling keys when the
// resolved node doesn't already set them.
func TestDereferenceExternalReferenceMergesSiblingKeys(t *testing.T) {
	doc, r := loadTestDocument(t, map[string]string{
		"root.json": `{
			"$id": "https://example.com/arrays.schema.json",
			"description": "A representation of a person",
			"type": "object",
			"properties": {
				"person": { "$ref": "./person.schema.json", "title": "Owner", "description": "The person" }
			}
		}`,
		"person.schema.json": `{
			"$id": "https://example.com/person.schema.json",
			"title": "Person",
			"type": "object",
			"properties": {
				"firstName": { "type": "string" }
			}
		}`,
	}, "root.json")

	d := New(r, doc, Options{}, nil)
	assert.NoError(t, d.Run(doc))

	expected := asJSON(t, mustUnmarshal(t, `{
		"$id": "https://example.com/arrays.schema.json",
		"description": "A representation of a person",
		"type": "object",
		"properties": {
			"person": {
				"$id": "https://example.com/person.schema.json",
				"title": "Person",
				"type": "object",
				"properties": {
					"firstName": { "type": "string" }
				},
				"description": "The person"
			}
		}
	}`))

	assert.Equal(t, expected, asJSON(t, doc.Body))
}

// Grounded on test_create_internal_references (20-local-reference.json):
// with SkipRootInternal set, every $ref that targets the root document
// itself is left completely intact, regardless of nesting depth, since
// depth only advances across an actual followed reference.
func TestDereferenceSkipRootInternalLeavesSelfRefsIntact(t *testing.T) {
	doc, r := loadTestDocument(t, map[string]string{
		"root.json": `{
			"$id": "https://example.com/arrays.schema.json",
			"type": "object",
			"$defs": {
				"aaa": { "type": "string", "format": "decimal" },
				"optionalAaa": {
					"oneOf": [
						{ "type": "null" },
						{ "$ref": "#/$defs/aaa" }
					]
				}
			},
			"properties": {
				"type": { "$ref": "#/$defs/optionalAaa" },
				"nested": {
					"type": "object",
					"properties": {
						"ooo": { "$ref": "#/$defs/aaa" }
					}
				}
			}
		}`,
	}, "root.json")

	original := asJSON(t, doc.Body)

	d := New(r, doc, Options{SkipRootInternal: true, CreateInternalRefs: true}, nil)
	assert.NoError(t, d.Run(doc))

	assert.Equal(t, original, asJSON(t, doc.Body))
}

// Validates the review fix to CreateInternalRefs: the first-occurrence scope
// path must be captured before the Reference segment is pushed (otherwise
// Scope.Path's identity-terminator rule returns the escaped ref URL instead
// of the enclosing pointer), and the stored path needs a leading "/" so the
// emitted back-reference is a valid JSON pointer like "#/properties/first"
// rather than "#<escaped-ref-url>". Testable property 3 (§8).
func TestDereferenceCreateInternalRefsBackReferencesRepeatedExternalTarget(t *testing.T) {
	doc, r := loadTestDocument(t, map[string]string{
		"root.json": `{
			"$id": "https://example.com/main.schema.json",
			"type": "object",
			"properties": {
				"first": { "$ref": "./external.json#/defs/thing" },
				"second": { "$ref": "./external.json#/defs/thing" }
			}
		}`,
		"external.json": `{
			"defs": {
				"thing": { "type": "string", "description": "shared thing" }
			}
		}`,
	}, "root.json")

	d := New(r, doc, Options{CreateInternalRefs: true}, nil)
	assert.NoError(t, d.Run(doc))

	expected := asJSON(t, mustUnmarshal(t, `{
		"$id": "https://example.com/main.schema.json",
		"type": "object",
		"properties": {
			"first": { "type": "string", "description": "shared thing" },
			"second": { "$ref": "#/properties/first" }
		}
	}`))

	assert.Equal(t, expected, asJSON(t, doc.Body))
}

// Testable property 1: dereferencing an already-dereferenced document (no
// $ref nodes remain) is a no-op.
func TestDereferenceIdempotentOnAlreadyDereferencedDocument(t *testing.T) {
	doc, r := loadTestDocument(t, map[string]string{
		"root.json": `{
			"type": "object",
			"properties": {
				"vegetables": {
					"type": "array",
					"items": { "$ref": "#/definitions/veggie" }
				}
			},
			"definitions": {
				"veggie": { "type": "object" }
			}
		}`,
	}, "root.json")

	d := New(r, doc, Options{}, nil)
	assert.NoError(t, d.Run(doc))
	once := asJSON(t, doc.Body)

	d2 := New(r, doc, Options{}, nil)
	assert.NoError(t, d2.Run(doc))
	twice := asJSON(t, doc.Body)

	assert.Equal(t, once, twice)
}

// Grounded on test_infinite_ref (07-with-infinite-ref.json): a reference
// chain that never bottoms out is a fatal ErrCycleOverflow past maxDepth,
// not a silently-recovered condition.
func TestDereferenceCycleExceedsMaxDepthReturnsError(t *testing.T) {
	doc, r := loadTestDocument(t, map[string]string{
		"loopA.json": `{ "$ref": "./loopB.json" }`,
		"loopB.json": `{ "$ref": "./loopA.json" }`,
	}, "loopA.json")

	d := New(r, doc, Options{}, nil)
	err := d.Run(doc)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, schemaerr.ErrCycleOverflow))
}

// Grounded on test_skip_references (05-with-nested-remote-external-ref.json
// + SkipHosts): a $ref whose target host matches SkipHosts is left intact
// even though storage has already loaded and cached that host's document.
func TestDereferenceSkipHostsLeavesMatchingRefIntact(t *testing.T) {
	doc, r := loadTestDocument(t, map[string]string{
		"root.json": `{
			"type": "object",
			"properties": {
				"contexts": {
					"type": "array",
					"items": { "$ref": "https://json.schemastore.org/azure-iot-edge-deployment-template-2.0#/definitions/moduleType" }
				}
			}
		}`,
	}, "root.json")

	d := New(r, doc, Options{SkipHosts: []string{"json.schemastore.org"}}, nil)
	assert.NoError(t, d.Run(doc))

	expected := asJSON(t, mustUnmarshal(t, `{
		"type": "object",
		"properties": {
			"contexts": {
				"type": "array",
				"items": { "$ref": "https://json.schemastore.org/azure-iot-edge-deployment-template-2.0#/definitions/moduleType" }
			}
		}
	}`))

	assert.Equal(t, expected, asJSON(t, doc.Body))
}

func mustUnmarshal(t *testing.T, raw string) interface{} {
	t.Helper()
	v, err := schemadoc.Unmarshal([]byte(raw))
	assert.NoError(t, err)
	return v
}
