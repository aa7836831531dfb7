// Package schemadoc implements the schema document model, its loader (§6
// external interface: URL composition and body parsing), and the
// order-preserving JSON value representation every other package walks.
package schemadoc

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/kstasik/schema-tools/schemaerr"
)

// Document is a named JSON tree identified by an absolute URL, with a fully
// loaded body. Once it has passed through Storage's closure (C3), the
// invariant holds that every $ref string in Body is an absolute URL with an
// optional fragment.
type Document struct {
	URL  *url.URL
	Body interface{}
}

// GetBody returns the document's root value.
func (d *Document) GetBody() interface{} { return d.Body }

// FromValue wraps an already-decoded value as a root document at url.
func FromValue(u *url.URL, body interface{}) *Document {
	return &Document{URL: u, Body: body}
}

// LoadBytes parses raw bytes into a Document according to the §6 body
// parsing rule: YAML if contentType contains "yaml" or the URL's path
// extension contains "yaml"; JSON otherwise. A multi-document YAML stream
// becomes a JSON array; a single-document stream becomes that document.
func LoadBytes(u *url.URL, data []byte, contentType string) (*Document, error) {
	useYAML := strings.Contains(strings.ToLower(contentType), "yaml")
	if u != nil {
		p := strings.ToLower(u.Path)
		ext := ""
		if i := strings.LastIndexAny(p, "./"); i >= 0 && p[i] == '.' {
			ext = p[i:]
		}
		if strings.Contains(ext, "yaml") {
			useYAML = true
		}
	}
	// .yml is a common alias for .yaml and should be treated the same way.
	if u != nil && (strings.HasSuffix(strings.ToLower(u.Path), ".yml")) {
		useYAML = true
	}

	if useYAML {
		body, err := decodeYAMLStream(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", schemaerr.ErrSchemaLoadIncorrectType, err)
		}
		return &Document{URL: u, Body: body}, nil
	}

	body, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemaerr.ErrSchemaLoadIncorrectType, err)
	}
	return &Document{URL: u, Body: body}, nil
}

// decodeYAMLStream decodes every document in a YAML stream. A single
// document is returned as-is (converted to the OrderedMap/[]interface{}
// representation); more than one becomes a JSON array of documents.
func decodeYAMLStream(data []byte) (interface{}, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []interface{}
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		v, err := yamlNodeToValue(&node)
		if err != nil {
			return nil, err
		}
		docs = append(docs, v)
	}

	switch len(docs) {
	case 0:
		return NewOrderedMap(), nil
	case 1:
		return docs[0], nil
	default:
		return docs, nil
	}
}

// yamlNodeToValue converts a decoded yaml.Node into the OrderedMap/
// []interface{}/scalar representation, preserving mapping key order the
// same way JSON objects are preserved.
func yamlNodeToValue(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return NewOrderedMap(), nil
		}
		return yamlNodeToValue(node.Content[0])
	case yaml.MappingNode:
		om := NewOrderedMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			val, err := yamlNodeToValue(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			om.Set(key, val)
		}
		return om, nil
	case yaml.SequenceNode:
		arr := make([]interface{}, 0, len(node.Content))
		for _, c := range node.Content {
			v, err := yamlNodeToValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		var v interface{}
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case yaml.AliasNode:
		return yamlNodeToValue(node.Alias)
	default:
		return nil, fmt.Errorf("schemadoc: unsupported yaml node kind %v", node.Kind)
	}
}

// LoadFile loads a document from a local file:// URL.
func LoadFile(u *url.URL, log logrus.FieldLogger) (*Document, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	path := u.Path
	data, err := os.ReadFile(path)
	if err != nil {
		log.WithField("url", u.String()).Warn("schemadoc: could not read file")
		return nil, fmt.Errorf("%w: %v", schemaerr.ErrSchemaUnreachable, err)
	}
	return LoadBytes(u, data, "")
}

// RelToAbsoluteRefs rewrites every relative $ref inside body against base
// before the storage closure algorithm (C3) begins. Recovered from
// original_source/process/mod.rs; see SPEC_FULL.md §4.1.
func RelToAbsoluteRefs(base *url.URL, body interface{}) error {
	return walkRefs(base, body)
}

func walkRefs(base *url.URL, v interface{}) error {
	switch t := v.(type) {
	case *OrderedMap:
		if ref, ok := t.Get("$ref"); ok {
			if s, ok := ref.(string); ok {
				u, err := RefToURL(base, s)
				if err != nil {
					return fmt.Errorf("%w: %v", schemaerr.ErrInvalidReference, err)
				}
				t.Set("$ref", u.String())
			}
		}
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			if err := walkRefs(base, val); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, e := range t {
			if err := walkRefs(base, e); err != nil {
				return err
			}
		}
	}
	return nil
}
