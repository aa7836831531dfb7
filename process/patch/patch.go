// Package patch implements C9: creating an RFC-6902 diff patch, applying a
// patch, or applying a single inline operation to a document body.
package patch

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/schemaerr"
)

// Operation is one RFC-6902 patch entry.
type Operation struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value,omitempty"`
}

// Diff produces the RFC-6902 patch that transforms original into modified.
// evanphx/json-patch (this repo's grounded Apply dependency) only creates
// RFC-7396 merge patches, not RFC-6902 diffs, so the diff walk itself is a
// small bespoke tree comparison — see DESIGN.md.
func Diff(original, modified interface{}) []Operation {
	var ops []Operation
	diffValue("", original, modified, &ops)
	return ops
}

func diffValue(path string, a, b interface{}, ops *[]Operation) {
	aMap, aOK := schemadoc.ToOrderedMap(a)
	bMap, bOK := schemadoc.ToOrderedMap(b)
	if aOK && bOK {
		diffObject(path, aMap, bMap, ops)
		return
	}

	aArr, aArrOK := a.([]interface{})
	bArr, bArrOK := b.([]interface{})
	if aArrOK && bArrOK {
		diffArray(path, aArr, bArr, ops)
		return
	}

	if !equalJSON(a, b) {
		*ops = append(*ops, Operation{Op: "replace", Path: path, Value: b})
	}
}

func diffObject(path string, a, b *schemadoc.OrderedMap, ops *[]Operation) {
	for _, k := range a.Keys() {
		av, _ := a.Get(k)
		if bv, ok := b.Get(k); ok {
			diffValue(path+"/"+escapeToken(k), av, bv, ops)
		} else {
			*ops = append(*ops, Operation{Op: "remove", Path: path + "/" + escapeToken(k)})
		}
	}
	for _, k := range b.Keys() {
		if !a.Has(k) {
			bv, _ := b.Get(k)
			*ops = append(*ops, Operation{Op: "add", Path: path + "/" + escapeToken(k), Value: bv})
		}
	}
}

func diffArray(path string, a, b []interface{}, ops *[]Operation) {
	// Index-wise replace/add/remove; sufficient for schema bodies, which
	// rarely reorder array elements without changing their content.
	for i := 0; i < len(a) && i < len(b); i++ {
		diffValue(fmt.Sprintf("%s/%d", path, i), a[i], b[i], ops)
	}
	for i := len(a); i < len(b); i++ {
		*ops = append(*ops, Operation{Op: "add", Path: fmt.Sprintf("%s/%d", path, i), Value: b[i]})
	}
	for i := len(a) - 1; i >= len(b); i-- {
		*ops = append(*ops, Operation{Op: "remove", Path: fmt.Sprintf("%s/%d", path, i)})
	}
}

func escapeToken(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '~':
			out = append(out, '~', '0')
		case '/':
			out = append(out, '~', '1')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

func equalJSON(a, b interface{}) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab) == string(bb)
}

// Apply applies ops to body and returns the resulting decoded value.
func Apply(body interface{}, ops []Operation) (interface{}, error) {
	docBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemaerr.ErrJSONPatch, err)
	}
	patchBytes, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemaerr.ErrJSONPatch, err)
	}

	p, err := jsonpatch.DecodePatch(patchBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemaerr.ErrJSONPatch, err)
	}
	result, err := p.Apply(docBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemaerr.ErrJSONPatch, err)
	}

	out, err := schemadoc.Unmarshal(result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schemaerr.ErrJSONPatch, err)
	}
	return out, nil
}

// Inline builds and applies a single operation.
func Inline(body interface{}, op, path string, value interface{}) (interface{}, error) {
	return Apply(body, []Operation{{Op: op, Path: path, Value: value}})
}
