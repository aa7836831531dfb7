// Package schemaerr defines the error taxonomy shared by every processing
// pass: input, reference, structural, naming, version, patch, validation,
// filter, and registry errors. Sentinel values are meant to be compared with
// errors.Is; the typed errors below carry enough context for a caller to
// reconstruct what failed without string-matching a message.
package schemaerr

import (
	"errors"
	"fmt"
)

// Input errors: unreachable/malformed schema URL, wrong content type or
// extension, unreadable file.
var (
	ErrSchemaUnreachable       = errors.New("schema: unreachable location")
	ErrSchemaLoadIncorrectType = errors.New("schema: body did not match declared content type")
)

// Reference errors: invalid $ref, cycle overflow, broken JSON pointer.
var (
	ErrInvalidReference    = errors.New("reference: malformed $ref")
	ErrUnresolvedReference = errors.New("reference: fragment did not resolve")
	ErrCycleOverflow       = errors.New("reference: maximum dereference depth exceeded")
)

// Structural errors: a pass required a specific property shape and the node
// lacked it.
var (
	ErrNotImplemented      = errors.New("structural: unsupported schema shape")
	ErrInvalidOpenapiRoot  = errors.New("structural: openapi document root must be an object")
	ErrInvalidTypeKeyword  = errors.New("structural: type must be a string or array of strings")
	ErrTupleItemsUnsupported = errors.New("structural: tuple-form items is not supported")
)

// Naming errors.
var (
	ErrNoBaseName       = errors.New("naming: empty scope has no base name")
	ErrAmbiguousTitle   = errors.New("naming: ambiguous oneOf/anyOf title without overwrite_ambiguous")
	ErrInvalidTitleType = errors.New("naming: title must be a string")
)

// Version errors.
var ErrMalformedSemver = errors.New("version: could not parse semantic version")

// Patch errors.
var ErrJSONPatch = errors.New("patch: RFC-6902 operation failed")

// Validation errors.
var ErrMetaValidation = errors.New("validate: document failed meta-schema validation")

// Filter errors.
var ErrMalformedFilter = errors.New("filter: malformed condition expression")

// Registry errors.
var (
	ErrRegistryMissingRevspec  = errors.New("registry: git source requires rev, branch, or tag")
	ErrRegistryLockMismatch    = errors.New("registry: lock hash does not match checked out tree")
	ErrRegistryNotDirectory    = errors.New("registry: local source is not a directory")
)

// EndpointValidation reports a (method, path) pair that the endpoint grammar
// (process/name) could not parse.
type EndpointValidation struct {
	Method string
	Path   string
}

func (e *EndpointValidation) Error() string {
	return fmt.Sprintf("naming: %q is not a recognized HTTP method or %q has no path segments", e.Method, e.Path)
}

// ReferenceError wraps a failure that occurred while resolving a specific
// $ref string, keeping the original ref and scope path for diagnostics.
type ReferenceError struct {
	Ref   string
	Scope string
	Err   error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference %q at %q: %v", e.Ref, e.Scope, e.Err)
}

func (e *ReferenceError) Unwrap() error { return e.Err }

// ValidationErrors collects every error reported by a compiled meta-schema
// so a caller can inspect all of them, not just the first.
type ValidationErrors struct {
	Errors []string
}

func (e *ValidationErrors) Error() string {
	return fmt.Sprintf("validate: %d error(s): %v", len(e.Errors), e.Errors)
}
