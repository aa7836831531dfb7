package name

import (
	"regexp"
	"strings"

	"github.com/kstasik/schema-tools/schemaerr"
)

var methodPattern = regexp.MustCompile(`^(get|head|post|put|delete|connect|options|trace|patch)$`)
var versionPattern = regexp.MustCompile(`^v([0-9]+)$`)

// Endpoint is a parsed path/method pair, ready to derive an operationId from.
// Ported from original_source/src/process/name/endpoint.rs.
type Endpoint struct {
	version     string
	hasVersion  bool
	method      string
	resources   []string
	identifiers []string
}

// NewEndpoint parses method and originalPath, per §4.10. method must be a
// known HTTP verb (lowercase) and the path (after trimming "/" and "_") must
// be non-empty, else schemaerr.EndpointValidation is returned.
func NewEndpoint(method, originalPath string) (*Endpoint, error) {
	path := strings.Trim(strings.Trim(originalPath, "/"), "_")
	if !methodPattern.MatchString(method) || path == "" {
		return nil, &schemaerr.EndpointValidation{Method: method, Path: originalPath}
	}

	parts := strings.Split(path, "/")

	var version string
	hasVersion := false
	if versionPattern.MatchString(parts[0]) {
		version = parts[0]
		hasVersion = true
		parts = parts[1:]
	}

	var resources, identifiers []string
	for _, p := range parts {
		if strings.HasPrefix(p, "{") {
			identifiers = append(identifiers, p)
		} else {
			resources = append(resources, p)
		}
	}

	return &Endpoint{
		version:     version,
		hasVersion:  hasVersion,
		method:      method,
		resources:   resources,
		identifiers: identifiers,
	}, nil
}

// OperationID derives the operationId. resourceMethodVersion reverses the
// part order to <resources><method><version> instead of
// <version><method><resources> (see spec.md §8 S6's reverse-form cases).
func (e *Endpoint) OperationID(resourceMethodVersion bool) string {
	var parts []string
	if e.hasVersion {
		parts = append(parts, e.version)
	}
	parts = append(parts, e.methodWord())

	var resources []string
	for i, resource := range e.resources {
		processed := Normalize(resource)
		hasIdentifier := i < len(e.identifiers)

		var word string
		switch {
		case hasIdentifier:
			word = Singularize(processed)
		case e.method == "post":
			word = Singularize(processed)
		case e.method == "get":
			word = processed
		default:
			word = Pluralize(processed)
		}
		resources = append(resources, word)
	}

	if !resourceMethodVersion {
		parts = append(parts, resources...)
	} else {
		reversed := make([]string, len(parts))
		for i, p := range parts {
			reversed[len(parts)-1-i] = p
		}
		parts = append(resources, reversed...)
	}

	return camelJoin(parts)
}

func (e *Endpoint) methodWord() string {
	switch e.method {
	case "get":
		if len(e.resources) != len(e.identifiers) && len(e.resources) > 0 && IsPlural(Normalize(e.resources[len(e.resources)-1])) {
			return "list"
		}
		return "get"
	case "post":
		return "create"
	case "patch":
		return "update"
	default:
		return e.method
	}
}

func camelJoin(parts []string) string {
	var b strings.Builder
	for i, s := range parts {
		if s == "" {
			continue
		}
		if i == 0 {
			b.WriteString(s)
			continue
		}
		b.WriteString(strings.ToUpper(s[:1]))
		b.WriteString(s[1:])
	}
	return b.String()
}
