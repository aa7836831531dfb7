package main

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kstasik/schema-tools/traverse"
)

// jsonLiteral decodes the patch command's raw --value argument: a value
// that parses as JSON becomes that typed value, otherwise it is kept as a
// plain string. No "~" prefix is involved; the CLI has no -o option.
func jsonLiteral(raw string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

func jsonMarshalIndent(body interface{}) ([]byte, error) {
	return json.MarshalIndent(body, "", "  ")
}

func yamlMarshal(body interface{}) ([]byte, error) {
	return yaml.Marshal(body)
}

func traverseParseFilter(expr string) (*traverse.Filter, error) {
	return traverse.ParseFilter(expr)
}

// splitChainStep turns one `-c "<sub-command>"` string (e.g.
// `process dereference schema.json --create-internal-refs`) into argv, the
// same shape Cobra's own arg parser expects, by splitting on whitespace.
// Quotes are not interpreted, so no single argument can contain a space.
func splitChainStep(step string) []string {
	return strings.Fields(step)
}
