package traverse

import (
	"fmt"
	"strings"

	"github.com/kstasik/schema-tools/schemadoc"
	"github.com/kstasik/schema-tools/schemaerr"
)

// Operator is a comparison used by a Condition.
type Operator string

const (
	OpEquals    Operator = "="
	OpEqualsAlt Operator = "=="
	OpNotEquals Operator = "!="
)

// Condition is one "field <op> value" clause of a Filter, evaluated against
// a candidate allOf branch (or any other object node a caller wants to
// filter). Recovered from original_source/tools.rs (Filter/ConditionSet);
// see SPEC_FULL.md §4.5.
type Condition struct {
	Field    string
	Operator Operator
	Value    string
}

// Filter is an ordered set of Conditions, all of which must pass for Match
// to accept a node (logical AND).
type Filter struct {
	Conditions []Condition
}

// ParseFilter parses a comma-separated list of "field=value",
// "field==value", or "field!=value" clauses.
func ParseFilter(expr string) (*Filter, error) {
	if strings.TrimSpace(expr) == "" {
		return &Filter{}, nil
	}

	var conds []Condition
	for _, clause := range strings.Split(expr, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}

		op, field, value, ok := splitOperator(clause)
		if !ok {
			return nil, fmt.Errorf("%w: %q", schemaerr.ErrMalformedFilter, clause)
		}
		conds = append(conds, Condition{Field: field, Operator: op, Value: value})
	}
	return &Filter{Conditions: conds}, nil
}

func splitOperator(clause string) (Operator, string, string, bool) {
	for _, op := range []Operator{OpEqualsAlt, OpNotEquals, OpEquals} {
		if idx := strings.Index(clause, string(op)); idx > 0 {
			return op, strings.TrimSpace(clause[:idx]), strings.TrimSpace(clause[idx+len(op):]), true
		}
	}
	return "", "", "", false
}

// Match reports whether node satisfies every condition in the filter. A
// nil or empty filter matches everything.
func (f *Filter) Match(node interface{}) bool {
	if f == nil || len(f.Conditions) == 0 {
		return true
	}
	om, ok := schemadoc.ToOrderedMap(node)
	if !ok {
		return false
	}
	for _, c := range f.Conditions {
		v, present := om.Get(c.Field)
		actual := fmt.Sprintf("%v", v)

		switch c.Operator {
		case OpEquals, OpEqualsAlt:
			if !present || actual != c.Value {
				return false
			}
		case OpNotEquals:
			if present && actual == c.Value {
				return false
			}
		}
	}
	return true
}
