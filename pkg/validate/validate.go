// Package validate implements the declarative argument validation shared
// by every simulated endpoint. Each operation declares an ordered schema
// of parameters; Check evaluates type constraints before value
// constraints before cross-field constraints and reports the FIRST
// violation only. Validation never touches the record store, so a request
// that fails here fails identically regardless of store contents.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/apisim/apisim/pkg/apierr"
)

// Type is the expected shape of a parameter value.
type Type string

const (
	String    Type = "string"
	Int       Type = "int"
	Bool      Type = "bool"
	StringMap Type = "stringmap"
)

// Param declares one parameter: its shape and its value constraints.
// Constraint fields apply only where they make sense for the type; the
// zero value of each means "unconstrained".
type Param struct {
	Name     string
	Type     Type
	Required bool
	Default  any // applied when the parameter is absent; skipped if nil

	// String constraints.
	MaxLen   int
	NonEmpty bool
	Enum     []string
	Pattern  *regexp.Regexp

	// Int constraints. Pointers so zero is a usable bound.
	Min *int
	Max *int

	// StringMap constraints.
	AllowedKeys []string
}

// Cross is a cross-field constraint evaluated after every per-parameter
// check has passed. It receives the normalized arguments (defaults
// applied) and returns an *apierr.ValueError on violation.
type Cross func(args map[string]any) error

// Schema is the full validation contract of one operation. Params are
// checked in declaration order; Checks run afterwards, also in order.
type Schema struct {
	Params []Param
	Checks []Cross
}

// Check validates args against the schema and returns the normalized
// argument map: absent optional parameters are filled from their
// defaults, int-shaped floats are narrowed to int. The first violation
// encountered aborts the walk; later parameters are not inspected. The
// input map is never mutated.
func (s Schema) Check(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))

	for _, p := range s.Params {
		v, present := args[p.Name]
		if !present || v == nil {
			if p.Required {
				return nil, &apierr.ValueError{Param: p.Name, Message: "is required"}
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}

		norm, err := p.check(v)
		if err != nil {
			return nil, err
		}
		out[p.Name] = norm
	}

	for _, c := range s.Checks {
		if err := c(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// check runs the type check first, then the value checks, stopping at the
// first failure. Value checks never run against a mistyped value.
func (p Param) check(v any) (any, error) {
	switch p.Type {
	case String:
		sv, ok := v.(string)
		if !ok {
			return nil, &apierr.TypeError{Param: p.Name, Expected: "string", Received: v}
		}
		return sv, p.checkString(sv)

	case Int:
		iv, ok := toInt(v)
		if !ok {
			return nil, &apierr.TypeError{Param: p.Name, Expected: "integer", Received: v}
		}
		return iv, p.checkInt(iv)

	case Bool:
		bv, ok := v.(bool)
		if !ok {
			return nil, &apierr.TypeError{Param: p.Name, Expected: "boolean", Received: v}
		}
		return bv, nil

	case StringMap:
		mv, err := toStringMap(v)
		if err != nil {
			return nil, &apierr.TypeError{Param: p.Name, Expected: "object of strings", Received: v}
		}
		return mv, p.checkStringMap(mv)

	default:
		return nil, &apierr.SchemaError{Path: p.Name, Message: fmt.Sprintf("unknown parameter type %q", p.Type)}
	}
}

func (p Param) checkString(v string) error {
	if p.NonEmpty && v == "" {
		return &apierr.ValueError{Param: p.Name, Message: "must not be empty"}
	}
	if p.MaxLen > 0 && len(v) > p.MaxLen {
		return &apierr.ValueError{Param: p.Name, Message: fmt.Sprintf("must be at most %d characters, got %d", p.MaxLen, len(v))}
	}
	if len(p.Enum) > 0 && !contains(p.Enum, v) {
		return &apierr.ValueError{Param: p.Name, Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(p.Enum, ", "), v)}
	}
	if p.Pattern != nil && !p.Pattern.MatchString(v) {
		return &apierr.ValueError{Param: p.Name, Message: fmt.Sprintf("must match %s, got %q", p.Pattern, v)}
	}
	return nil
}

func (p Param) checkInt(v int) error {
	if p.Min != nil && v < *p.Min {
		return &apierr.ValueError{Param: p.Name, Message: fmt.Sprintf("must be at least %d, got %d", *p.Min, v)}
	}
	if p.Max != nil && v > *p.Max {
		return &apierr.ValueError{Param: p.Name, Message: fmt.Sprintf("must be at most %d, got %d", *p.Max, v)}
	}
	return nil
}

func (p Param) checkStringMap(v map[string]string) error {
	if len(p.AllowedKeys) == 0 {
		return nil
	}
	// Walk keys in sorted order so the reported violation is stable.
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !contains(p.AllowedKeys, k) {
			return &apierr.ValueError{Param: p.Name, Message: fmt.Sprintf("has unsupported key %q", k)}
		}
	}
	return nil
}

// Bound returns a pointer to v, for use in Min/Max fields.
func Bound(v int) *int { return &v }

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}

// toInt accepts native ints and the float64 shape JSON decoding produces,
// rejecting floats with a fractional part.
func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	}
	return 0, false
}

func toStringMap(v any) (map[string]string, error) {
	switch t := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out, nil
	case map[string]any:
		out := make(map[string]string, len(t))
		for k, e := range t {
			sv, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("value of %q is %T", k, e)
			}
			out[k] = sv
		}
		return out, nil
	}
	return nil, fmt.Errorf("not a map")
}
