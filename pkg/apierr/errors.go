package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for table-driven matching. When several
// constraints are violated at once, the lowest Kind wins: a type violation
// is always reported before a value violation, which is reported before
// any store access happens.
type Kind int

const (
	// KindType is a wrong argument shape (string where int expected, etc).
	KindType Kind = iota
	// KindValue is a right-shaped argument with a disallowed value.
	KindValue
	// KindNotFound is a well-formed reference to an absent record.
	KindNotFound
	// KindSchema is structural store corruption: a missing collection or a
	// wrong container type where a collection or record was expected.
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindValue:
		return "value"
	case KindNotFound:
		return "not_found"
	case KindSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// TypeError is returned when a parameter has the wrong shape.
type TypeError struct {
	Param    string
	Expected string
	Received any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("parameter %q must be a %s, got %T", e.Param, e.Expected, e.Received)
}

// Kind returns KindType.
func (e *TypeError) Kind() Kind { return KindType }

// StatusCode returns the HTTP status code the simulated API would emit.
func (e *TypeError) StatusCode() int { return http.StatusBadRequest }

// ValueError is returned when a parameter has the right shape but a
// disallowed value: empty string, over-long string, out-of-range number,
// value outside an enumeration, or an ID with forbidden characters.
type ValueError struct {
	Param   string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("parameter %q %s", e.Param, e.Message)
}

// Kind returns KindValue.
func (e *ValueError) Kind() Kind { return KindValue }

// StatusCode returns the HTTP status code the simulated API would emit.
func (e *ValueError) StatusCode() int { return http.StatusBadRequest }

// NotFoundError is returned when a record is absent from its collection.
// The requested ID is always embedded in the message so failures are
// diagnosable without extra logging.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Kind returns KindNotFound.
func (e *NotFoundError) Kind() Kind { return KindNotFound }

// StatusCode returns the HTTP status code the simulated API would emit.
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// SchemaError is returned when the store itself is malformed: an expected
// collection is missing or a path step holds the wrong container type.
// Distinct from NotFoundError, which is a well-formed miss.
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("store schema error at %q: %s", e.Path, e.Message)
}

// Kind returns KindSchema.
func (e *SchemaError) Kind() Kind { return KindSchema }

// StatusCode returns the HTTP status code the simulated API would emit.
func (e *SchemaError) StatusCode() int { return http.StatusInternalServerError }

// Kinder is implemented by every error in this package.
type Kinder interface {
	error
	Kind() Kind
}

// KindOf reports the Kind of err, or ok=false for foreign errors.
func KindOf(err error) (Kind, bool) {
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind(), true
	}
	return 0, false
}
