package query

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/ohler55/ojg/jp"

	"github.com/apisim/apisim/pkg/store"
)

var (
	pathMu    sync.RWMutex
	pathCache = map[string]jp.Expr{}
)

// compilePath parses a dotted field path ("owner.user_id") as a JSONPath
// expression, caching the parse. Paths come from resource definitions,
// not user input, so a parse failure is a programming error.
func compilePath(path string) (jp.Expr, error) {
	pathMu.RLock()
	if e, ok := pathCache[path]; ok {
		pathMu.RUnlock()
		return e, nil
	}
	pathMu.RUnlock()

	e, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("parsing field path %q: %w", path, err)
	}

	pathMu.Lock()
	pathCache[path] = e
	pathMu.Unlock()
	return e, nil
}

// Field extracts the value at path from a record. Missing fields return
// ok=false; an unparsable path behaves like a missing field.
func Field(r store.Record, path string) (any, bool) {
	e, err := compilePath(path)
	if err != nil {
		return nil, false
	}
	got := e.Get(map[string]any(r))
	if len(got) == 0 || got[0] == nil {
		return nil, false
	}
	return got[0], true
}

// FieldString extracts a string field; non-string values stringify.
func FieldString(r store.Record, path string) (string, bool) {
	v, ok := Field(r, path)
	if !ok {
		return "", false
	}
	return asString(v), true
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
