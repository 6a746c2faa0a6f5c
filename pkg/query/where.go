package query

import (
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
)

var (
	whereMu    sync.RWMutex
	whereCache = map[string]*vm.Program{}
)

// filterWhere keeps records for which the expression evaluates to true.
// The record's fields are the expression environment, so
// `status == "active" && total > 100` reads naturally. A compile failure
// is a value violation on the where parameter; a per-record evaluation
// failure (e.g. a field missing on that record) excludes the record, the
// same leniency the text filter applies to records without a text field.
func filterWhere(records []store.Record, src string) ([]store.Record, error) {
	program, err := compileWhere(src)
	if err != nil {
		return nil, &apierr.ValueError{Param: "where", Message: "is not a valid filter expression: " + err.Error()}
	}

	out := records[:0]
	for _, r := range records {
		result, err := expr.Run(program, map[string]any(r))
		if err != nil {
			continue
		}
		if keep, ok := result.(bool); ok && keep {
			out = append(out, r)
		}
	}
	return out, nil
}

func compileWhere(src string) (*vm.Program, error) {
	whereMu.RLock()
	if p, ok := whereCache[src]; ok {
		whereMu.RUnlock()
		return p, nil
	}
	whereMu.RUnlock()

	program, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, err
	}

	whereMu.Lock()
	// Double-check in case another goroutine compiled the same expression.
	if existing, ok := whereCache[src]; ok {
		whereMu.Unlock()
		return existing, nil
	}
	whereCache[src] = program
	whereMu.Unlock()
	return program, nil
}
