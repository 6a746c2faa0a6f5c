package sourcing

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/store"
)

// isoTimestamp matches the ISO-8601 forms the filter parameters accept:
// a date, optionally followed by a time and zone designator.
var isoTimestamp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}(:\d{2}(\.\d{1,6})?)?(Z|[+-]\d{2}:?\d{2})?)?$`)

// object renders one record as a JSON:API data object. Keys named in
// hidden stay out of the attributes block — they are internal linkage,
// surfaced through relationships instead.
func object(typ string, r store.Record, rels map[string]any, hidden ...string) map[string]any {
	attrs := map[string]any{}
	for k, v := range r {
		if k == "id" || containsKey(hidden, k) {
			continue
		}
		attrs[k] = v
	}
	out := map[string]any{
		"type":       typ,
		"id":         r["id"],
		"attributes": attrs,
	}
	if rels != nil {
		out["relationships"] = rels
	}
	return out
}

// document assembles a list response: data array, included resources,
// and a meta block carrying the page count.
func document(data []any, included []store.Record, totalPages int) map[string]any {
	doc := map[string]any{
		"data": data,
		"meta": map[string]any{"count": totalPages},
	}
	if len(included) > 0 {
		inc := make([]any, len(included))
		for i, r := range included {
			inc[i] = r
		}
		doc["included"] = inc
	}
	return doc
}

// page is a validated pagination request. size 0 means "no pagination":
// the caller gets everything, the behavior when no page argument is
// supplied at all.
type page struct {
	size   int
	number int
}

func parsePage(v any) (page, error) {
	if v == nil {
		return page{number: 1}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return page{}, &apierr.TypeError{Param: "page", Expected: "object", Received: v}
	}

	p := page{size: 10, number: 1}
	if raw, ok := m["size"]; ok {
		size, ok := asPageInt(raw)
		if !ok {
			return page{}, &apierr.TypeError{Param: "page.size", Expected: "integer", Received: raw}
		}
		p.size = size
	}
	if p.size < 1 || p.size > 100 {
		return page{}, &apierr.ValueError{Param: "page.size", Message: fmt.Sprintf("must be between 1 and 100, got %d", p.size)}
	}
	if raw, ok := m["number"]; ok {
		number, ok := asPageInt(raw)
		if !ok {
			return page{}, &apierr.TypeError{Param: "page.number", Expected: "integer", Received: raw}
		}
		p.number = number
	}
	if p.number < 1 {
		return page{}, &apierr.ValueError{Param: "page.number", Message: fmt.Sprintf("must be greater than zero, got %d", p.number)}
	}
	return p, nil
}

// slice returns the requested page and the total page count for the
// current size. With no size set, everything is one page. An empty
// result set still counts as one page, so meta.count never reads zero.
func (p page) slice(records []store.Record) ([]store.Record, int) {
	if p.size == 0 {
		return records, 1
	}
	totalPages := (len(records) + p.size - 1) / p.size
	if totalPages < 1 {
		totalPages = 1
	}
	start := (p.number - 1) * p.size
	if start >= len(records) {
		return nil, totalPages
	}
	end := start + p.size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], totalPages
}

// parseInclude splits a comma-separated include parameter and checks it
// against the resource's allow-list.
func parseInclude(v any, allowed []string) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	raw, ok := v.(string)
	if !ok {
		return nil, &apierr.TypeError{Param: "include", Expected: "string", Received: v}
	}

	var values []string
	var invalid []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !containsKey(allowed, part) {
			invalid = append(invalid, part)
			continue
		}
		values = append(values, part)
	}
	if len(invalid) > 0 {
		return nil, &apierr.ValueError{Param: "include", Message: "does not support values: " + strings.Join(invalid, ", ")}
	}
	return values, nil
}

// filterKind is the expected shape of one filter key's value.
type filterKind int

const (
	filterString filterKind = iota
	filterBool
	filterStringList // a string or list of strings; normalized to a list
	filterTimestamp
	filterNumber // normalized to float64
)

// checkFilter validates a filter object against the resource's allowed
// keys, normalizing as it goes. Unknown keys are value violations named
// in sorted order so the report is stable.
func checkFilter(v any, spec map[string]filterKind) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &apierr.TypeError{Param: "filter", Expected: "object", Received: v}
	}

	var unknown []string
	for k := range m {
		if _, ok := spec[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &apierr.ValueError{Param: "filter", Message: "has unknown keys: " + strings.Join(unknown, ", ")}
	}

	out := make(map[string]any, len(m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		val := m[k]
		switch spec[k] {
		case filterString:
			sv, ok := val.(string)
			if !ok {
				return nil, &apierr.TypeError{Param: "filter." + k, Expected: "string", Received: val}
			}
			out[k] = sv
		case filterBool:
			bv, ok := val.(bool)
			if !ok {
				return nil, &apierr.TypeError{Param: "filter." + k, Expected: "boolean", Received: val}
			}
			out[k] = bv
		case filterStringList:
			list, err := asStringList(k, val)
			if err != nil {
				return nil, err
			}
			out[k] = list
		case filterTimestamp:
			sv, ok := val.(string)
			if !ok {
				return nil, &apierr.TypeError{Param: "filter." + k, Expected: "ISO-8601 timestamp string", Received: val}
			}
			if !isoTimestamp.MatchString(sv) {
				return nil, &apierr.ValueError{Param: "filter." + k, Message: "must be a valid ISO-8601 timestamp, got " + sv}
			}
			out[k] = sv
		case filterNumber:
			switch n := val.(type) {
			case float64:
				out[k] = n
			case int:
				out[k] = float64(n)
			default:
				return nil, &apierr.TypeError{Param: "filter." + k, Expected: "number", Received: val}
			}
		}
	}
	return out, nil
}

func asStringList(key string, v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			sv, ok := e.(string)
			if !ok {
				return nil, &apierr.TypeError{Param: "filter." + key, Expected: "string or list of strings", Received: v}
			}
			out = append(out, sv)
		}
		return out, nil
	}
	return nil, &apierr.TypeError{Param: "filter." + key, Expected: "string or list of strings", Received: v}
}

func asPageInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
	}
	return 0, false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsKey(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
