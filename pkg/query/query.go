// Package query implements the list-query pipeline used by every
// collection endpoint: free-text filtering, ownership filtering, optional
// expression filtering, stable sorting, and clamping pagination. The
// pipeline never errors on empty results — an empty page is an answer,
// not a failure.
package query

import (
	"sort"
	"strings"

	"github.com/apisim/apisim/pkg/store"
)

// Ownership selects records by who holds them.
type Ownership string

const (
	// OwnershipAny applies no ownership filter.
	OwnershipAny Ownership = "any"
	// OwnershipOwned keeps records whose owner reference carries a
	// non-empty subject id.
	OwnershipOwned Ownership = "owned"
	// OwnershipShared keeps records with no owner reference or an empty
	// subject id.
	OwnershipShared Ownership = "shared"
)

// Sort names the supported orderings.
type Sort string

const (
	// SortRelevance keeps the input order. It is the default.
	SortRelevance    Sort = "relevance"
	SortModifiedAsc  Sort = "modified_ascending"
	SortModifiedDesc Sort = "modified_descending"
	SortTitleAsc     Sort = "title_ascending"
	SortTitleDesc    Sort = "title_descending"
)

// Params is one immutable list query. Zero values mean "not requested":
// nil Query skips text filtering, empty Ownership means any, empty SortBy
// means relevance, Offset below 1 clamps to the first page, Limit of 0
// disables pagination.
type Params struct {
	Query     *string
	Ownership Ownership
	SortBy    Sort
	Offset    int
	Limit     int
	Where     string
}

// Fields tells the pipeline where a resource keeps its queryable data.
// Paths are dotted field paths into the record (e.g. "owner.user_id").
type Fields struct {
	// Text is the free-text field: substring filtering and title sorts
	// read it.
	Text string
	// Owner is the path to the owning subject's id.
	Owner string
	// Modified is the path to the last-modified timestamp, read by the
	// modified sorts. Numeric epoch and lexicographically-ordered string
	// timestamps both work.
	Modified string
}

// Apply runs the full pipeline over records and returns the resulting
// page. The result is nil — the "no results" sentinel — whenever the
// filtered set is empty; a non-empty result is a fresh slice, never a
// view into the input. The only error source is a malformed Where
// expression.
func Apply(records []store.Record, p Params, f Fields) ([]store.Record, error) {
	out := filterText(records, p.Query, f.Text)
	out = filterOwnership(out, p.Ownership, f.Owner)

	if p.Where != "" {
		var err error
		out, err = filterWhere(out, p.Where)
		if err != nil {
			return nil, err
		}
	}

	sortRecords(out, p.SortBy, f)
	out = paginate(out, p.Offset, p.Limit)

	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// filterText keeps records whose text field contains query,
// case-insensitively. A nil query keeps everything.
func filterText(records []store.Record, query *string, textPath string) []store.Record {
	if query == nil || textPath == "" {
		return append([]store.Record(nil), records...)
	}
	needle := strings.ToLower(*query)
	out := make([]store.Record, 0, len(records))
	for _, r := range records {
		text, _ := FieldString(r, textPath)
		if strings.Contains(strings.ToLower(text), needle) {
			out = append(out, r)
		}
	}
	return out
}

func filterOwnership(records []store.Record, o Ownership, ownerPath string) []store.Record {
	if o == "" || o == OwnershipAny || ownerPath == "" {
		return records
	}
	out := records[:0]
	for _, r := range records {
		id, _ := FieldString(r, ownerPath)
		owned := id != ""
		if (o == OwnershipOwned) == owned {
			out = append(out, r)
		}
	}
	return out
}

// sortRecords orders records in place. Sorts are stable so records that
// compare equal keep their store order. An unrecognized sort value is a
// no-op: validation rejects bad sorts at the boundary, and anything that
// slips past is treated leniently rather than crashing a list call.
func sortRecords(records []store.Record, s Sort, f Fields) {
	var less func(a, b store.Record) bool
	switch s {
	case SortModifiedAsc:
		less = func(a, b store.Record) bool { return compareField(a, b, f.Modified) < 0 }
	case SortModifiedDesc:
		less = func(a, b store.Record) bool { return compareField(a, b, f.Modified) > 0 }
	case SortTitleAsc:
		less = func(a, b store.Record) bool { return compareField(a, b, f.Text) < 0 }
	case SortTitleDesc:
		less = func(a, b store.Record) bool { return compareField(a, b, f.Text) > 0 }
	default:
		return
	}
	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

// compareField compares one field of two records. Two numbers compare
// numerically; everything else compares as case-sensitive strings, which
// is correct for both titles and RFC 3339 timestamps.
func compareField(a, b store.Record, path string) int {
	av, _ := Field(a, path)
	bv, _ := Field(b, path)

	if an, aok := av.(float64); aok {
		if bn, bok := bv.(float64); bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(asString(av), asString(bv))
}

// paginate slices out one page. Offset is a 1-based record position; an
// offset below 1 clamps to 1, and an offset past the end yields an empty
// page rather than an error. Limit 0 disables the upper bound.
func paginate(records []store.Record, offset, limit int) []store.Record {
	if offset < 1 {
		offset = 1
	}
	start := offset - 1
	if start >= len(records) {
		return nil
	}
	end := len(records)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return records[start:end]
}
