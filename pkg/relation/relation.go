// Package relation resolves record relationships into JSON:API style
// relationships/included payloads. Resolution is best-effort by contract:
// a missing foreign key, a nil value, or a reference to a record that no
// longer exists silently omits that relationship rather than failing the
// request.
package relation

import (
	"github.com/apisim/apisim/pkg/query"
	"github.com/apisim/apisim/pkg/store"
)

// Rel describes one relationship of a resource.
type Rel struct {
	// Target is the collection the foreign key points into.
	Target string
	// Field is the path on the record holding the foreign key: a single
	// id, or a list of ids when Many is set.
	Field string
	// Many marks a to-many relationship (list of ids).
	Many bool
	// Placeholder marks a relationship this simulation never populates:
	// it always resolves to an empty data list, so clients that expect
	// the key to exist keep working.
	Placeholder bool
}

// Map is a resource's full relationship catalog, keyed by the public
// relationship name clients pass in include lists.
type Map map[string]Rel

// Resolve builds the relationships object and the included records for
// one record. Only names present in includes are resolved; names are
// validated against the resource's allow-list upstream, so an unknown
// name here is simply skipped. Included records appear in include-list
// order, deduplicated, and are safe for the caller to mutate.
func (m Map) Resolve(s *store.Store, r store.Record, includes []string) (map[string]any, []store.Record) {
	if len(includes) == 0 {
		return nil, nil
	}

	relationships := map[string]any{}
	var included []store.Record
	seen := map[string]bool{}

	for _, name := range includes {
		rel, ok := m[name]
		if !ok {
			continue
		}

		if rel.Placeholder {
			relationships[name] = map[string]any{"data": []any{}}
			continue
		}

		if rel.Many {
			data, records := m.resolveMany(s, r, rel)
			if data == nil {
				continue
			}
			relationships[name] = map[string]any{"data": data}
			for _, rec := range records {
				key := rel.Target + "/" + recordID(rec)
				if !seen[key] {
					seen[key] = true
					included = append(included, rec)
				}
			}
			continue
		}

		id, ok := query.FieldString(r, rel.Field)
		if !ok || id == "" {
			continue
		}
		target, ok := s.Get(rel.Target, id)
		if !ok {
			// Dangling reference: omit, never error.
			continue
		}
		relationships[name] = map[string]any{
			"data": map[string]any{"type": rel.Target, "id": id},
		}
		key := rel.Target + "/" + id
		if !seen[key] {
			seen[key] = true
			included = append(included, copyRecord(target))
		}
	}

	if len(relationships) == 0 {
		relationships = nil
	}
	return relationships, included
}

// resolveMany resolves a to-many relationship. Dangling ids within the
// list are dropped individually; a list that resolves to nothing still
// yields an empty data array, matching the to-one omission rule only
// when the fk field itself is absent.
func (m Map) resolveMany(s *store.Store, r store.Record, rel Rel) ([]any, []store.Record) {
	raw, ok := query.Field(r, rel.Field)
	if !ok || raw == nil {
		return nil, nil
	}
	ids, ok := raw.([]any)
	if !ok {
		return nil, nil
	}

	data := []any{}
	var records []store.Record
	for _, e := range ids {
		id, ok := e.(string)
		if !ok || id == "" {
			continue
		}
		target, ok := s.Get(rel.Target, id)
		if !ok {
			continue
		}
		data = append(data, map[string]any{"type": rel.Target, "id": id})
		records = append(records, copyRecord(target))
	}
	return data, records
}

func recordID(r store.Record) string {
	id, _ := r["id"].(string)
	return id
}

func copyRecord(r store.Record) store.Record {
	out := make(store.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
