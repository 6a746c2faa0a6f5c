// Package store implements the in-memory record store backing every
// simulated API: named collections of records keyed by string id, with
// wholesale snapshot save/load for reproducible scenarios.
package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/apisim/apisim/pkg/apierr"
)

// Record is a single stored entity. Values are the JSON-compatible types
// produced by encoding/json: string, float64, bool, nil, []any and
// map[string]any. Nested sub-collections (a design's pages, a folder's
// child ids) live inside the record as ordinary values.
type Record = map[string]any

// Collection maps record id to record.
type Collection = map[string]Record

// Snapshot is the full serializable state of a store.
type Snapshot = map[string]Collection

// Store holds the mutable state of one simulated backend. It is created
// explicitly and passed by reference to every component that needs it;
// there is no package-level instance. The mutex keeps individual
// operations consistent, but the contract is a single logical caller.
type Store struct {
	mu          sync.RWMutex
	collections Snapshot
}

// New creates a store pre-populated from seed. The seed is deep-copied so
// later mutations never alias the caller's data. A nil seed yields an
// empty store.
func New(seed Snapshot) *Store {
	s := &Store{collections: Snapshot{}}
	s.load(seed)
	return s
}

// Get returns a detached copy of the stored record, or ok=false when
// either the collection or the record is absent. Mutating the copy
// changes nothing until it is written back with Put.
func (s *Store) Get(collection, id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil, false
	}
	r, ok := c[id]
	if !ok {
		return nil, false
	}
	return copyRecord(r), true
}

// Put stores a record under the given id, creating the collection on
// demand. An existing record with the same id is replaced.
func (s *Store) Put(collection, id string, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		c = Collection{}
		s.collections[collection] = c
	}
	c[id] = record
}

// Delete removes a record and reports whether it existed. Deleting from an
// absent collection is not an error.
func (s *Store) Delete(collection, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return false
	}
	if _, ok := c[id]; !ok {
		return false
	}
	delete(c, id)
	return true
}

// List returns every record in the collection ordered by id, so iteration
// is deterministic across runs and snapshot round-trips. Ids that are
// decimal integers order numerically ("2" before "10"); everything else
// orders lexicographically, after the numeric ids. Records are detached
// copies. An absent or empty collection returns nil.
func (s *Store) List(collection string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok || len(c) == 0 {
		return nil
	}
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyRecord(c[id]))
	}
	return out
}

// idLess orders two record ids: numeric ids by value, then everything
// else lexicographically.
func idLess(a, b string) bool {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil:
		return an < bn
	case aerr == nil:
		return true
	case berr == nil:
		return false
	default:
		return a < b
	}
}

// Len reports the number of records in a collection; absent collections
// count zero.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections[collection])
}

// Collections returns the sorted names of all collections, including
// empty ones.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset discards the current state and replaces it with a deep copy of
// seed. Used between test scenarios.
func (s *Store) Reset(seed Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = Snapshot{}
	s.loadLocked(seed)
}

// Export returns a deep copy of the full store state, suitable for
// serialization or diffing.
func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Snapshot, len(s.collections))
	for name, c := range s.collections {
		cc := make(Collection, len(c))
		for id, r := range c {
			cc[id] = copyRecord(r)
		}
		out[name] = cc
	}
	return out
}

// Traverse walks an access path (collection, record id, then field names)
// and returns the value at the end. A missing collection or a step whose
// container has the wrong type is a *apierr.SchemaError — the store shape
// itself is broken. A missing record id is a *apierr.NotFoundError: the
// shape is fine, the data just isn't there.
func (s *Store) Traverse(path ...string) (any, error) {
	if len(path) < 2 {
		return nil, &apierr.SchemaError{Path: strings.Join(path, "."), Message: "path must name a collection and a record"}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[path[0]]
	if !ok {
		return nil, &apierr.SchemaError{Path: path[0], Message: "collection does not exist"}
	}
	r, ok := c[path[1]]
	if !ok {
		return nil, &apierr.NotFoundError{Resource: path[0], ID: path[1]}
	}

	var cur any = r
	for i := 2; i < len(path); i++ {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, &apierr.SchemaError{
				Path:    strings.Join(path[:i], "."),
				Message: fmt.Sprintf("expected object, found %T", cur),
			}
		}
		cur, ok = m[path[i]]
		if !ok {
			return nil, &apierr.SchemaError{
				Path:    strings.Join(path[:i+1], "."),
				Message: "field does not exist",
			}
		}
	}
	return cur, nil
}

func (s *Store) load(seed Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(seed)
}

func (s *Store) loadLocked(seed Snapshot) {
	for name, c := range seed {
		cc := make(Collection, len(c))
		for id, r := range c {
			cc[id] = copyRecord(r)
		}
		s.collections[name] = cc
	}
}

func copyRecord(r Record) Record {
	return copyValue(r).(map[string]any)
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = copyValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}
