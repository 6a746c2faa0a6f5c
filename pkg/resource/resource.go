// Package resource binds the core machinery together: one declarative
// Definition per simulated resource, and generic CRUD operations that run
// validation, then store/query access, then relationship resolution — in
// that order, always. A request that fails validation is rejected before
// the store is ever touched.
package resource

import (
	"log/slog"
	"regexp"

	"github.com/apisim/apisim/pkg/apierr"
	"github.com/apisim/apisim/pkg/logging"
	"github.com/apisim/apisim/pkg/query"
	"github.com/apisim/apisim/pkg/relation"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

// Definition declares one simulated resource.
type Definition struct {
	// Name is the singular resource name used in error messages.
	Name string
	// Collection is the store collection backing the resource.
	Collection string

	// Fields tells the query pipeline where the queryable data lives.
	Fields query.Fields

	// IDPattern constrains ids on lookups; nil accepts any non-empty id.
	IDPattern *regexp.Regexp

	// ListSchema validates list arguments; CreateSchema and UpdateSchema
	// validate write payloads. A nil schema accepts anything.
	ListSchema   *validate.Schema
	CreateSchema *validate.Schema
	UpdateSchema *validate.Schema

	// Relations and Includes drive relationship resolution: Includes is
	// the allow-list of relationship names a caller may request.
	Relations relation.Map
	Includes  []string

	// NewID mints an id for created records.
	NewID func() string

	// OnWrite runs after every successful Create, Update and Patch, with
	// the store lockable and the written record. Used for derived state
	// such as customer order aggregates.
	OnWrite func(s *store.Store, r store.Record)
}

// Resource is a Definition bound to a store.
type Resource struct {
	def   *Definition
	store *store.Store
	log   *slog.Logger
}

// Bind attaches the definition to a store. A nil logger falls back to a
// no-op logger.
func Bind(def *Definition, s *store.Store, log *slog.Logger) *Resource {
	if log == nil {
		log = logging.Nop()
	}
	return &Resource{def: def, store: s, log: log}
}

// Definition returns the bound definition.
func (r *Resource) Definition() *Definition { return r.def }

// Store returns the bound store.
func (r *Resource) Store() *store.Store { return r.store }

// List validates args against the list schema, then runs the query
// pipeline over the collection. Recognized argument names: "query",
// "ownership", "sort_by", "offset", "limit", "where". Returns nil — not
// an empty slice — when nothing matches.
func (r *Resource) List(args map[string]any) ([]store.Record, error) {
	norm := args
	if r.def.ListSchema != nil {
		var err error
		norm, err = r.def.ListSchema.Check(args)
		if err != nil {
			return nil, err
		}
	}

	p := query.Params{}
	if q, ok := norm["query"].(string); ok {
		p.Query = &q
	}
	if v, ok := norm["ownership"].(string); ok {
		p.Ownership = query.Ownership(v)
	}
	if v, ok := norm["sort_by"].(string); ok {
		p.SortBy = query.Sort(v)
	}
	if v, ok := norm["offset"].(int); ok {
		p.Offset = v
	}
	if v, ok := norm["limit"].(int); ok {
		p.Limit = v
	}
	if v, ok := norm["where"].(string); ok {
		p.Where = v
	}

	out, err := query.Apply(r.store.List(r.def.Collection), p, r.def.Fields)
	if err != nil {
		return nil, err
	}
	r.log.Debug("list", "resource", r.def.Name, "results", len(out))
	return out, nil
}

// Get returns the record plus its resolved relationships for the
// requested includes. The id is validated before the store is consulted;
// include names must appear in the resource's allow-list.
func (r *Resource) Get(id string, includes []string) (store.Record, map[string]any, []store.Record, error) {
	if err := r.checkID(id); err != nil {
		return nil, nil, nil, err
	}
	if err := r.checkIncludes(includes); err != nil {
		return nil, nil, nil, err
	}

	rec, ok := r.store.Get(r.def.Collection, id)
	if !ok {
		return nil, nil, nil, &apierr.NotFoundError{Resource: r.def.Name, ID: id}
	}

	rels, included := r.def.Relations.Resolve(r.store, rec, includes)
	return rec, rels, included, nil
}

// Create validates attrs, mints an id, and stores the new record. The
// normalized attributes (defaults applied) become the record body.
func (r *Resource) Create(attrs map[string]any) (store.Record, error) {
	norm := attrs
	if r.def.CreateSchema != nil {
		var err error
		norm, err = r.def.CreateSchema.Check(attrs)
		if err != nil {
			return nil, err
		}
	}

	rec := store.Record{}
	for k, v := range norm {
		rec[k] = v
	}
	id := r.def.NewID()
	rec["id"] = id

	r.store.Put(r.def.Collection, id, rec)
	if r.def.OnWrite != nil {
		r.def.OnWrite(r.store, rec)
	}
	r.log.Debug("create", "resource", r.def.Name, "id", id)
	return rec, nil
}

// Update replaces the record's attributes wholesale, keeping only the id.
func (r *Resource) Update(id string, attrs map[string]any) (store.Record, error) {
	return r.write(id, attrs, false)
}

// Patch merges attrs into the existing record, leaving other fields as
// they are.
func (r *Resource) Patch(id string, attrs map[string]any) (store.Record, error) {
	return r.write(id, attrs, true)
}

func (r *Resource) write(id string, attrs map[string]any, merge bool) (store.Record, error) {
	if err := r.checkID(id); err != nil {
		return nil, err
	}

	norm := attrs
	if r.def.UpdateSchema != nil {
		var err error
		norm, err = r.def.UpdateSchema.Check(attrs)
		if err != nil {
			return nil, err
		}
	}

	existing, ok := r.store.Get(r.def.Collection, id)
	if !ok {
		return nil, &apierr.NotFoundError{Resource: r.def.Name, ID: id}
	}

	rec := store.Record{}
	if merge {
		for k, v := range existing {
			rec[k] = v
		}
	}
	for k, v := range norm {
		rec[k] = v
	}
	rec["id"] = id

	r.store.Put(r.def.Collection, id, rec)
	if r.def.OnWrite != nil {
		r.def.OnWrite(r.store, rec)
	}
	r.log.Debug("write", "resource", r.def.Name, "id", id, "merge", merge)
	return rec, nil
}

// Delete removes the record. Deleting an absent record is a not-found.
func (r *Resource) Delete(id string) error {
	if err := r.checkID(id); err != nil {
		return err
	}
	if !r.store.Delete(r.def.Collection, id) {
		return &apierr.NotFoundError{Resource: r.def.Name, ID: id}
	}
	r.log.Debug("delete", "resource", r.def.Name, "id", id)
	return nil
}

func (r *Resource) checkID(id string) error {
	if id == "" {
		return &apierr.ValueError{Param: "id", Message: "must not be empty"}
	}
	if r.def.IDPattern != nil && !r.def.IDPattern.MatchString(id) {
		return &apierr.ValueError{Param: "id", Message: "contains unsupported characters: " + id}
	}
	return nil
}

func (r *Resource) checkIncludes(includes []string) error {
	for _, name := range includes {
		if !containsStr(r.def.Includes, name) {
			return &apierr.ValueError{Param: "include", Message: "has unsupported value " + name}
		}
	}
	return nil
}

func containsStr(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
