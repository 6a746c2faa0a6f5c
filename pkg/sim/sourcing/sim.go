// Package sourcing simulates a strategic-sourcing REST API: supplier
// companies, contracts, sourcing events with bids, projects with
// attachments, and users. Responses
// follow the JSON:API convention of the system it imitates — typed data
// objects with attributes, relationships, and an included section driven
// by an include parameter.
package sourcing

import (
	"log/slog"
	"strconv"

	"github.com/apisim/apisim/internal/id"
	"github.com/apisim/apisim/pkg/logging"
	"github.com/apisim/apisim/pkg/store"
)

// Sim is one sourcing backend instance.
type Sim struct {
	store *store.Store
	log   *slog.Logger

	// One id sequence per resource family; all ids are small sequential
	// integers rendered as strings.
	seqs map[string]*id.Sequence

	// tick drives the simulated clock: one second per state-changing
	// call, counted from a fixed epoch.
	tick int64
}

// Option configures a Sim.
type Option func(*Sim)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(s *Sim) { s.log = log }
}

// WithSeed replaces the built-in seed dataset.
func WithSeed(snap store.Snapshot) Option {
	return func(s *Sim) { s.store = store.New(snap) }
}

// New creates a simulation seeded with the default dataset.
func New(opts ...Option) *Sim {
	s := &Sim{
		store: store.New(DefaultSeed()),
		log:   logging.Nop(),
		seqs:  map[string]*id.Sequence{},
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, collection := range []string{
		"supplier_companies", "contracts", "events", "bids", "users", "attachments", "projects",
	} {
		s.seqs[collection] = id.NewSequence(1)
		s.advancePastSeed(collection)
	}
	return s
}

// Store exposes the backing store for snapshot save/load and inspection.
func (s *Sim) Store() *store.Store { return s.store }

// nextID mints the next sequential id for a collection.
func (s *Sim) nextID(collection string) string {
	return s.seqs[collection].Next()
}

// advancePastSeed moves a collection's sequence beyond its highest
// seeded numeric id.
func (s *Sim) advancePastSeed(collection string) {
	for _, r := range s.store.List(collection) {
		if recID, ok := r["id"].(string); ok {
			if n, err := strconv.Atoi(recID); err == nil {
				s.seqs[collection].Advance(n)
			}
		}
	}
}
