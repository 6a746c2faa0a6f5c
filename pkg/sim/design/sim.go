// Package design simulates a design-tool REST API: designs with pages,
// folders, brand templates with autofill, uploaded assets, and design
// import jobs. All state lives in an in-process
// record store; every operation is deterministic for a fixed seed, so a
// scripted session replays identically run after run.
package design

import (
	"log/slog"

	"github.com/apisim/apisim/internal/id"
	"github.com/apisim/apisim/pkg/logging"
	"github.com/apisim/apisim/pkg/resource"
	"github.com/apisim/apisim/pkg/store"
)

// CurrentUserID is the subject all owned designs belong to. The
// simulation has exactly one authenticated user.
const CurrentUserID = "current_user"

// CurrentTeamID is the team of the authenticated user.
const CurrentTeamID = "default_team"

// Sim is one design-tool backend instance.
type Sim struct {
	store    *store.Store
	log      *slog.Logger
	registry *resource.Registry
	designs  *resource.Resource
	folders  *resource.Resource

	designSeq *id.Sequence
	assetSeq  *id.Sequence
	clock     *clock
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

// WithEpoch sets the starting timestamp of the simulated clock.
func WithEpoch(epoch int64) Option {
	return func(s *Sim) { s.clock.now = epoch }
}

// New creates a simulation seeded with the default dataset.
func New(opts ...Option) *Sim {
	s := &Sim{
		store: store.New(DefaultSeed()),
		log:   logging.Nop(),
		clock: newClock(defaultEpoch),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registry = resource.NewRegistry(s.store, s.log)
	s.designSeq = id.NewSequence(1)
	s.assetSeq = id.NewSequence(1)
	s.advancePastSeed()

	s.designs = s.registry.Register(designDefinition(s))
	s.folders = s.registry.Register(folderDefinition(s))
	return s
}

// Store exposes the backing store for snapshot save/load and inspection.
func (s *Sim) Store() *store.Store { return s.store }

// advancePastSeed moves the design id sequence beyond the highest seeded
// design number, so created designs never collide with seed data.
func (s *Sim) advancePastSeed() {
	for _, r := range s.store.List("designs") {
		if recID, ok := r["id"].(string); ok {
			s.designSeq.Advance(designIDNumber(recID))
		}
	}
}

// defaultEpoch is an arbitrary fixed timestamp. The simulated clock
// starts here and advances by one second per tick, never reading the
// wall clock.
const defaultEpoch int64 = 1700000000

// clock issues monotonically increasing timestamps. Deterministic by
// construction: identical call sequences produce identical times.
type clock struct {
	now int64
}

func newClock(epoch int64) *clock {
	return &clock{now: epoch}
}

func (c *clock) tick() int64 {
	c.now++
	return c.now
}
