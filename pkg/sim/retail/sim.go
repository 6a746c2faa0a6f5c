// Package retail simulates a retail-commerce REST API: products,
// customers, orders, draft orders and order transactions. Orders carry sequential
// customer-facing order numbers, and customer records hold aggregates
// (order count, lifetime spend) recomputed on every order change.
package retail

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/apisim/apisim/internal/id"
	"github.com/apisim/apisim/pkg/logging"
	"github.com/apisim/apisim/pkg/query"
	"github.com/apisim/apisim/pkg/resource"
	"github.com/apisim/apisim/pkg/store"
	"github.com/apisim/apisim/pkg/validate"
)

// firstOrderNumber is where customer-facing order numbers start.
const firstOrderNumber = 1001

// Sim is one retail backend instance.
type Sim struct {
	store    *store.Store
	log      *slog.Logger
	registry *resource.Registry
	products *resource.Resource

	seqs     map[string]*id.Sequence
	orderNum *id.Sequence
	tick     int64
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
	s.registry = resource.NewRegistry(s.store, s.log)

	for _, collection := range []string{"products", "customers", "orders", "draft_orders", "transactions"} {
		s.seqs[collection] = id.NewSequence(1)
		for _, r := range s.store.List(collection) {
			if recID, ok := r["id"].(string); ok {
				if n, err := strconv.Atoi(recID); err == nil {
					s.seqs[collection].Advance(n)
				}
			}
		}
	}

	s.orderNum = id.NewSequence(firstOrderNumber)
	for _, r := range s.store.List("orders") {
		if n, ok := r["order_number"].(float64); ok {
			s.orderNum.Advance(int(n))
		}
	}

	s.products = s.registry.Register(productDefinition(s))
	return s
}

// Store exposes the backing store for snapshot save/load and inspection.
func (s *Sim) Store() *store.Store { return s.store }

func (s *Sim) nextID(collection string) string {
	return s.seqs[collection].Next()
}

// timestamp renders the simulated clock as an ISO-8601 string; one
// second per state-changing call from a fixed epoch.
func (s *Sim) timestamp() string {
	s.tick++
	return time.Unix(retailEpoch+s.tick, 0).UTC().Format(time.RFC3339)
}

const retailEpoch int64 = 1700000000

func productDefinition(s *Sim) *resource.Definition {
	return &resource.Definition{
		Name:       "product",
		Collection: "products",
		Fields:     query.Fields{Text: "title", Modified: "updated_at"},
		ListSchema: &validate.Schema{Params: []validate.Param{
			{Name: "query", Type: validate.String, MaxLen: 255},
			{Name: "sort_by", Type: validate.String, Default: "relevance", Enum: []string{
				"relevance", "title_ascending", "title_descending", "modified_ascending", "modified_descending",
			}},
			{Name: "offset", Type: validate.Int},
			{Name: "limit", Type: validate.Int, Min: validate.Bound(1), Max: validate.Bound(100)},
			{Name: "where", Type: validate.String},
		}},
		CreateSchema: &validate.Schema{Params: []validate.Param{
			{Name: "title", Type: validate.String, Required: true, NonEmpty: true, MaxLen: 255},
			{Name: "vendor", Type: validate.String, Default: ""},
			{Name: "product_type", Type: validate.String, Default: ""},
			{Name: "price", Type: validate.String, Required: true, Pattern: pricePattern},
		}},
		NewID: func() string { return s.nextID("products") },
	}
}
