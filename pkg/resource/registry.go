package resource

import (
	"log/slog"
	"sort"

	"github.com/apisim/apisim/pkg/logging"
	"github.com/apisim/apisim/pkg/store"
)

// Registry binds a set of resource definitions to one store. Each
// simulation builds a registry at construction time and routes operations
// through it.
type Registry struct {
	store     *store.Store
	log       *slog.Logger
	resources map[string]*Resource
}

// NewRegistry creates an empty registry over the store.
func NewRegistry(s *store.Store, log *slog.Logger) *Registry {
	if log == nil {
		log = logging.Nop()
	}
	return &Registry{store: s, log: log, resources: map[string]*Resource{}}
}

// Register binds def to the registry's store. Registering the same name
// twice replaces the earlier binding.
func (r *Registry) Register(def *Definition) *Resource {
	res := Bind(def, r.store, r.log)
	r.resources[def.Name] = res
	return res
}

// Resource returns the named resource, or ok=false if never registered.
func (r *Registry) Resource(name string) (*Resource, bool) {
	res, ok := r.resources[name]
	return res, ok
}

// Names returns the sorted names of all registered resources.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.resources))
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Store returns the backing store.
func (r *Registry) Store() *store.Store { return r.store }
