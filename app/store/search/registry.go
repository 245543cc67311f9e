package search

import (
	"sync"
	"sync/atomic"

	log "github.com/go-pkgz/lgr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// ErrDuplicateIndex returned on attempt to register index with already used name
var ErrDuplicateIndex = errors.New("index already registered")

// ErrIndexNotFound returned when index is not registered
var ErrIndexNotFound = errors.New("index not found")

// registeredIndex binds configuration with its strategy instance
type registeredIndex struct {
	cfg      store.IndexConfiguration
	strategy Strategy
}

// snapshot is an immutable set of registered indexes, replaced as a whole
type snapshot struct {
	byName  map[string]*registeredIndex
	byID    map[int64]*registeredIndex
	ordered []*registeredIndex
}

func newSnapshot(size int) *snapshot {
	return &snapshot{
		byName:  make(map[string]*registeredIndex, size),
		byID:    make(map[int64]*registeredIndex, size),
		ordered: make([]*registeredIndex, 0, size),
	}
}

func (s *snapshot) add(ri *registeredIndex) {
	s.byName[store.NormalizeName(ri.cfg.Name)] = ri
	if ri.cfg.ID != 0 {
		s.byID[ri.cfg.ID] = ri
	}
	s.ordered = append(s.ordered, ri)
}

// conflict checks name is not used by another index, index with the same ID is the same index
func (s *snapshot) conflict(cfg store.IndexConfiguration) error {
	if other, ok := s.byName[store.NormalizeName(cfg.Name)]; ok && (cfg.ID == 0 || other.cfg.ID != cfg.ID) {
		return errors.Wrapf(ErrDuplicateIndex, "%q", cfg.Name)
	}
	return nil
}

// duplicate checks both name and ID are free
func (s *snapshot) duplicate(cfg store.IndexConfiguration) error {
	if _, ok := s.byName[store.NormalizeName(cfg.Name)]; ok {
		return errors.Wrapf(ErrDuplicateIndex, "%q", cfg.Name)
	}
	if other, ok := s.byID[cfg.ID]; ok && cfg.ID != 0 {
		return errors.Wrapf(ErrDuplicateIndex, "id %d used by %q", cfg.ID, other.cfg.Name)
	}
	return nil
}

// Registry keeps index configurations in memory. Readers never lock, every change
// swaps in a new immutable snapshot, so a reader sees either old or new set.
type Registry struct {
	strategies *Strategies
	writeLock  sync.Mutex
	current    atomic.Value // *snapshot
}

// NewRegistry makes empty registry resolving strategies with given factories
func NewRegistry(strategies *Strategies) *Registry {
	if strategies == nil {
		strategies = NewStrategies()
	}
	r := &Registry{strategies: strategies}
	r.current.Store(newSnapshot(0))
	return r
}

// Strategies returns strategy factories used by registry
func (r *Registry) Strategies() *Strategies {
	return r.strategies
}

func (r *Registry) load() *snapshot {
	return r.current.Load().(*snapshot)
}

// build makes strategy for configuration and checks its settings
func (r *Registry) build(cfg store.IndexConfiguration) (*registeredIndex, error) {
	if store.NormalizeName(cfg.Name) == "" {
		return nil, errors.New("empty index name")
	}
	strategy, err := r.strategies.New(cfg.StrategyName)
	if err != nil {
		return nil, errors.Wrapf(err, "index %q", cfg.Name)
	}
	if err = strategy.IndexSettings().Validate(); err != nil {
		return nil, errors.Wrapf(err, "index %q", cfg.Name)
	}
	return &registeredIndex{cfg: cfg.Clone(), strategy: strategy}, nil
}

// Validate checks configuration could be registered, ignoring index with the same ID.
// Used by admin changes before they are persisted.
func (r *Registry) Validate(cfg store.IndexConfiguration) error {
	if err := r.load().conflict(cfg); err != nil {
		return err
	}
	_, err := r.build(cfg)
	return err
}

// Register adds index. Fails on duplicate name, unknown strategy or contradictory settings,
// registry is not changed on failure.
func (r *Registry) Register(cfg store.IndexConfiguration) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	cur := r.load()
	if err := cur.duplicate(cfg); err != nil {
		return err
	}
	ri, err := r.build(cfg)
	if err != nil {
		return err
	}

	next := newSnapshot(len(cur.ordered) + 1)
	for _, existing := range cur.ordered {
		next.add(existing)
	}
	next.add(ri)
	r.current.Store(next)
	log.Printf("[INFO] index %q registered with strategy %q", cfg.Name, cfg.StrategyName)
	return nil
}

// ReplaceAll clears registry and registers all configurations as a single swap.
// Invalid or duplicate configurations are skipped and reported in returned error,
// the rest is registered anyway.
func (r *Registry) ReplaceAll(cfgs []store.IndexConfiguration) error {
	r.writeLock.Lock()
	defer r.writeLock.Unlock()

	errs := new(multierror.Error)
	next := newSnapshot(len(cfgs))
	for _, cfg := range cfgs {
		if err := next.duplicate(cfg); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		ri, err := r.build(cfg)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		next.add(ri)
	}
	r.current.Store(next)
	log.Printf("[INFO] search registry reloaded, %d indexes", len(next.ordered))
	return errs.ErrorOrNil()
}

// Lookup returns configuration by name, case-insensitive
func (r *Registry) Lookup(name string) (store.IndexConfiguration, bool) {
	ri, ok := r.entry(name)
	if !ok {
		return store.IndexConfiguration{}, false
	}
	return ri.cfg.Clone(), true
}

// LookupID returns configuration by ID
func (r *Registry) LookupID(id int64) (store.IndexConfiguration, bool) {
	ri, ok := r.load().byID[id]
	if !ok {
		return store.IndexConfiguration{}, false
	}
	return ri.cfg.Clone(), true
}

// Exists checks if index registered
func (r *Registry) Exists(name string) bool {
	_, ok := r.entry(name)
	return ok
}

// All returns all configurations in registration order
func (r *Registry) All() []store.IndexConfiguration {
	cur := r.load()
	res := make([]store.IndexConfiguration, 0, len(cur.ordered))
	for _, ri := range cur.ordered {
		res = append(res, ri.cfg.Clone())
	}
	return res
}

// Strategy returns strategy instance of the index
func (r *Registry) Strategy(name string) (Strategy, bool) {
	ri, ok := r.entry(name)
	if !ok {
		return nil, false
	}
	return ri.strategy, true
}

// Len returns number of registered indexes
func (r *Registry) Len() int {
	return len(r.load().ordered)
}

func (r *Registry) entry(name string) (*registeredIndex, bool) {
	ri, ok := r.load().byName[store.NormalizeName(name)]
	return ri, ok
}

// entries returns configurations with strategies from the same snapshot
func (r *Registry) entries() []*registeredIndex {
	return r.load().ordered
}
