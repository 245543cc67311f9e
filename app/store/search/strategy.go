package search

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// DefaultStrategyName is the strategy used when index configuration has no strategy set
const DefaultStrategyName = "default"

// ErrUnknownStrategy returned when index refers to a strategy without factory
var ErrUnknownStrategy = errors.New("unknown indexing strategy")

// ErrContradictorySettings returned when strategy declares an attribute with conflicting facet modes
var ErrContradictorySettings = errors.New("contradictory index settings")

// Strategy maps content items of one index to search documents and decides reindex fan-out.
// Errors are for genuine faults only, business exclusions return no documents.
type Strategy interface {
	// IndexSettings declares searchable, retrievable and facet attributes of the index
	IndexSettings() IndexSettings
	// MapToDocuments returns documents for the item, no documents means the item is excluded
	// from the index and must be removed from the remote side
	MapToDocuments(ctx context.Context, item store.EventItem) ([]*store.Document, error)
	// FindItemsToReindexWebPage returns items to reindex when the web page changed
	FindItemsToReindexWebPage(ctx context.Context, item store.WebPageItem) ([]store.EventItem, error)
	// FindItemsToReindexReusable returns items to reindex when the reusable item changed
	FindItemsToReindexReusable(ctx context.Context, item store.ReusableItem) ([]store.EventItem, error)
}

// FacetMode defines how facet attribute can be used
type FacetMode int

// enum of facet modes
const (
	FacetDefault FacetMode = iota
	FacetSearchable
	FacetFilterOnly
)

// Facet is an attribute used for faceting and filtering
type Facet struct {
	Attribute string
	Mode      FacetMode
}

// String returns attribute in algolia attributesForFaceting syntax
func (f Facet) String() string {
	switch f.Mode {
	case FacetSearchable:
		return "searchable(" + f.Attribute + ")"
	case FacetFilterOnly:
		return "filterOnly(" + f.Attribute + ")"
	}
	return f.Attribute
}

// IndexSettings declared by strategy and pushed to remote index on rebuild
type IndexSettings struct {
	Searchable  []string
	Retrievable []string
	Facets      []Facet
}

// Empty is true when strategy has no special settings
func (s IndexSettings) Empty() bool {
	return len(s.Searchable) == 0 && len(s.Retrievable) == 0 && len(s.Facets) == 0
}

// FacetAttributes returns facets in algolia syntax
func (s IndexSettings) FacetAttributes() []string {
	res := make([]string, 0, len(s.Facets))
	for _, f := range s.Facets {
		res = append(res, f.String())
	}
	return res
}

// Validate rejects an attribute declared both filter-only and searchable
func (s IndexSettings) Validate() error {
	modes := map[string]FacetMode{}
	for _, f := range s.Facets {
		if f.Attribute == "" {
			return errors.Wrap(ErrContradictorySettings, "empty facet attribute")
		}
		prev, seen := modes[f.Attribute]
		if seen && (prev == FacetFilterOnly && f.Mode == FacetSearchable || prev == FacetSearchable && f.Mode == FacetFilterOnly) {
			return errors.Wrapf(ErrContradictorySettings, "attribute %q is both filter-only and searchable", f.Attribute)
		}
		if !seen || f.Mode != FacetDefault {
			modes[f.Attribute] = f.Mode
		}
	}
	return nil
}

// DefaultStrategy is the conservative strategy, embed it to override some of the operations
type DefaultStrategy struct{}

// IndexSettings returns no special settings
func (DefaultStrategy) IndexSettings() IndexSettings { return IndexSettings{} }

// MapToDocuments excludes secured items and otherwise emits a single document with display name
func (DefaultStrategy) MapToDocuments(_ context.Context, item store.EventItem) ([]*store.Document, error) {
	info := item.Info()
	if info.Secured {
		return nil, nil
	}
	return []*store.Document{store.NewDocument().Set("DisplayName", store.String(info.DisplayName))}, nil
}

// FindItemsToReindexWebPage returns the changed page itself
func (DefaultStrategy) FindItemsToReindexWebPage(_ context.Context, item store.WebPageItem) ([]store.EventItem, error) {
	return []store.EventItem{item}, nil
}

// FindItemsToReindexReusable returns nothing, reusable items are not documents on their own
func (DefaultStrategy) FindItemsToReindexReusable(context.Context, store.ReusableItem) ([]store.EventItem, error) {
	return []store.EventItem{}, nil
}

// StrategyFactory makes a new strategy instance for an index
type StrategyFactory func() Strategy

// Strategies maps strategy name stored in index configuration to its factory.
// Names are case-insensitive, "default" is always present.
type Strategies struct {
	lock      sync.RWMutex
	factories map[string]StrategyFactory
}

// NewStrategies makes strategies registry with default strategy
func NewStrategies() *Strategies {
	res := &Strategies{factories: map[string]StrategyFactory{}}
	res.Add(DefaultStrategyName, func() Strategy { return DefaultStrategy{} })
	return res
}

// Add registers factory under the name, replacing existing one
func (s *Strategies) Add(name string, factory StrategyFactory) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.factories[store.NormalizeName(name)] = factory
}

// New makes strategy by name, empty name means default strategy
func (s *Strategies) New(name string) (Strategy, error) {
	if store.NormalizeName(name) == "" {
		name = DefaultStrategyName
	}
	s.lock.RLock()
	factory, ok := s.factories[store.NormalizeName(name)]
	s.lock.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q, available %v", name, s.Names())
	}
	return factory(), nil
}

// Names returns sorted names of registered strategies
func (s *Strategies) Names() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	res := make([]string, 0, len(s.factories))
	for k := range s.factories {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
