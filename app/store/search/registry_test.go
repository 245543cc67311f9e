package search

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

type settingsStrategy struct {
	DefaultStrategy
	settings IndexSettings
}

func (s settingsStrategy) IndexSettings() IndexSettings { return s.settings }

func docsIndex() store.IndexConfiguration {
	return store.IndexConfiguration{
		ID:        1,
		Name:      "Docs",
		Languages: []string{"en"},
		Paths:     []store.IncludedPath{{Pattern: "/Articles/%", ContentTypes: []string{"Article"}}},
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(docsIndex()))

	cfg, ok := r.Lookup("docs")
	require.True(t, ok)
	assert.Equal(t, "Docs", cfg.Name)
	cfg, ok = r.LookupID(1)
	require.True(t, ok)
	assert.Equal(t, "Docs", cfg.Name)
	_, ok = r.Lookup("nope")
	assert.False(t, ok)
	_, ok = r.LookupID(42)
	assert.False(t, ok)

	dup := docsIndex()
	dup.ID = 2
	dup.Name = "DOCS"
	dup.Languages = []string{"de"}
	err := r.Register(dup)
	assert.Equal(t, ErrDuplicateIndex, errors.Cause(err))
	assert.Equal(t, 1, r.Len(), "failed registration doesn't change registry")
	cfg, _ = r.Lookup("docs")
	assert.Equal(t, []string{"en"}, cfg.Languages)
	_, ok = r.LookupID(2)
	assert.False(t, ok)

	sameID := docsIndex()
	sameID.Name = "Other"
	assert.Equal(t, ErrDuplicateIndex, errors.Cause(r.Register(sameID)))

	assert.Error(t, r.Register(store.IndexConfiguration{Name: "  "}), "empty name")
}

func TestRegistry_StrategyErrors(t *testing.T) {
	strategies := NewStrategies()
	strategies.Add("broken", func() Strategy {
		return settingsStrategy{settings: IndexSettings{Facets: []Facet{
			{Attribute: "Category", Mode: FacetFilterOnly},
			{Attribute: "Category", Mode: FacetSearchable},
		}}}
	})
	strategies.Add("facets", func() Strategy {
		return settingsStrategy{settings: IndexSettings{Facets: []Facet{
			{Attribute: "Category", Mode: FacetFilterOnly},
			{Attribute: "Category"},
			{Attribute: "Tags", Mode: FacetSearchable},
		}}}
	})
	r := NewRegistry(strategies)

	cfg := docsIndex()
	cfg.StrategyName = "missing"
	assert.Equal(t, ErrUnknownStrategy, errors.Cause(r.Register(cfg)))

	cfg.StrategyName = "broken"
	assert.Equal(t, ErrContradictorySettings, errors.Cause(r.Register(cfg)))
	assert.Equal(t, 0, r.Len())

	cfg.StrategyName = "Facets"
	require.NoError(t, r.Register(cfg))
	s, ok := r.Strategy("docs")
	require.True(t, ok)
	assert.Equal(t, []string{"filterOnly(Category)", "Category", "searchable(Tags)"}, s.IndexSettings().FacetAttributes())
}

func TestRegistry_ReplaceAll(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(docsIndex()))

	err := r.ReplaceAll([]store.IndexConfiguration{
		{ID: 10, Name: "Products"},
		{ID: 11, Name: "products"},
		{ID: 12, Name: "News", StrategyName: "unknown"},
		{ID: 13, Name: "Blog"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "products")
	assert.Contains(t, err.Error(), "unknown")

	names := []string{}
	for _, c := range r.All() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Products", "Blog"}, names)
	assert.False(t, r.Exists("Docs"))
	_, ok := r.LookupID(1)
	assert.False(t, ok)

	require.NoError(t, r.ReplaceAll(nil))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_Validate(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(docsIndex()))

	renamed := docsIndex()
	renamed.Name = "docs"
	assert.NoError(t, r.Validate(renamed), "same index can keep its name")

	other := docsIndex()
	other.ID = 0
	assert.Equal(t, ErrDuplicateIndex, errors.Cause(r.Validate(other)))
	other.Name = "Other"
	assert.NoError(t, r.Validate(other))
	other.StrategyName = "nope"
	assert.Equal(t, ErrUnknownStrategy, errors.Cause(r.Validate(other)))
}

func TestRegistry_CloneIsolation(t *testing.T) {
	r := NewRegistry(nil)
	cfg := docsIndex()
	require.NoError(t, r.Register(cfg))
	cfg.Languages[0] = "de"

	got, _ := r.Lookup("Docs")
	assert.Equal(t, []string{"en"}, got.Languages)
	got.Paths[0].Pattern = "/changed"
	again, _ := r.Lookup("Docs")
	assert.Equal(t, "/Articles/%", again.Paths[0].Pattern)
}

func TestRegistry_ConcurrentReaders(t *testing.T) {
	r := NewRegistry(nil)
	setA := []store.IndexConfiguration{{ID: 1, Name: "a1"}, {ID: 2, Name: "a2"}}
	setB := []store.IndexConfiguration{{ID: 3, Name: "b1"}, {ID: 4, Name: "b2"}, {ID: 5, Name: "b3"}}
	require.NoError(t, r.ReplaceAll(setA))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				_ = r.ReplaceAll(setB)
				continue
			}
			_ = r.ReplaceAll(setA)
		}
	}()
	for i := 0; i < 200; i++ {
		all := r.All()
		assert.True(t, len(all) == 2 || len(all) == 3, "never half-updated set")
		if len(all) == 2 {
			assert.Equal(t, "a1", all[0].Name)
		} else {
			assert.Equal(t, "b1", all[0].Name)
		}
	}
	wg.Wait()
}

func TestStrategies(t *testing.T) {
	s := NewStrategies()
	st, err := s.New("")
	require.NoError(t, err)
	assert.IsType(t, DefaultStrategy{}, st)
	s.Add("Custom", func() Strategy { return settingsStrategy{} })
	assert.Equal(t, []string{"custom", "default"}, s.Names())
	_, err = s.New("CUSTOM")
	assert.NoError(t, err)
}

func TestDefaultStrategy(t *testing.T) {
	ctx := context.Background()
	p := page("/Articles/one", "Article", "en")

	docs, err := DefaultStrategy{}.MapToDocuments(ctx, p)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	name, _ := docs[0].GetString("DisplayName")
	assert.Equal(t, p.DisplayName, name)

	p.Secured = true
	docs, err = DefaultStrategy{}.MapToDocuments(ctx, p)
	require.NoError(t, err)
	assert.Empty(t, docs)

	items, err := DefaultStrategy{}.FindItemsToReindexWebPage(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, []store.EventItem{p}, items)

	items, err = DefaultStrategy{}.FindItemsToReindexReusable(ctx, reusable("Banner", "en"))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
