package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

func prepBoltStore(t *testing.T) (b *BoltDB, teardown func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "algolia-cfg")
	require.NoError(t, err)
	b, err = NewBoltDB(filepath.Join(dir, "indexes.db"), bolt.Options{})
	require.NoError(t, err)
	return b, func() {
		assert.NoError(t, b.Close())
		_ = os.RemoveAll(dir)
	}
}

func docsConfig() store.IndexConfiguration {
	return store.IndexConfiguration{
		Name:         "Docs",
		ChannelName:  "website",
		Languages:    []string{"en"},
		Paths:        []store.IncludedPath{{Pattern: "/Articles/%", ContentTypes: []string{"Article"}}},
		StrategyName: "default",
	}
}

func TestBoltDB_CreateAndGet(t *testing.T) {
	b, teardown := prepBoltStore(t)
	defer teardown()

	id, err := b.Create(docsConfig())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	cfg, err := b.Get("DOCS")
	require.NoError(t, err)
	assert.Equal(t, id, cfg.ID)
	assert.Equal(t, "Docs", cfg.Name)
	assert.Equal(t, []string{"en"}, cfg.Languages)
	assert.Equal(t, "/Articles/%", cfg.Paths[0].Pattern)

	cfg, err = b.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Docs", cfg.Name)

	_, err = b.Get("nope")
	assert.Equal(t, ErrNotFound, errors.Cause(err))
	_, err = b.GetByID(42)
	assert.Equal(t, ErrNotFound, errors.Cause(err))
}

func TestBoltDB_DuplicateName(t *testing.T) {
	b, teardown := prepBoltStore(t)
	defer teardown()

	_, err := b.Create(docsConfig())
	require.NoError(t, err)

	dup := docsConfig()
	dup.Name = "docs"
	_, err = b.Create(dup)
	assert.Equal(t, ErrDuplicateName, errors.Cause(err))

	names, err := b.ListNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Docs"}, names)

	_, err = b.Create(store.IndexConfiguration{Name: "  "})
	assert.Error(t, err)
}

func TestBoltDB_EditDelete(t *testing.T) {
	b, teardown := prepBoltStore(t)
	defer teardown()

	id1, err := b.Create(docsConfig())
	require.NoError(t, err)
	other := docsConfig()
	other.Name = "Products"
	id2, err := b.Create(other)
	require.NoError(t, err)

	cfg, err := b.GetByID(id1)
	require.NoError(t, err)
	cfg.Languages = []string{"en", "de"}
	require.NoError(t, b.Edit(cfg))

	cfg.Name = "products"
	assert.Equal(t, ErrDuplicateName, errors.Cause(b.Edit(cfg)), "rename into another index name")

	cfg.ID = 100
	assert.Equal(t, ErrNotFound, errors.Cause(b.Edit(cfg)))

	list, err := b.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"en", "de"}, list[0].Languages)
	assert.Equal(t, "Products", list[1].Name)

	require.NoError(t, b.Delete(id2))
	assert.Equal(t, ErrNotFound, errors.Cause(b.Delete(id2)))
	list, err = b.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
