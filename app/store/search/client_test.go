package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/content"
)

type failingSource struct {
	*content.Memory
}

func (failingSource) WebPages(context.Context, content.Query) ([]store.WebPageItem, error) {
	return nil, errors.New("cms is down")
}

func TestClient_RebuildUnknownIndex(t *testing.T) {
	remote := &MockRemote{}
	c := NewClient(remote, NewRegistry(nil), content.NewMemory())
	q := &memQueue{}

	_, err := c.Rebuild(context.Background(), "Docs", q)
	assert.Equal(t, ErrIndexNotFound, errors.Cause(err))
	remote.AssertExpectations(t)
	assert.Empty(t, remote.Calls, "no remote call for unknown index")
	assert.Empty(t, q.list())
}

func TestClient_Rebuild(t *testing.T) {
	hookCalls := make(chan map[string]interface{}, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		hookCalls <- body
	}))
	defer ts.Close()

	settings := IndexSettings{Searchable: []string{"Title"}}
	strategies := NewStrategies()
	strategies.Add("settings", func() Strategy { return settingsStrategy{settings: settings} })
	r := NewRegistry(strategies)
	cfg := docsIndex()
	cfg.StrategyName = "settings"
	cfg.ReusableContentTypes = []string{"Banner"}
	cfg.RebuildHook = ts.URL
	require.NoError(t, r.Register(cfg))

	src := content.NewMemory()
	inScope := page("/Articles/2024/post", "Article", "en")
	src.AddPage(inScope, "/en/post", nil)
	src.AddPage(page("/News/post", "Article", "en"), "/en/news", nil)
	src.AddPage(page("/Articles/2024/post", "Article", "de"), "/de/post", nil)
	banner := reusable("Banner", "en")
	src.AddReusable(banner, nil)
	src.AddReusable(reusable("Promo", "en"), nil)

	remote := &MockRemote{}
	remote.On("Clear", mock.Anything, "Docs").Return(nil).Once()
	remote.On("SetSettings", mock.Anything, "Docs", settings).Return(nil).Once()

	c := NewClient(remote, r, src)
	q := &memQueue{}
	n, err := c.Rebuild(context.Background(), "docs", q)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	remote.AssertExpectations(t)

	tasks := q.list()
	require.Len(t, tasks, 2)
	assert.Equal(t, inScope.GUID, tasks[0].Item.Info().GUID)
	assert.Equal(t, banner.GUID, tasks[1].Item.Info().GUID)
	for _, task := range tasks {
		assert.Equal(t, store.TaskPublish, task.Kind)
		assert.Equal(t, "Docs", task.IndexName)
	}

	hook := <-hookCalls
	assert.Equal(t, "Docs", hook["index"])
	assert.Equal(t, float64(2), hook["queued"])
}

func TestClient_RebuildSourceFailure(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(docsIndex()))
	remote := &MockRemote{}
	c := NewClient(remote, r, failingSource{Memory: content.NewMemory()})

	_, err := c.Rebuild(context.Background(), "Docs", &memQueue{})
	require.Error(t, err)
	assert.Empty(t, remote.Calls, "remote index kept when content can't be queried")
}

func TestClient_RebuildClearFailure(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(docsIndex()))
	remote := &MockRemote{}
	remote.On("Clear", mock.Anything, "Docs").Return(errors.New("forbidden"))
	c := NewClient(remote, r, content.NewMemory())

	q := &memQueue{}
	_, err := c.Rebuild(context.Background(), "Docs", q)
	require.Error(t, err)
	remote.AssertNotCalled(t, "SetSettings", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, q.list())
}

func TestClient_ListIndexes(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.ReplaceAll([]store.IndexConfiguration{{ID: 1, Name: "Docs"}, {ID: 2, Name: "Products"}}))

	remote := &MockRemote{}
	remote.On("ListIndices", mock.Anything).Return([]IndexStatistics{
		{Name: "legacy", Entries: 100},
		{Name: "docs", Entries: 42, DataSize: 1024, LastBuildTimeS: 3},
	}, nil)
	c := NewClient(remote, r, content.NewMemory())

	res, err := c.ListIndexes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []IndexStatistics{
		{ID: 1, Name: "Docs", Entries: 42, DataSize: 1024, LastBuildTimeS: 3},
		{ID: 2, Name: "Products"},
	}, res)

	all, err := c.Statistics(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failing := &MockRemote{}
	failing.On("ListIndices", mock.Anything).Return(nil, errors.New("timeout"))
	_, err = NewClient(failing, r, content.NewMemory()).ListIndexes(context.Background())
	assert.Error(t, err)
}

func TestClient_PassThrough(t *testing.T) {
	remote := &MockRemote{}
	docs := []*store.Document{store.NewDocument().Set(store.FieldObjectID, store.String("1"))}
	remote.On("Upsert", mock.Anything, "Docs", docs).Return(1, nil).Once()
	remote.On("Delete", mock.Anything, "Docs", []string{"1", "2"}).Return(2, nil).Once()
	remote.On("Close").Return(nil).Once()
	c := NewClient(remote, NewRegistry(nil), content.NewMemory())
	ctx := context.Background()

	n, err := c.Upsert(ctx, "Docs", docs)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = c.Delete(ctx, "Docs", []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = c.Upsert(ctx, "Docs", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "empty batch doesn't reach remote")
	n, err = c.Delete(ctx, "Docs", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, c.Close())
	remote.AssertExpectations(t)
}
