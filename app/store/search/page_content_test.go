package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/content"
)

func TestPageContentStrategy(t *testing.T) {
	src := content.NewMemory()
	p := page("/Articles/one", "Article", "en")
	p.Order = 3
	src.AddPage(p, "/en/articles/one", map[string]string{
		"Body":    "<h2>Getting started</h2><p>Install the <b>package</b> &amp; run it.</p>",
		"Summary": "Short   summary",
	})
	s := NewPageContentStrategy(src)
	require.NoError(t, s.IndexSettings().Validate())
	ctx := context.Background()

	docs, err := s.MapToDocuments(ctx, p)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	d := docs[0]
	title, _ := d.GetString("Title")
	assert.Equal(t, p.DisplayName, title)
	text, _ := d.GetString("Content")
	assert.Equal(t, "Getting started Install the package & run it. Short summary", text)
	headings, ok := d.Get("Headings")
	require.True(t, ok)
	assert.Equal(t, store.Array{store.String("Getting started")}, headings)
	order, _ := d.Get("Order")
	assert.Equal(t, store.Number(3), order)

	secured := p
	secured.Secured = true
	docs, err = s.MapToDocuments(ctx, secured)
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = s.MapToDocuments(ctx, page("/Articles/unknown", "Article", "en"))
	require.NoError(t, err)
	assert.Empty(t, docs, "item gone from cms is excluded")

	docs, err = s.MapToDocuments(ctx, reusable("Banner", "en"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestPageContentStrategy_FanOut(t *testing.T) {
	src := content.NewMemory()
	home, about := page("/Home", "Home", "en"), page("/About", "Page", "en")
	src.AddPage(home, "/", nil)
	src.AddPage(about, "/about", nil)
	banner := reusable("Banner", "en")
	src.AddReusable(banner, map[string]string{"Text": "sale"}, home.GUID)
	s := NewPageContentStrategy(src)
	ctx := context.Background()

	items, err := s.FindItemsToReindexReusable(ctx, banner)
	require.NoError(t, err)
	assert.Equal(t, []store.EventItem{home}, items)

	items, err = s.FindItemsToReindexWebPage(ctx, about)
	require.NoError(t, err)
	assert.Equal(t, []store.EventItem{about}, items, "pages map to themselves")
}

func TestPageContentStrategy_Pipeline(t *testing.T) {
	src := content.NewMemory()
	home := page("/Home", "Home", "en")
	src.AddPage(home, "/en/", map[string]string{"Body": "<p>welcome</p>"})
	banner := reusable("Banner", "en")
	src.AddReusable(banner, nil, home.GUID)

	strategies := NewStrategies()
	strategies.Add(PageContentStrategyName, func() Strategy { return NewPageContentStrategy(src) })
	r := NewRegistry(strategies)
	require.NoError(t, r.Register(store.IndexConfiguration{
		ID: 1, Name: "Site", StrategyName: "page-content",
		Paths: []store.IncludedPath{{Pattern: "/Home"}},
	}))

	q := &memQueue{}
	assert.Equal(t, 1, NewTaskLogger(r, q).HandleReusableItemEvent(context.Background(), banner, store.EventPublish))

	u := &memUploader{}
	n := NewProcessor(r, u, src, ProcessorParams{}).Process(context.Background(), q.list())
	assert.Equal(t, 1, n)
	require.Len(t, u.upserts, 1)
	d := u.upserts[0].docs[0]
	id, _ := d.GetString(store.FieldObjectID)
	assert.Equal(t, home.GUID.String(), id)
	url, _ := d.GetString(store.FieldURL)
	assert.Equal(t, "/en/", url)
	text, _ := d.GetString("Content")
	assert.Equal(t, "welcome", text)
}
