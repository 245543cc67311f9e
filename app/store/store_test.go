package store

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_OrderedJSON(t *testing.T) {
	nested := NewDocument().Set("b", Number(2)).Set("a", Bool(true))
	doc := NewDocument().
		Set("zeta", String("last letter")).
		Set("alpha", Array{String("x"), Number(1.5), nested}).
		Set("nested", nested)
	doc.Set("zeta", String("replaced"))

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"replaced","alpha":["x",1.5,{"b":2,"a":true}],"nested":{"b":2,"a":true}}`, string(data))
	assert.Equal(t, []string{"zeta", "alpha", "nested"}, doc.Keys())
	assert.Equal(t, 3, doc.Len())

	s, ok := doc.GetString("zeta")
	assert.True(t, ok)
	assert.Equal(t, "replaced", s)
	_, ok = doc.GetString("alpha")
	assert.False(t, ok)
}

func TestDocument_Map(t *testing.T) {
	doc := NewDocument().Set("title", String("hello")).Set("tags", Array{String("a"), String("b")})
	assert.Equal(t, map[string]interface{}{"title": "hello", "tags": []interface{}{"a", "b"}}, doc.Map())

	var empty *Document
	assert.Nil(t, empty.Map())
	assert.False(t, empty.Has("title"))
	assert.Equal(t, 0, empty.Len())
}

func TestDocument_BadNumber(t *testing.T) {
	doc := NewDocument().Set("score", Number(math.NaN()))
	_, err := json.Marshal(doc)
	assert.Error(t, err)
}

func TestTaskKindFromEvent(t *testing.T) {
	assert.Equal(t, TaskUpdate, TaskKindFromEvent(EventPublish))
	assert.Equal(t, TaskDelete, TaskKindFromEvent(EventDelete))
	assert.Equal(t, TaskDelete, TaskKindFromEvent(EventArchive))
	assert.Equal(t, TaskUnknown, TaskKindFromEvent("unpublish"))
}

func TestTask_Validate(t *testing.T) {
	guid := uuid.New()
	full := WebPageItem{ItemInfo: ItemInfo{GUID: guid, ContentType: "Article", Language: "en"}}
	identityOnly := ReusableItem{ItemInfo: ItemInfo{GUID: guid}}

	tbl := []struct {
		name string
		task Task
		ok   bool
	}{
		{"update", Task{Item: full, Kind: TaskUpdate, IndexName: "Docs"}, true},
		{"delete identity only", Task{Item: identityOnly, Kind: TaskDelete, IndexName: "Docs"}, true},
		{"update identity only", Task{Item: identityOnly, Kind: TaskUpdate, IndexName: "Docs"}, false},
		{"no index", Task{Item: full, Kind: TaskUpdate}, false},
		{"unknown kind", Task{Item: full, IndexName: "Docs"}, false},
		{"no item", Task{Kind: TaskDelete, IndexName: "Docs"}, false},
		{"nil guid", Task{Item: WebPageItem{}, Kind: TaskDelete, IndexName: "Docs"}, false},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
		})
	}
}

func TestIndexConfiguration_Clone(t *testing.T) {
	cfg := IndexConfiguration{
		Name:      "Docs",
		Languages: []string{"en"},
		Paths:     []IncludedPath{{Pattern: "/Articles/%", ContentTypes: []string{"Article"}}},
	}
	cp := cfg.Clone()
	cp.Languages[0] = "de"
	cp.Paths[0].ContentTypes[0] = "Product"
	assert.Equal(t, "en", cfg.Languages[0])
	assert.Equal(t, "Article", cfg.Paths[0].ContentTypes[0])

	assert.True(t, cfg.HasLanguage("EN"))
	assert.False(t, cfg.HasLanguage("de"))
	assert.True(t, IndexConfiguration{}.HasLanguage("de"))

	assert.True(t, cfg.Paths[0].Wildcard())
	assert.Equal(t, "/Articles/", cfg.Paths[0].Prefix())
	assert.True(t, SameName("docs", "DOCS"))
}
