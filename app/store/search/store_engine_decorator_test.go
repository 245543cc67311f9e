package search

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/engine"
)

func TestDecorator(t *testing.T) {
	engineMock := &engine.MockInterface{}
	r := NewRegistry(nil)
	wEngine := WrapEngine(engineMock, r)

	docs := docsIndex()
	docs.ID = 0
	stored := docsIndex()
	engineMock.On("Create", docs).Return(int64(1), nil).Once()
	engineMock.On("List").Return([]store.IndexConfiguration{stored}, nil).Once()

	id, err := wEngine.Create(docs)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.True(t, r.Exists("Docs"), "registry reloaded after create")

	dup := docsIndex()
	dup.ID = 0
	dup.Name = "DOCS"
	_, err = wEngine.Create(dup)
	assert.Equal(t, ErrDuplicateIndex, errors.Cause(err), "rejected before storage")

	renamed := stored
	renamed.Name = "Articles"
	engineMock.On("Edit", renamed).Return(nil).Once()
	engineMock.On("List").Return([]store.IndexConfiguration{renamed}, nil).Once()
	require.NoError(t, wEngine.Edit(renamed))
	assert.True(t, r.Exists("articles"))
	assert.False(t, r.Exists("docs"))

	bad := renamed
	bad.StrategyName = "unknown"
	assert.Equal(t, ErrUnknownStrategy, errors.Cause(wEngine.Edit(bad)))

	engineMock.On("Delete", int64(1)).Return(nil).Once()
	engineMock.On("List").Return([]store.IndexConfiguration{}, nil).Once()
	require.NoError(t, wEngine.Delete(1))
	assert.Equal(t, 0, r.Len())

	engineMock.On("Delete", int64(5)).Return(engine.ErrNotFound).Once()
	assert.Equal(t, engine.ErrNotFound, wEngine.Delete(5))

	engineMock.On("List").Return(nil, errors.New("db closed")).Once()
	assert.Error(t, wEngine.Reload())

	engineMock.AssertExpectations(t)
	engineMock.AssertNumberOfCalls(t, "Create", 1)
	engineMock.AssertNumberOfCalls(t, "Edit", 1)
}

func TestDecorator_ReloadFailureKeepsChange(t *testing.T) {
	engineMock := &engine.MockInterface{}
	r := NewRegistry(nil)
	wEngine := WrapEngine(engineMock, r)

	cfg := docsIndex()
	cfg.ID = 0
	engineMock.On("Create", cfg).Return(int64(7), nil).Once()
	engineMock.On("List").Return(nil, errors.New("db closed")).Once()

	id, err := wEngine.Create(cfg)
	require.NoError(t, err, "stored change is not reported as failed")
	assert.Equal(t, int64(7), id)
	assert.Equal(t, 0, r.Len())
	engineMock.AssertExpectations(t)
	engineMock.On("List").Return([]store.IndexConfiguration{}, nil)
	assert.NoError(t, wEngine.Reload())
	mock.AssertExpectationsForObjects(t, engineMock)
}
