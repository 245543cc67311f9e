package search

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// MockRemote is a mock type for the Remote type
type MockRemote struct {
	mock.Mock
}

// Upsert provides a mock function with given fields: ctx, indexName, docs
func (_m *MockRemote) Upsert(ctx context.Context, indexName string, docs []*store.Document) (int, error) {
	ret := _m.Called(ctx, indexName, docs)
	return ret.Int(0), ret.Error(1)
}

// Delete provides a mock function with given fields: ctx, indexName, objectIDs
func (_m *MockRemote) Delete(ctx context.Context, indexName string, objectIDs []string) (int, error) {
	ret := _m.Called(ctx, indexName, objectIDs)
	return ret.Int(0), ret.Error(1)
}

// Clear provides a mock function with given fields: ctx, indexName
func (_m *MockRemote) Clear(ctx context.Context, indexName string) error {
	ret := _m.Called(ctx, indexName)
	return ret.Error(0)
}

// SetSettings provides a mock function with given fields: ctx, indexName, settings
func (_m *MockRemote) SetSettings(ctx context.Context, indexName string, settings IndexSettings) error {
	ret := _m.Called(ctx, indexName, settings)
	return ret.Error(0)
}

// ListIndices provides a mock function with given fields: ctx
func (_m *MockRemote) ListIndices(ctx context.Context) ([]IndexStatistics, error) {
	ret := _m.Called(ctx)
	var r0 []IndexStatistics
	if v := ret.Get(0); v != nil {
		r0 = v.([]IndexStatistics)
	}
	return r0, ret.Error(1)
}

// Close provides a mock function with given fields:
func (_m *MockRemote) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}
