package search

import (
	"context"

	log "github.com/go-pkgz/lgr"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// noopRemote is used when search is not enabled, everything is acknowledged and dropped
type noopRemote struct{}

func (*noopRemote) Upsert(_ context.Context, indexName string, docs []*store.Document) (int, error) {
	log.Printf("[DEBUG] search not enabled, skip %d documents of %q", len(docs), indexName)
	return len(docs), nil
}

func (*noopRemote) Delete(_ context.Context, indexName string, objectIDs []string) (int, error) {
	log.Printf("[DEBUG] search not enabled, skip delete of %d documents of %q", len(objectIDs), indexName)
	return len(objectIDs), nil
}

func (*noopRemote) Clear(context.Context, string) error { return nil }

func (*noopRemote) SetSettings(context.Context, string, IndexSettings) error { return nil }

func (*noopRemote) ListIndices(context.Context) ([]IndexStatistics, error) {
	return []IndexStatistics{}, nil
}

func (*noopRemote) Close() error { return nil }
