package search

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// Remote is the search service keeping documents of all indexes
type Remote interface {
	Upsert(ctx context.Context, indexName string, docs []*store.Document) (int, error)
	Delete(ctx context.Context, indexName string, objectIDs []string) (int, error)
	Clear(ctx context.Context, indexName string) error
	SetSettings(ctx context.Context, indexName string, settings IndexSettings) error
	ListIndices(ctx context.Context) ([]IndexStatistics, error)
	Close() error
}

// IndexStatistics describes remote index. ID is set for registered indexes only.
type IndexStatistics struct {
	ID             int64     `json:"id,omitempty"`
	Name           string    `json:"name"`
	Entries        int64     `json:"entries"`
	DataSize       int64     `json:"data_size"`
	FileSize       int64     `json:"file_size"`
	LastBuildTimeS int64     `json:"last_build_time_s"`
	PendingTasks   int64     `json:"pending_tasks"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// RemoteParams configures remote search service
type RemoteParams struct {
	Type      string // algolia, bleve or noop
	AppID     string
	APIKey    string
	IndexPath string // bleve only, empty keeps indexes in memory
	Analyzer  string // bleve only
}

type remoteFactory func(RemoteParams) (Remote, error)

var remoteMap = map[string]remoteFactory{
	"algolia": newAlgoliaRemote,
	"bleve":   newBleveRemote,
	"noop":    func(RemoteParams) (Remote, error) { return &noopRemote{}, nil },
}

// NewRemote makes remote search service of requested type
func NewRemote(params RemoteParams) (Remote, error) {
	f, has := remoteMap[params.Type]
	if !has {
		available := make([]string, 0, len(remoteMap))
		for k := range remoteMap {
			available = append(available, k)
		}
		sort.Strings(available)
		return nil, errors.Errorf("no search remote %q, available remotes %v", params.Type, available)
	}
	return f(params)
}
