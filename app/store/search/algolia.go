package search

import (
	"context"
	"time"

	"github.com/algolia/algoliasearch-client-go/v4/algolia/search"
	log "github.com/go-pkgz/lgr"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// algolia batch endpoint accepts up to 1000 operations per request
const algoliaBatchSize = 1000

// algoliaRemote implements Remote with algolia api client.
// Client keeps no per-index state, so indexes are addressed by name on every call.
type algoliaRemote struct {
	client *search.APIClient
}

func newAlgoliaRemote(params RemoteParams) (Remote, error) {
	if params.AppID == "" || params.APIKey == "" {
		return nil, errors.New("algolia application id and api key are required")
	}
	client, err := search.NewClient(params.AppID, params.APIKey)
	if err != nil {
		return nil, errors.Wrap(err, "can't make algolia client")
	}
	log.Printf("[INFO] algolia remote for application %s", params.AppID)
	return &algoliaRemote{client: client}, nil
}

// Upsert adds or replaces documents, returns number of object ids acknowledged
func (a *algoliaRemote) Upsert(ctx context.Context, indexName string, docs []*store.Document) (int, error) {
	requests := make([]search.BatchRequest, 0, len(docs))
	for _, doc := range docs {
		requests = append(requests, search.BatchRequest{Action: search.ACTION_ADD_OBJECT, Body: doc.Map()})
	}
	return a.batch(ctx, indexName, requests)
}

// Delete removes documents by object ids, returns number of object ids acknowledged
func (a *algoliaRemote) Delete(ctx context.Context, indexName string, objectIDs []string) (int, error) {
	requests := make([]search.BatchRequest, 0, len(objectIDs))
	for _, id := range objectIDs {
		requests = append(requests, search.BatchRequest{
			Action: search.ACTION_DELETE_OBJECT,
			Body:   map[string]any{store.FieldObjectID: id},
		})
	}
	return a.batch(ctx, indexName, requests)
}

func (a *algoliaRemote) batch(ctx context.Context, indexName string, requests []search.BatchRequest) (int, error) {
	acknowledged := 0
	for len(requests) > 0 {
		n := len(requests)
		if n > algoliaBatchSize {
			n = algoliaBatchSize
		}
		req := a.client.NewApiBatchRequest(indexName, search.NewBatchWriteParams(requests[:n]))
		resp, err := a.client.Batch(req, search.WithContext(ctx))
		if err != nil {
			return acknowledged, errors.Wrapf(err, "batch to algolia index %q failed", indexName)
		}
		acknowledged += len(resp.ObjectIDs)
		requests = requests[n:]
	}
	return acknowledged, nil
}

// Clear removes all documents of the index, settings are kept
func (a *algoliaRemote) Clear(ctx context.Context, indexName string) error {
	_, err := a.client.ClearObjects(a.client.NewApiClearObjectsRequest(indexName), search.WithContext(ctx))
	return errors.Wrapf(err, "can't clear algolia index %q", indexName)
}

// SetSettings applies attributes declared by strategy
func (a *algoliaRemote) SetSettings(ctx context.Context, indexName string, settings IndexSettings) error {
	is := search.NewEmptyIndexSettings()
	if len(settings.Searchable) > 0 {
		is.SetSearchableAttributes(settings.Searchable)
	}
	if len(settings.Retrievable) > 0 {
		is.SetAttributesToRetrieve(settings.Retrievable)
	}
	if len(settings.Facets) > 0 {
		is.SetAttributesForFaceting(settings.FacetAttributes())
	}
	_, err := a.client.SetSettings(a.client.NewApiSetSettingsRequest(indexName, is), search.WithContext(ctx))
	return errors.Wrapf(err, "can't set settings of algolia index %q", indexName)
}

// ListIndices returns all indexes of the application with counters
func (a *algoliaRemote) ListIndices(ctx context.Context) ([]IndexStatistics, error) {
	resp, err := a.client.ListIndices(a.client.NewApiListIndicesRequest(), search.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "can't list algolia indexes")
	}
	res := make([]IndexStatistics, 0, len(resp.Items))
	for _, idx := range resp.Items {
		st := IndexStatistics{
			Name:           idx.Name,
			Entries:        int64(idx.Entries),
			DataSize:       int64(idx.DataSize),
			FileSize:       int64(idx.FileSize),
			LastBuildTimeS: int64(idx.LastBuildTimeS),
			PendingTasks:   int64(idx.NumberOfPendingTasks),
		}
		if ts, e := time.Parse(time.RFC3339, idx.UpdatedAt); e == nil {
			st.UpdatedAt = ts
		}
		res = append(res, st)
	}
	return res, nil
}

// Close does nothing, http client has no resources to release
func (a *algoliaRemote) Close() error {
	return nil
}
