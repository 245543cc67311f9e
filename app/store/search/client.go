package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/content"
)

// Client is the search-side facade used by processor and admin api
type Client struct {
	remote   Remote
	registry *Registry
	source   content.Source
	hooks    *http.Client
}

// NewClient makes Client. source is used by rebuild to find content in scope of the index.
func NewClient(remote Remote, registry *Registry, source content.Source) *Client {
	return &Client{remote: remote, registry: registry, source: source, hooks: &http.Client{Timeout: 10 * time.Second}}
}

// Upsert passes documents to remote index and returns number of acknowledged ones
func (c *Client) Upsert(ctx context.Context, indexName string, docs []*store.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	return c.remote.Upsert(ctx, indexName, docs)
}

// Delete removes documents from remote index and returns number of acknowledged ones
func (c *Client) Delete(ctx context.Context, indexName string, objectIDs []string) (int, error) {
	if len(objectIDs) == 0 {
		return 0, nil
	}
	return c.remote.Delete(ctx, indexName, objectIDs)
}

// Rebuild clears remote index and enqueues all content in scope of the index as publish tasks.
// Content is queried before clearing, so failed query leaves remote index as is.
// Cancellation after clearing leaves remote index empty until the next rebuild.
func (c *Client) Rebuild(ctx context.Context, indexName string, queue Enqueuer) (int, error) {
	ri, ok := c.registry.entry(indexName)
	if !ok {
		return 0, errors.Wrapf(ErrIndexNotFound, "%q", indexName)
	}
	cfg := ri.cfg

	items, err := c.itemsInScope(ctx, cfg)
	if err != nil {
		return 0, errors.Wrapf(err, "can't query content of index %q", cfg.Name)
	}

	if err = c.remote.Clear(ctx, cfg.Name); err != nil {
		return 0, err
	}
	if settings := ri.strategy.IndexSettings(); !settings.Empty() {
		if err = c.remote.SetSettings(ctx, cfg.Name, settings); err != nil {
			return 0, err
		}
	}

	queued := 0
	for _, item := range items {
		if err = ctx.Err(); err != nil {
			return queued, err
		}
		if e := queue.Enqueue(store.Task{Item: item, Kind: store.TaskPublish, IndexName: cfg.Name}); e != nil {
			if errors.Cause(e) == ErrInvalidTask {
				log.Printf("[DEBUG] skip %s in rebuild of %q, %v", item.Info().GUID, cfg.Name, e)
				continue
			}
			log.Printf("[WARN] can't enqueue %s for rebuild of %q, %v", item.Info().GUID, cfg.Name, e)
			continue
		}
		queued++
	}
	log.Printf("[INFO] rebuild of index %q, %d items queued", cfg.Name, queued)

	if cfg.RebuildHook != "" {
		if err = c.notifyHook(ctx, cfg, queued); err != nil {
			log.Printf("[WARN] rebuild hook of %q failed, %v", cfg.Name, err)
		}
	}
	return queued, nil
}

// itemsInScope lists pages and reusable items matching the index
func (c *Client) itemsInScope(ctx context.Context, cfg store.IndexConfiguration) ([]store.EventItem, error) {
	q := content.Query{
		Channel:       cfg.ChannelName,
		Languages:     cfg.Languages,
		Paths:         cfg.Paths,
		ReusableTypes: cfg.ReusableContentTypes,
	}
	res := []store.EventItem{}

	pages, err := c.source.WebPages(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		if Matches(p, cfg) {
			res = append(res, p)
		}
	}

	if len(cfg.ReusableContentTypes) == 0 {
		return res, nil
	}
	reusable, err := c.source.ReusableItems(ctx, q)
	if err != nil {
		return nil, err
	}
	for _, r := range reusable {
		if store.ContainsFold(cfg.ReusableContentTypes, r.ContentType) && Matches(r, cfg) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (c *Client) notifyHook(ctx context.Context, cfg store.IndexConfiguration, queued int) error {
	body, err := json.Marshal(struct {
		Index  string `json:"index"`
		Queued int    `json:"queued"`
	}{Index: cfg.Name, Queued: queued})
	if err != nil {
		return err
	}
	return repeater.NewDefault(3, time.Second).Do(ctx, func() error {
		req, e := http.NewRequestWithContext(ctx, http.MethodPost, cfg.RebuildHook, bytes.NewReader(body))
		if e != nil {
			return e
		}
		req.Header.Set("Content-Type", "application/json")
		resp, e := c.hooks.Do(req)
		if e != nil {
			return e
		}
		defer resp.Body.Close() // nolint
		if resp.StatusCode >= 300 {
			return errors.Errorf("hook respond %d", resp.StatusCode)
		}
		return nil
	})
}

// Statistics lists all remote indexes
func (c *Client) Statistics(ctx context.Context) ([]IndexStatistics, error) {
	return c.remote.ListIndices(ctx)
}

// ListIndexes returns statistics of registered indexes in registration order.
// Indexes not built yet are zero-filled, remote indexes not registered here are skipped.
func (c *Client) ListIndexes(ctx context.Context) ([]IndexStatistics, error) {
	stats, err := c.remote.ListIndices(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]IndexStatistics, len(stats))
	for _, st := range stats {
		byName[store.NormalizeName(st.Name)] = st
	}

	cfgs := c.registry.All()
	res := make([]IndexStatistics, 0, len(cfgs))
	for _, cfg := range cfgs {
		st := byName[store.NormalizeName(cfg.Name)]
		st.ID, st.Name = cfg.ID, cfg.Name
		res = append(res, st)
	}
	return res, nil
}

// Close remote
func (c *Client) Close() error {
	return c.remote.Close()
}
