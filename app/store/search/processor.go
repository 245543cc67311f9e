package search

import (
	"context"
	"sync/atomic"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/syncs"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// URLResolver resolves live url of the web page
type URLResolver interface {
	PageURL(ctx context.Context, item store.WebPageItem) (string, error)
}

// Uploader writes documents to the remote index, counts are acknowledged by remote side
type Uploader interface {
	Upsert(ctx context.Context, indexName string, docs []*store.Document) (int, error)
	Delete(ctx context.Context, indexName string, objectIDs []string) (int, error)
}

// ProcessorParams defines processing options
type ProcessorParams struct {
	Concurrency int // number of index groups processed in parallel, 1 by default
}

// Processor maps queued tasks to documents and sends them to the remote index, group per index
type Processor struct {
	ProcessorParams
	registry *Registry
	uploader Uploader
	urls     URLResolver
}

// NewProcessor makes Processor. urls may be nil, then pages get empty url.
func NewProcessor(registry *Registry, uploader Uploader, urls URLResolver, params ProcessorParams) *Processor {
	if params.Concurrency <= 0 {
		params.Concurrency = 1
	}
	return &Processor{ProcessorParams: params, registry: registry, uploader: uploader, urls: urls}
}

// Process handles batch of tasks and returns number of items acknowledged by remote index.
// Failure of one index group doesn't affect others.
func (p *Processor) Process(ctx context.Context, tasks []store.Task) int {
	groups := map[string][]store.Task{}
	order := []string{}
	for _, t := range tasks {
		key := store.NormalizeName(t.IndexName)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	if p.Concurrency == 1 || len(order) == 1 {
		total := 0
		for _, key := range order {
			total += p.processGroup(ctx, groups[key])
		}
		return total
	}

	var total int64
	wg := syncs.NewSizedGroup(p.Concurrency, syncs.Context(ctx))
	for _, key := range order {
		group := groups[key]
		wg.Go(func(ctx context.Context) {
			atomic.AddInt64(&total, int64(p.processGroup(ctx, group)))
		})
	}
	wg.Wait()
	return int(total)
}

func (p *Processor) processGroup(ctx context.Context, tasks []store.Task) int {
	name := tasks[0].IndexName
	count, err := p.upload(ctx, name, tasks)
	if err != nil {
		log.Printf("[WARN] failed to process %d tasks of index %q, %v", len(tasks), name, err)
		return 0
	}
	return count
}

func (p *Processor) upload(ctx context.Context, name string, tasks []store.Task) (int, error) {
	ri, ok := p.registry.entry(name)
	if !ok {
		return 0, errors.Wrapf(ErrIndexNotFound, "%q", name)
	}

	deleteIDs := []string{}
	docs := []*store.Document{}
	for _, t := range tasks {
		if t.Kind == store.TaskDelete {
			deleteIDs = append(deleteIDs, t.Item.Info().ObjectID())
			continue
		}
		mapped, err := ri.strategy.MapToDocuments(ctx, t.Item)
		if err != nil {
			log.Printf("[WARN] can't map %s to documents of index %q, %v", t.Item.Info().GUID, ri.cfg.Name, err)
			continue
		}
		added := 0
		for _, doc := range mapped {
			if doc == nil {
				continue
			}
			docs = append(docs, p.enrich(ctx, doc, t.Item))
			added++
		}
		if added == 0 {
			deleteIDs = append(deleteIDs, t.Item.Info().ObjectID())
		}
	}

	count := 0
	if len(deleteIDs) > 0 {
		n, err := p.uploader.Delete(ctx, ri.cfg.Name, deleteIDs)
		if err != nil {
			return 0, errors.Wrap(err, "delete failed")
		}
		count += n
	}
	if len(docs) > 0 {
		n, err := p.uploader.Upsert(ctx, ri.cfg.Name, docs)
		if err != nil {
			return 0, errors.Wrap(err, "upsert failed")
		}
		count += n
	}
	log.Printf("[DEBUG] index %q, %d deleted and %d upserted of %d tasks", ri.cfg.Name, len(deleteIDs), len(docs), len(tasks))
	return count, nil
}

// enrich sets reserved fields. Url of the page is kept if strategy set it,
// resolution failure leaves it empty.
func (p *Processor) enrich(ctx context.Context, doc *store.Document, item store.EventItem) *store.Document {
	info := item.Info()
	doc.Set(store.FieldObjectID, store.String(info.ObjectID())).
		Set(store.FieldContentType, store.String(info.ContentType)).
		Set(store.FieldItemGUID, store.String(info.GUID.String())).
		Set(store.FieldLanguage, store.String(info.Language))

	page, isPage := webPage(item)
	if !isPage || doc.Has(store.FieldURL) {
		return doc
	}
	url := ""
	if p.urls != nil {
		u, err := p.urls.PageURL(ctx, page)
		if err != nil {
			log.Printf("[DEBUG] can't resolve url of %s, %v", info.GUID, err)
		} else {
			url = u
		}
	}
	doc.Set(store.FieldURL, store.String(url))
	return doc
}
