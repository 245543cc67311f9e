package search

import (
	"context"

	log "github.com/go-pkgz/lgr"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// Enqueuer accepts tasks for asynchronous processing
type Enqueuer interface {
	Enqueue(task store.Task) error
}

// TaskLogger turns content events into queue tasks for every index the item is in scope of.
// It runs inside CMS event hooks, so it never fails, problems are logged.
type TaskLogger struct {
	registry *Registry
	queue    Enqueuer
}

// NewTaskLogger makes TaskLogger pushing tasks to the queue
func NewTaskLogger(registry *Registry, queue Enqueuer) *TaskLogger {
	return &TaskLogger{registry: registry, queue: queue}
}

// HandleEvent logs tasks for changed web page. Strategy may veto the page or return its substitute,
// only candidates with the guid of the changed page are enqueued. Returns number of enqueued tasks.
func (l *TaskLogger) HandleEvent(ctx context.Context, item store.WebPageItem, event store.EventKind) int {
	kind := store.TaskKindFromEvent(event)
	if kind == store.TaskUnknown {
		log.Printf("[DEBUG] ignore %q event for page %s", event, item.GUID)
		return 0
	}

	count := 0
	for _, ri := range l.registry.entries() {
		if !Matches(item, ri.cfg) {
			continue
		}
		candidates, err := ri.strategy.FindItemsToReindexWebPage(ctx, item)
		if err != nil {
			log.Printf("[WARN] can't find items to reindex for page %s in index %q, %v", item.GUID, ri.cfg.Name, err)
			continue
		}
		for _, c := range candidates {
			if c == nil || c.Info().GUID != item.GUID {
				continue
			}
			if l.enqueue(store.Task{Item: c, Kind: kind, IndexName: ri.cfg.Name}) {
				count++
			}
		}
	}
	return count
}

// HandleReusableItemEvent logs update tasks for all items the strategy fans reusable item out to.
// Reusable items never produce delete tasks.
func (l *TaskLogger) HandleReusableItemEvent(ctx context.Context, item store.ReusableItem, event store.EventKind) int {
	if store.TaskKindFromEvent(event) == store.TaskUnknown {
		log.Printf("[DEBUG] ignore %q event for reusable item %s", event, item.GUID)
		return 0
	}

	count := 0
	for _, ri := range l.registry.entries() {
		if !Matches(item, ri.cfg) {
			continue
		}
		candidates, err := ri.strategy.FindItemsToReindexReusable(ctx, item)
		if err != nil {
			log.Printf("[WARN] can't find items to reindex for reusable item %s in index %q, %v", item.GUID, ri.cfg.Name, err)
			continue
		}
		for _, c := range candidates {
			if c == nil {
				continue
			}
			if l.enqueue(store.Task{Item: c, Kind: store.TaskUpdate, IndexName: ri.cfg.Name}) {
				count++
			}
		}
	}
	return count
}

func (l *TaskLogger) enqueue(task store.Task) bool {
	if err := l.queue.Enqueue(task); err != nil {
		if errors.Cause(err) == ErrInvalidTask {
			log.Printf("[DEBUG] skip %s of %s to %q, %v", task.Kind, task.Item.Info().GUID, task.IndexName, err)
			return false
		}
		log.Printf("[WARN] can't enqueue %s of %s to %q, %v", task.Kind, task.Item.Info().GUID, task.IndexName, err)
		return false
	}
	return true
}
