package search

import (
	"context"

	log "github.com/go-pkgz/lgr"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// ContentEvents is the set of hooks the CMS calls on content lifecycle changes
type ContentEvents struct {
	Logger *TaskLogger
}

// OnPublish handles published item
func (e ContentEvents) OnPublish(ctx context.Context, item store.EventItem) int {
	return e.Handle(ctx, item, store.EventPublish)
}

// OnDelete handles deleted item
func (e ContentEvents) OnDelete(ctx context.Context, item store.EventItem) int {
	return e.Handle(ctx, item, store.EventDelete)
}

// OnArchive handles archived item
func (e ContentEvents) OnArchive(ctx context.Context, item store.EventItem) int {
	return e.Handle(ctx, item, store.EventArchive)
}

// Handle dispatches event by item variant and returns number of enqueued tasks
func (e ContentEvents) Handle(ctx context.Context, item store.EventItem, event store.EventKind) int {
	switch it := item.(type) {
	case store.WebPageItem:
		return e.Logger.HandleEvent(ctx, it, event)
	case *store.WebPageItem:
		if it != nil {
			return e.Logger.HandleEvent(ctx, *it, event)
		}
	case store.ReusableItem:
		return e.Logger.HandleReusableItemEvent(ctx, it, event)
	case *store.ReusableItem:
		if it != nil {
			return e.Logger.HandleReusableItemEvent(ctx, *it, event)
		}
	}
	log.Printf("[WARN] unsupported event item %T", item)
	return 0
}
