// Package content provides access to CMS content used by search indexing: listing items
// in scope of an index for rebuild, resolving live page URLs and reading item fields.
package content

import (
	"context"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// Query limits items returned by Source. Sources may return a superset,
// callers filter the result with their own scope rules.
type Query struct {
	Channel       string
	Languages     []string
	Paths         []store.IncludedPath
	ReusableTypes []string
}

// Source is the CMS content collaborator
type Source interface {
	WebPages(ctx context.Context, q Query) ([]store.WebPageItem, error)
	ReusableItems(ctx context.Context, q Query) ([]store.ReusableItem, error)
	PageURL(ctx context.Context, item store.WebPageItem) (string, error)
	Fields(ctx context.Context, item store.EventItem) (map[string]string, error)
	ReferencingPages(ctx context.Context, item store.ReusableItem) ([]store.WebPageItem, error)
}
