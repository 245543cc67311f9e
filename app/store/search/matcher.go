package search

import (
	"strings"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// Matches decides if changed item is in scope of the index.
// Reusable items have no tree position and are scoped by language only.
// Web pages should match content type and path of at least one included path.
func Matches(item store.EventItem, cfg store.IndexConfiguration) bool {
	if item == nil {
		return false
	}
	info := item.Info()
	if !cfg.HasLanguage(info.Language) {
		return false
	}

	page, isPage := webPage(item)
	if !isPage {
		return true
	}
	if cfg.ChannelName != "" && page.Channel != "" && !store.SameName(cfg.ChannelName, page.Channel) {
		return false
	}

	for _, p := range cfg.Paths {
		if matchContentType(p, info.ContentType) && matchPath(p, page.TreePath) {
			return true
		}
	}
	return false
}

func matchContentType(p store.IncludedPath, contentType string) bool {
	return len(p.ContentTypes) == 0 || store.ContainsFold(p.ContentTypes, contentType)
}

// matchPath compares tree path with pattern. Wildcard pattern matches the subtree under
// stripped prefix, otherwise paths should be equal. Empty tree path (draft or detached item) never matches.
func matchPath(p store.IncludedPath, treePath string) bool {
	if treePath == "" {
		return false
	}
	if p.Wildcard() {
		prefix := strings.ToLower(p.Prefix())
		if prefix == "" {
			return false
		}
		return strings.HasPrefix(strings.ToLower(treePath), prefix)
	}
	return strings.EqualFold(treePath, p.Pattern)
}

func webPage(item store.EventItem) (store.WebPageItem, bool) {
	switch it := item.(type) {
	case store.WebPageItem:
		return it, true
	case *store.WebPageItem:
		if it != nil {
			return *it, true
		}
	}
	return store.WebPageItem{}, false
}
