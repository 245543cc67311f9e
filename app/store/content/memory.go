package content

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// ErrNotFound returned for unknown items
var ErrNotFound = errors.New("content item not found")

// Memory is in-memory Source, used for tests and local runs without CMS
type Memory struct {
	mu         sync.RWMutex
	pages      []store.WebPageItem
	reusable   []store.ReusableItem
	urls       map[itemKey]string
	fields     map[itemKey]map[string]string
	references map[itemKey][]uuid.UUID
}

type itemKey struct {
	guid uuid.UUID
	lang string
}

func keyOf(item store.EventItem) itemKey {
	info := item.Info()
	return itemKey{guid: info.GUID, lang: info.Language}
}

// NewMemory makes empty in-memory source
func NewMemory() *Memory {
	return &Memory{
		urls:       map[itemKey]string{},
		fields:     map[itemKey]map[string]string{},
		references: map[itemKey][]uuid.UUID{},
	}
}

// AddPage adds web page with its url and fields
func (m *Memory) AddPage(page store.WebPageItem, url string, fields map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = append(m.pages, page)
	m.urls[keyOf(page)] = url
	m.fields[keyOf(page)] = fields
}

// AddReusable adds reusable item with its fields, referencedBy lists guids of pages embedding the item
func (m *Memory) AddReusable(item store.ReusableItem, fields map[string]string, referencedBy ...uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reusable = append(m.reusable, item)
	m.fields[keyOf(item)] = fields
	m.references[keyOf(item)] = referencedBy
}

// WebPages returns pages of the channel in requested languages
func (m *Memory) WebPages(_ context.Context, q Query) ([]store.WebPageItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := []store.WebPageItem{}
	for _, p := range m.pages {
		if q.Channel != "" && !store.SameName(q.Channel, p.Channel) {
			continue
		}
		if len(q.Languages) > 0 && !store.ContainsFold(q.Languages, p.Language) {
			continue
		}
		res = append(res, p)
	}
	return res, nil
}

// ReusableItems returns reusable items of requested types and languages
func (m *Memory) ReusableItems(_ context.Context, q Query) ([]store.ReusableItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := []store.ReusableItem{}
	for _, r := range m.reusable {
		if !store.ContainsFold(q.ReusableTypes, r.ContentType) {
			continue
		}
		if len(q.Languages) > 0 && !store.ContainsFold(q.Languages, r.Language) {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

// PageURL returns url of the page
func (m *Memory) PageURL(_ context.Context, item store.WebPageItem) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	url, ok := m.urls[keyOf(item)]
	if !ok {
		return "", errors.Wrapf(ErrNotFound, "page %s", item.GUID)
	}
	return url, nil
}

// Fields returns item fields
func (m *Memory) Fields(_ context.Context, item store.EventItem) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fields, ok := m.fields[keyOf(item)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "item %s", item.Info().GUID)
	}
	return fields, nil
}

// ReferencingPages returns pages embedding the reusable item, in the item language
func (m *Memory) ReferencingPages(_ context.Context, item store.ReusableItem) ([]store.WebPageItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := []store.WebPageItem{}
	for _, guid := range m.references[keyOf(item)] {
		for _, p := range m.pages {
			if p.GUID == guid && p.Language == item.Language {
				res = append(res, p)
			}
		}
	}
	return res, nil
}
