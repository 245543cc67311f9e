package search

import (
	"context"
	"html"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/content"
)

// PageContentStrategyName is the name PageContentStrategy registered with
const PageContentStrategyName = "page-content"

// document fields set by PageContentStrategy
const (
	fieldTitle    = "Title"
	fieldContent  = "Content"
	fieldHeadings = "Headings"
	fieldPath     = "TreePath"
	fieldOrder    = "Order"
)

// PageContentStrategy indexes text of web page fields. Html is stripped, headings are kept
// in a separate field. Changed reusable items reindex all pages embedding them.
type PageContentStrategy struct {
	DefaultStrategy
	source content.Source
	policy *bluemonday.Policy
}

// NewPageContentStrategy makes strategy reading fields from the source
func NewPageContentStrategy(source content.Source) *PageContentStrategy {
	return &PageContentStrategy{source: source, policy: bluemonday.StrictPolicy()}
}

// IndexSettings makes text searchable and allows faceting by content type and language
func (s *PageContentStrategy) IndexSettings() IndexSettings {
	return IndexSettings{
		Searchable:  []string{fieldTitle, fieldHeadings, fieldContent},
		Retrievable: []string{fieldTitle, fieldHeadings, store.FieldURL, store.FieldContentType},
		Facets: []Facet{
			{Attribute: store.FieldContentType, Mode: FacetSearchable},
			{Attribute: store.FieldLanguage, Mode: FacetFilterOnly},
		},
	}
}

// MapToDocuments makes a single document of the web page. Secured pages, reusable items
// and items gone from CMS are excluded.
func (s *PageContentStrategy) MapToDocuments(ctx context.Context, item store.EventItem) ([]*store.Document, error) {
	page, ok := webPage(item)
	if !ok || page.Secured {
		return nil, nil
	}
	fields, err := s.source.Fields(ctx, page)
	if errors.Cause(err) == content.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "can't read fields of %s", page.GUID)
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	texts := []string{}
	headings := store.Array{}
	for _, name := range names {
		raw := fields[name]
		if txt := s.plainText(raw); txt != "" {
			texts = append(texts, txt)
		}
		for _, h := range extractHeadings(raw) {
			headings = append(headings, store.String(h))
		}
	}

	doc := store.NewDocument().
		Set(fieldTitle, store.String(page.DisplayName)).
		Set(fieldHeadings, headings).
		Set(fieldContent, store.String(strings.Join(texts, " "))).
		Set(fieldPath, store.String(page.TreePath)).
		Set(fieldOrder, store.Number(page.Order))
	return []*store.Document{doc}, nil
}

// FindItemsToReindexReusable returns pages embedding the reusable item
func (s *PageContentStrategy) FindItemsToReindexReusable(ctx context.Context, item store.ReusableItem) ([]store.EventItem, error) {
	pages, err := s.source.ReferencingPages(ctx, item)
	if err != nil {
		return nil, errors.Wrapf(err, "can't find pages referencing %s", item.GUID)
	}
	res := make([]store.EventItem, 0, len(pages))
	for _, p := range pages {
		res = append(res, p)
	}
	return res, nil
}

// plainText strips all tags and collapses whitespace, tags are word separators
func (s *PageContentStrategy) plainText(raw string) string {
	txt := html.UnescapeString(s.policy.Sanitize(strings.ReplaceAll(raw, "<", " <")))
	return strings.Join(strings.Fields(txt), " ")
}

func extractHeadings(raw string) []string {
	if !strings.Contains(raw, "<h") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil
	}
	res := []string{}
	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		if txt := strings.Join(strings.Fields(sel.Text()), " "); txt != "" {
			res = append(res, txt)
		}
	})
	return res
}
