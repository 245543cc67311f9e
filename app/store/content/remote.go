package content

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/lcw/v2"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// RemoteParams configures Remote source
type RemoteParams struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	Retries  int
	URLCache time.Duration // ttl of resolved page urls, 0 disables cache
}

// Remote is Source reading content API exposed by the CMS host
type Remote struct {
	RemoteParams
	client   *http.Client
	urlCache *lcw.ExpirableCache[string]
}

// NewRemote makes Remote source with http client
func NewRemote(params RemoteParams) (*Remote, error) {
	if params.BaseURL == "" {
		return nil, errors.New("empty cms base url")
	}
	if params.Timeout == 0 {
		params.Timeout = 10 * time.Second
	}
	if params.Retries <= 0 {
		params.Retries = 3
	}
	res := &Remote{RemoteParams: params, client: &http.Client{Timeout: params.Timeout}}
	if params.URLCache > 0 {
		o := lcw.NewOpts[string]()
		cache, err := lcw.NewExpirableCache(o.MaxKeys(10000), o.TTL(params.URLCache))
		if err != nil {
			return nil, errors.Wrap(err, "can't make url cache")
		}
		res.urlCache = cache
	}
	log.Printf("[INFO] cms content source %s", params.BaseURL)
	return res, nil
}

// WebPages lists pages of the channel, filtered by languages and path patterns on CMS side
func (r *Remote) WebPages(ctx context.Context, q Query) ([]store.WebPageItem, error) {
	params := url.Values{}
	params.Set("channel", q.Channel)
	for _, l := range q.Languages {
		params.Add("language", l)
	}
	for _, p := range q.Paths {
		params.Add("path", p.Pattern)
	}
	res := []store.WebPageItem{}
	err := r.get(ctx, "/pages", params, &res)
	return res, err
}

// ReusableItems lists reusable items of requested types
func (r *Remote) ReusableItems(ctx context.Context, q Query) ([]store.ReusableItem, error) {
	res := []store.ReusableItem{}
	if len(q.ReusableTypes) == 0 {
		return res, nil
	}
	params := url.Values{}
	for _, t := range q.ReusableTypes {
		params.Add("type", t)
	}
	for _, l := range q.Languages {
		params.Add("language", l)
	}
	err := r.get(ctx, "/reusable", params, &res)
	return res, err
}

// PageURL resolves live url of the page, cached if enabled
func (r *Remote) PageURL(ctx context.Context, item store.WebPageItem) (string, error) {
	load := func() (string, error) {
		resp := struct {
			URL string `json:"url"`
		}{}
		if err := r.get(ctx, "/url", itemParams(item), &resp); err != nil {
			return "", err
		}
		return resp.URL, nil
	}
	if r.urlCache == nil {
		return load()
	}
	return r.urlCache.Get(item.GUID.String()+"/"+item.Language, load)
}

// Fields returns item fields as strings, rich text fields contain html
func (r *Remote) Fields(ctx context.Context, item store.EventItem) (map[string]string, error) {
	res := map[string]string{}
	err := r.get(ctx, "/fields", itemParams(item), &res)
	return res, err
}

// ReferencingPages lists pages embedding the reusable item
func (r *Remote) ReferencingPages(ctx context.Context, item store.ReusableItem) ([]store.WebPageItem, error) {
	res := []store.WebPageItem{}
	err := r.get(ctx, "/references", itemParams(item), &res)
	return res, err
}

func itemParams(item store.EventItem) url.Values {
	info := item.Info()
	params := url.Values{}
	params.Set("guid", info.GUID.String())
	params.Set("language", info.Language)
	if page, ok := item.(store.WebPageItem); ok {
		params.Set("channel", page.Channel)
	}
	return params
}

// get calls CMS endpoint with retries and decodes json response into res.
// 404 is not retried.
func (r *Remote) get(ctx context.Context, path string, params url.Values, res interface{}) error {
	u := strings.TrimSuffix(r.BaseURL, "/") + path + "?" + params.Encode()
	var notFound bool
	err := repeater.NewDefault(r.Retries, 100*time.Millisecond).Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
		if err != nil {
			return err
		}
		if r.Token != "" {
			req.Header.Set("Authorization", "Bearer "+r.Token)
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return errors.Wrapf(err, "request %s failed", path)
		}
		defer resp.Body.Close() // nolint
		if resp.StatusCode == http.StatusNotFound {
			notFound = true
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return errors.Errorf("cms respond %d on %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
		}
		return errors.Wrapf(json.NewDecoder(resp.Body).Decode(res), "can't decode %s response", path)
	})
	if err != nil {
		return err
	}
	if notFound {
		return errors.Wrapf(ErrNotFound, "%s?%s", path, params.Encode())
	}
	return nil
}
