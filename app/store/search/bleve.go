package search

import (
	"context"
	"crypto/sha1" //nolint:gosec // used for directory names only
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	bleveCustom "github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	bleveStandard "github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	bleveEn "github.com/blevesearch/bleve/v2/analysis/lang/en"
	bleveRu "github.com/blevesearch/bleve/v2/analysis/lang/ru"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	bleveSingle "github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	log "github.com/go-pkgz/lgr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

const keywordAnalyzer = "keyword_lower"

// keys of values kept inside of bleve index
const (
	internalNameKey     = "index_name"
	internalSettingsKey = "index_settings"
)

// Available text analyzers.
// Bleve supports a bit more languages that may be added,
// see https://github.com/blevesearch/bleve/tree/master/analysis/lang
var analyzerMapping = map[string]string{
	"standard": bleveStandard.Name,
	"english":  bleveEn.AnalyzerName,
	"russian":  bleveRu.AnalyzerName,
}

// bleveRemote keeps every search index as a separate local bleve index.
// Used for development and offline runs in place of algolia.
type bleveRemote struct {
	indexPath string
	analyzer  string

	lock   sync.Mutex
	shards map[string]*bleveShard
}

type bleveShard struct {
	name    string
	index   bleve.Index
	updated time.Time
}

func encodeIndexName(name string) string {
	h := sha1.Sum([]byte(store.NormalizeName(name))) //nolint:gosec
	return hex.EncodeToString(h[:])[:16]
}

func newBleveRemote(params RemoteParams) (Remote, error) {
	if params.Analyzer == "" {
		params.Analyzer = "standard"
	}
	analyzer, ok := analyzerMapping[params.Analyzer]
	if !ok {
		analyzers := make([]string, 0, len(analyzerMapping))
		for k := range analyzerMapping {
			analyzers = append(analyzers, k)
		}
		sort.Strings(analyzers)
		return nil, errors.Errorf("unknown analyzer %q, available analyzers for bleve: %v", params.Analyzer, analyzers)
	}

	res := &bleveRemote{indexPath: params.IndexPath, analyzer: analyzer, shards: map[string]*bleveShard{}}
	if params.IndexPath == "" {
		log.Printf("[INFO] bleve remote keeps indexes in memory")
		return res, nil
	}
	if err := os.MkdirAll(params.IndexPath, 0o700); err != nil {
		return nil, errors.Wrapf(err, "can't make index directory %s", params.IndexPath)
	}
	if err := res.openExisting(); err != nil {
		return nil, err
	}
	return res, nil
}

// openExisting opens all indexes left by previous runs, index name is kept inside of index
func (b *bleveRemote) openExisting() error {
	entries, err := os.ReadDir(b.indexPath)
	if err != nil {
		return errors.Wrapf(err, "can't read index directory %s", b.indexPath)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		fpath := path.Join(b.indexPath, e.Name())
		index, err := bleve.Open(fpath)
		if err != nil {
			log.Printf("[WARN] can't open search index %s, %v", fpath, err)
			continue
		}
		name, err := index.GetInternal([]byte(internalNameKey))
		if err != nil || len(name) == 0 {
			log.Printf("[WARN] search index %s has no name, skipped", fpath)
			_ = index.Close()
			continue
		}
		log.Printf("[INFO] opening existing search index %q from %s", string(name), fpath)
		b.shards[store.NormalizeName(string(name))] = &bleveShard{name: string(name), index: index}
	}
	return nil
}

func (b *bleveRemote) getOrCreate(name string) (*bleveShard, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if shard, has := b.shards[store.NormalizeName(name)]; has {
		return shard, nil
	}

	var index bleve.Index
	var err error
	if b.indexPath == "" {
		index, err = bleve.NewMemOnly(createIndexMapping(b.analyzer))
	} else {
		fpath := path.Join(b.indexPath, encodeIndexName(name))
		log.Printf("[INFO] creating new search index %q in %s", name, fpath)
		index, err = bleve.New(fpath, createIndexMapping(b.analyzer))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create index %q", name)
	}
	if err = index.SetInternal([]byte(internalNameKey), []byte(name)); err != nil {
		_ = index.Close()
		return nil, errors.Wrapf(err, "cannot store name of index %q", name)
	}
	shard := &bleveShard{name: name, index: index}
	b.shards[store.NormalizeName(name)] = shard
	return shard, nil
}

func (b *bleveRemote) touch(shard *bleveShard) {
	b.lock.Lock()
	shard.updated = time.Now()
	b.lock.Unlock()
}

// Upsert indexes documents by object id
func (b *bleveRemote) Upsert(ctx context.Context, indexName string, docs []*store.Document) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	shard, err := b.getOrCreate(indexName)
	if err != nil {
		return 0, err
	}
	batch := shard.index.NewBatch()
	for _, doc := range docs {
		id, ok := doc.GetString(store.FieldObjectID)
		if !ok || id == "" {
			return 0, errors.Errorf("document without %s in index %q", store.FieldObjectID, indexName)
		}
		if err = batch.Index(id, doc.Map()); err != nil {
			return 0, errors.Wrapf(err, "can't add document %s to batch", id)
		}
	}
	if err = shard.index.Batch(batch); err != nil {
		return 0, errors.Wrapf(err, "can't index batch of %q", indexName)
	}
	b.touch(shard)
	return len(docs), nil
}

// Delete removes documents, missing ids are acknowledged as well
func (b *bleveRemote) Delete(ctx context.Context, indexName string, objectIDs []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	shard, err := b.getOrCreate(indexName)
	if err != nil {
		return 0, err
	}
	batch := shard.index.NewBatch()
	for _, id := range objectIDs {
		batch.Delete(id)
	}
	if err = shard.index.Batch(batch); err != nil {
		return 0, errors.Wrapf(err, "can't delete batch of %q", indexName)
	}
	b.touch(shard)
	return len(objectIDs), nil
}

// Clear deletes all documents of the index
func (b *bleveRemote) Clear(ctx context.Context, indexName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	shard, err := b.getOrCreate(indexName)
	if err != nil {
		return err
	}
	count, err := shard.index.DocCount()
	if err != nil {
		return errors.Wrapf(err, "can't count documents of %q", indexName)
	}
	if count == 0 {
		return nil
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), int(count), 0, false)
	serp, err := shard.index.SearchInContext(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "can't list documents of %q", indexName)
	}
	batch := shard.index.NewBatch()
	for _, hit := range serp.Hits {
		batch.Delete(hit.ID)
	}
	if err = shard.index.Batch(batch); err != nil {
		return errors.Wrapf(err, "can't clear %q", indexName)
	}
	b.touch(shard)
	log.Printf("[INFO] cleared %d documents of search index %q", len(serp.Hits), indexName)
	return nil
}

// SetSettings keeps settings inside of the index, bleve mapping is fixed at creation
func (b *bleveRemote) SetSettings(ctx context.Context, indexName string, settings IndexSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	shard, err := b.getOrCreate(indexName)
	if err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "can't encode settings")
	}
	return errors.Wrapf(shard.index.SetInternal([]byte(internalSettingsKey), data), "can't store settings of %q", indexName)
}

// ListIndices returns indexes sorted by name
func (b *bleveRemote) ListIndices(ctx context.Context) ([]IndexStatistics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.lock.Lock()
	defer b.lock.Unlock()

	res := make([]IndexStatistics, 0, len(b.shards))
	for _, shard := range b.shards {
		count, err := shard.index.DocCount()
		if err != nil {
			return nil, errors.Wrapf(err, "can't count documents of %q", shard.name)
		}
		res = append(res, IndexStatistics{Name: shard.name, Entries: int64(count), UpdatedAt: shard.updated})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

// Close all indexes
func (b *bleveRemote) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	errs := new(multierror.Error)
	for key, shard := range b.shards {
		if err := shard.index.Close(); err != nil {
			errs = multierror.Append(errs, errors.Wrapf(err, "cannot close search index %q", shard.name))
		}
		delete(b.shards, key)
	}
	return errs.ErrorOrNil()
}

func keywordMapping() *mapping.FieldMapping {
	fm := bleve.NewTextFieldMapping()
	fm.Store = true
	fm.Analyzer = keywordAnalyzer
	return fm
}

func createIndexMapping(textAnalyzer string) mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	err := indexMapping.AddCustomAnalyzer(keywordAnalyzer, map[string]interface{}{
		"type":      bleveCustom.Name,
		"tokenizer": bleveSingle.Name,
		"token_filters": []string{
			lowercase.Name,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("error adding bleve analyzer %v", err))
	}
	indexMapping.DefaultAnalyzer = textAnalyzer
	for _, f := range []string{store.FieldObjectID, store.FieldContentType, store.FieldItemGUID, store.FieldLanguage, store.FieldURL} {
		indexMapping.DefaultMapping.AddFieldMappingsAt(f, keywordMapping())
	}
	return indexMapping
}
