package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/rest/api"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/content"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/engine"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/search"
)

// ServerCommand with command line flags and env
type ServerCommand struct {
	Algolia AlgoliaGroup `group:"algolia" namespace:"algolia" env-namespace:"ALGOLIA"`
	Remote  RemoteGroup  `group:"remote" namespace:"remote" env-namespace:"REMOTE"`
	Queue   QueueGroup   `group:"queue" namespace:"queue" env-namespace:"QUEUE"`
	CMS     CMSGroup     `group:"cms" namespace:"cms" env-namespace:"CMS"`
	Admin   AdminGroup   `group:"admin" namespace:"admin" env-namespace:"ADMIN"`

	BoltPath     string `long:"bolt" env:"BOLT_PATH" default:"./var/indexes.db" description:"index configuration storage file"`
	SeedFile     string `long:"seed" env:"SEED_FILE" description:"yaml file with index definitions applied on start"`
	WebhookToken string `long:"webhook-token" env:"WEBHOOK_TOKEN" description:"bearer token required from cms event webhooks"`
	Address      string `long:"address" env:"ADDRESS" default:"" description:"listening address"`
	Port         int    `long:"port" env:"PORT" default:"8080" description:"port"`

	CommonOpts
}

// AlgoliaGroup defines options group for remote search application
type AlgoliaGroup struct {
	AppID         string `long:"app-id" env:"APP_ID" description:"application id"`
	APIKey        string `long:"api-key" env:"API_KEY" description:"admin api key, used by indexing"`
	SearchKey     string `long:"search-key" env:"SEARCH_KEY" description:"search-only api key, exposed to clients"`
	ObjectParam   string `long:"object-param" env:"OBJECT_PARAM" default:"object" description:"click tracking object id query parameter"`
	QueryParam    string `long:"query-param" env:"QUERY_PARAM" default:"query" description:"click tracking query id query parameter"`
	PositionParam string `long:"position-param" env:"POSITION_PARAM" default:"pos" description:"click tracking position query parameter"`
}

// RemoteGroup selects search remote implementation
type RemoteGroup struct {
	Type      string `long:"type" env:"TYPE" choice:"algolia" choice:"bleve" choice:"noop" default:"algolia" description:"search remote"` // nolint
	IndexPath string `long:"index-path" env:"INDEX_PATH" default:"./var/search_index" description:"path to bleve index files, empty for in-memory"`
	Analyzer  string `long:"analyzer" env:"ANALYZER" default:"standard" description:"bleve text analyzer"`
}

// QueueGroup defines options for indexing task queue
type QueueGroup struct {
	FlushEvery  time.Duration `long:"flush-every" env:"FLUSH_EVERY" default:"10s" description:"process queued tasks period"`
	FlushCount  int           `long:"flush-count" env:"FLUSH_COUNT" default:"100" description:"queued tasks count to process before period ends"`
	Concurrency int           `long:"concurrency" env:"CONCURRENCY" default:"4" description:"indexes processed in parallel"`
}

// CMSGroup defines options of CMS content api
type CMSGroup struct {
	BaseURL  string        `long:"base-url" env:"BASE_URL" description:"cms content api url, empty for in-memory content"`
	Token    string        `long:"token" env:"TOKEN" description:"cms content api bearer token"`
	Timeout  time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"cms request timeout"`
	Retries  int           `long:"retries" env:"RETRIES" default:"3" description:"cms request attempts"`
	URLCache time.Duration `long:"url-cache" env:"URL_CACHE" default:"5m" description:"page url cache ttl, 0 to disable"`
}

// AdminGroup defines options for admin api access
type AdminGroup struct {
	User       string `long:"user" env:"USER" default:"admin" description:"admin user name"`
	PasswdHash string `long:"passwd-hash" env:"PASSWD_HASH" description:"bcrypt hash of admin password, admin api disabled if empty"`
}

// serverApp holds all active objects
type serverApp struct {
	*ServerCommand
	restSrv *api.Rest
	engine  engine.Interface
	client  *search.Client
	queue   *search.Queue
	source  content.Source

	terminated chan struct{}
}

// Execute is the entry point for "server" command, called by flag parser
func (s *ServerCommand) Execute(_ []string) error {
	log.Printf("[INFO] start server on port %d", s.Port)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// catch signal and invoke graceful termination
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		log.Printf("[WARN] interrupt signal")
		cancel()
	}()

	app, err := s.newServerApp()
	if err != nil {
		log.Printf("[PANIC] failed to setup application, %+v", err)
		return err
	}
	if err = app.run(ctx); err != nil {
		log.Printf("[ERROR] server terminated with error %+v", err)
		return err
	}
	log.Printf("[INFO] server terminated")
	return nil
}

// newServerApp prepares application and return it with all active parts
// doesn't start anything
func (s *ServerCommand) newServerApp() (*serverApp, error) {
	if err := makeDirs(filepath.Dir(s.BoltPath)); err != nil {
		return nil, err
	}
	boltStore, err := engine.NewBoltDB(s.BoltPath, bolt.Options{Timeout: 30 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "can't make configuration storage")
	}

	if s.SeedFile != "" {
		cfgs, e := engine.LoadSeed(s.SeedFile)
		if e != nil {
			_ = boltStore.Close()
			return nil, e
		}
		if e = engine.ApplySeed(boltStore, cfgs); e != nil {
			log.Printf("[WARN] seed applied partially, %v", e)
		}
	}

	source, err := s.makeSource()
	if err != nil {
		_ = boltStore.Close()
		return nil, err
	}

	strategies := search.NewStrategies()
	strategies.Add(search.PageContentStrategyName, func() search.Strategy { return search.NewPageContentStrategy(source) })
	registry := search.NewRegistry(strategies)

	dataStore := search.WrapEngine(boltStore, registry)
	if err = dataStore.Reload(); err != nil {
		log.Printf("[WARN] some indexes not loaded, %v", err)
	}
	log.Printf("[INFO] loaded %d indexes", registry.Len())

	remote, err := search.NewRemote(search.RemoteParams{
		Type:      s.Remote.Type,
		AppID:     s.Algolia.AppID,
		APIKey:    s.Algolia.APIKey,
		IndexPath: s.Remote.IndexPath,
		Analyzer:  s.Remote.Analyzer,
	})
	if err != nil {
		_ = boltStore.Close()
		return nil, errors.Wrap(err, "can't make search remote")
	}
	client := search.NewClient(remote, registry, source)

	processor := search.NewProcessor(registry, client, source, search.ProcessorParams{Concurrency: s.Queue.Concurrency})
	queue := search.NewQueue("indexing", processor, search.QueueParams{
		FlushEvery: s.Queue.FlushEvery,
		FlushCount: s.Queue.FlushCount,
		KnownIndex: registry.Exists,
	})

	srv := &api.Rest{
		Version:  s.Revision,
		Engine:   dataStore,
		Registry: registry,
		Search:   client,
		Queue:    queue,
		Events:   search.ContentEvents{Logger: search.NewTaskLogger(registry, queue)},
		Tracking: api.TrackingConfig{
			AppID:         s.Algolia.AppID,
			SearchKey:     s.Algolia.SearchKey,
			ObjectParam:   s.Algolia.ObjectParam,
			QueryParam:    s.Algolia.QueryParam,
			PositionParam: s.Algolia.PositionParam,
		},
		AdminUser:       s.Admin.User,
		AdminPasswdHash: s.Admin.PasswdHash,
		WebhookToken:    s.WebhookToken,
	}

	return &serverApp{
		ServerCommand: s,
		restSrv:       srv,
		engine:        dataStore,
		client:        client,
		queue:         queue,
		source:        source,
		terminated:    make(chan struct{}),
	}, nil
}

func (s *ServerCommand) makeSource() (content.Source, error) {
	if s.CMS.BaseURL == "" {
		log.Print("[WARN] no cms base url, in-memory content source")
		return content.NewMemory(), nil
	}
	src, err := content.NewRemote(content.RemoteParams{
		BaseURL:  s.CMS.BaseURL,
		Token:    s.CMS.Token,
		Timeout:  s.CMS.Timeout,
		Retries:  s.CMS.Retries,
		URLCache: s.CMS.URLCache,
	})
	if err != nil {
		return nil, errors.Wrap(err, "can't make cms content source")
	}
	return src, nil
}

// run all application objects, blocks until ctx is canceled
func (a *serverApp) run(ctx context.Context) error {
	go func() {
		// shutdown on context cancellation
		<-ctx.Done()
		log.Print("[INFO] shutdown initiated")
		a.restSrv.Shutdown()
	}()

	a.restSrv.Run(a.Address, a.Port)

	// queued tasks are processed before remote is closed
	errs := new(multierror.Error)
	if err := a.queue.Close(); err != nil {
		errs = multierror.Append(errs, errors.Wrap(err, "can't close queue"))
	}
	if err := a.client.Close(); err != nil {
		errs = multierror.Append(errs, errors.Wrap(err, "can't close search remote"))
	}
	if err := a.engine.Close(); err != nil {
		errs = multierror.Append(errs, errors.Wrap(err, "can't close configuration storage"))
	}
	close(a.terminated)
	return errs.ErrorOrNil()
}

// Wait for application completion (termination)
func (a *serverApp) Wait() {
	<-a.terminated
}

func makeDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrapf(err, "can't make directory %s", dir)
		}
	}
	return nil
}
