package search

import (
	log "github.com/go-pkgz/lgr"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/engine"
)

// StoreEngineDecorator proxies requests to store/engine.Interface, checks changes against
// the registry before they are stored and reloads the registry after every change
type StoreEngineDecorator struct {
	engine.Interface
	registry *Registry
}

// WrapEngine decorates engine with StoreEngineDecorator
func WrapEngine(e engine.Interface, r *Registry) *StoreEngineDecorator {
	return &StoreEngineDecorator{
		Interface: e,
		registry:  r,
	}
}

// Create index configuration and reload registry
func (e *StoreEngineDecorator) Create(cfg store.IndexConfiguration) (id int64, err error) {
	cfg.ID = 0
	if err = e.registry.Validate(cfg); err != nil {
		return 0, err
	}
	if id, err = e.Interface.Create(cfg); err != nil {
		return id, err
	}
	e.reload()
	return id, nil
}

// Edit index configuration and reload registry
func (e *StoreEngineDecorator) Edit(cfg store.IndexConfiguration) error {
	if err := e.registry.Validate(cfg); err != nil {
		return err
	}
	if err := e.Interface.Edit(cfg); err != nil {
		return err
	}
	e.reload()
	return nil
}

// Delete index configuration and reload registry
func (e *StoreEngineDecorator) Delete(id int64) error {
	if err := e.Interface.Delete(id); err != nil {
		return err
	}
	e.reload()
	return nil
}

// Reload replaces registry content with all stored configurations
func (e *StoreEngineDecorator) Reload() error {
	cfgs, err := e.Interface.List()
	if err != nil {
		return err
	}
	return e.registry.ReplaceAll(cfgs)
}

func (e *StoreEngineDecorator) reload() {
	if err := e.Reload(); err != nil {
		log.Printf("[WARN] failed to reload search registry, %v", err)
	}
}
