// Package engine defines storage of index configurations. The storage is the source of truth
// for the in-memory search registry, which is rebuilt from it on start and after every change.
package engine

import (
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

//go:generate mockery --inpackage --name Interface --case snake --with-expecter=false

// ErrNotFound returned when index configuration does not exist
var ErrNotFound = errors.New("index configuration not found")

// ErrDuplicateName returned when another configuration has the same name, case-insensitive
var ErrDuplicateName = errors.New("index name already used")

// Interface defines methods provided by configuration storage
type Interface interface {
	Create(cfg store.IndexConfiguration) (id int64, err error) // create new configuration, ID assigned by storage
	Edit(cfg store.IndexConfiguration) error                   // replace configuration with cfg.ID
	Delete(id int64) error                                     // delete configuration by ID
	Get(name string) (store.IndexConfiguration, error)         // get configuration by name
	GetByID(id int64) (store.IndexConfiguration, error)        // get configuration by ID
	List() ([]store.IndexConfiguration, error)                 // all configurations, ordered by ID
	ListNames() ([]string, error)                              // names of all configurations
	Close() error                                              // close storage
}

// Validate checks configuration fields required by any storage
func Validate(cfg store.IndexConfiguration) error {
	if store.NormalizeName(cfg.Name) == "" {
		return errors.New("index name is empty")
	}
	for _, p := range cfg.Paths {
		if p.Pattern == "" {
			return errors.Errorf("empty path pattern in index %q", cfg.Name)
		}
	}
	return nil
}
