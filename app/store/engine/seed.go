package engine

import (
	"os"
	"path/filepath"

	log "github.com/go-pkgz/lgr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// seedFile is the layout of yaml file with index definitions
type seedFile struct {
	Indexes []store.IndexConfiguration `yaml:"indexes"`
}

// LoadSeed reads index definitions from yaml file
func LoadSeed(fileName string) ([]store.IndexConfiguration, error) {
	data, err := os.ReadFile(filepath.Clean(fileName))
	if err != nil {
		return nil, errors.Wrapf(err, "can't read seed file %s", fileName)
	}
	res := seedFile{}
	if err = yaml.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrapf(err, "can't parse seed file %s", fileName)
	}
	return res.Indexes, nil
}

// ApplySeed creates missing configurations and overwrites existing ones with the same name.
// Configurations not mentioned in seed are kept.
func ApplySeed(e Interface, cfgs []store.IndexConfiguration) error {
	errs := new(multierror.Error)
	for _, cfg := range cfgs {
		existing, err := e.Get(cfg.Name)
		switch {
		case err == nil:
			cfg.ID = existing.ID
			if err = e.Edit(cfg); err != nil {
				errs = multierror.Append(errs, errors.Wrapf(err, "can't update index %q", cfg.Name))
				continue
			}
			log.Printf("[INFO] index %q updated from seed", cfg.Name)
		case errors.Cause(err) == ErrNotFound:
			if _, err = e.Create(cfg); err != nil {
				errs = multierror.Append(errs, errors.Wrapf(err, "can't create index %q", cfg.Name))
				continue
			}
			log.Printf("[INFO] index %q created from seed", cfg.Name)
		default:
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
