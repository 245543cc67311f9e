package engine

import (
	"encoding/binary"
	"encoding/json"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

const indexesBucket = "indexes"

// BoltDB implements configuration storage with bolt.
// Configurations stored as json in a single bucket, keyed by big-endian ID.
type BoltDB struct {
	db *bolt.DB
}

// NewBoltDB makes persistent configuration storage in file
func NewBoltDB(fileName string, options bolt.Options) (*BoltDB, error) {
	log.Printf("[INFO] bolt (persistent) configuration store, %s", fileName)
	if options.Timeout == 0 {
		options.Timeout = 30 * time.Second
	}
	db, err := bolt.Open(fileName, 0o600, &options)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to make boltdb for %s", fileName)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists([]byte(indexesBucket))
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create top level bucket")
	}
	return &BoltDB{db: db}, nil
}

// Create new configuration, fails on duplicate name
func (b *BoltDB) Create(cfg store.IndexConfiguration) (id int64, err error) {
	if err = Validate(cfg); err != nil {
		return 0, err
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(indexesBucket))
		if e := checkNameUnique(bkt, cfg.Name, 0); e != nil {
			return e
		}
		seq, e := bkt.NextSequence()
		if e != nil {
			return errors.Wrap(e, "can't get next id")
		}
		cfg.ID = int64(seq)
		return putConfig(bkt, cfg)
	})
	if err != nil {
		return 0, err
	}
	return cfg.ID, nil
}

// Edit replaces existing configuration
func (b *BoltDB) Edit(cfg store.IndexConfiguration) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(indexesBucket))
		if bkt.Get(idKey(cfg.ID)) == nil {
			return errors.Wrapf(ErrNotFound, "id %d", cfg.ID)
		}
		if e := checkNameUnique(bkt, cfg.Name, cfg.ID); e != nil {
			return e
		}
		return putConfig(bkt, cfg)
	})
}

// Delete configuration by ID
func (b *BoltDB) Delete(id int64) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(indexesBucket))
		if bkt.Get(idKey(id)) == nil {
			return errors.Wrapf(ErrNotFound, "id %d", id)
		}
		return bkt.Delete(idKey(id))
	})
}

// Get configuration by name, case-insensitive
func (b *BoltDB) Get(name string) (res store.IndexConfiguration, err error) {
	found := false
	err = b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(indexesBucket)).ForEach(func(_, v []byte) error {
			cfg := store.IndexConfiguration{}
			if e := json.Unmarshal(v, &cfg); e != nil {
				return errors.Wrap(e, "failed to unmarshal configuration")
			}
			if store.SameName(cfg.Name, name) {
				res, found = cfg, true
			}
			return nil
		})
	})
	if err == nil && !found {
		err = errors.Wrapf(ErrNotFound, "name %q", name)
	}
	return res, err
}

// GetByID returns configuration by ID
func (b *BoltDB) GetByID(id int64) (res store.IndexConfiguration, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(indexesBucket)).Get(idKey(id))
		if v == nil {
			return errors.Wrapf(ErrNotFound, "id %d", id)
		}
		return errors.Wrap(json.Unmarshal(v, &res), "failed to unmarshal configuration")
	})
	return res, err
}

// List all configurations ordered by ID
func (b *BoltDB) List() (res []store.IndexConfiguration, err error) {
	res = []store.IndexConfiguration{}
	err = b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(indexesBucket)).ForEach(func(_, v []byte) error {
			cfg := store.IndexConfiguration{}
			if e := json.Unmarshal(v, &cfg); e != nil {
				return errors.Wrap(e, "failed to unmarshal configuration")
			}
			res = append(res, cfg)
			return nil
		})
	})
	return res, err
}

// ListNames returns names of all configurations
func (b *BoltDB) ListNames() ([]string, error) {
	cfgs, err := b.List()
	if err != nil {
		return nil, err
	}
	res := make([]string, 0, len(cfgs))
	for _, c := range cfgs {
		res = append(res, c.Name)
	}
	return res, nil
}

// Close boltdb store
func (b *BoltDB) Close() error {
	return errors.Wrap(b.db.Close(), "can't close configuration store")
}

func checkNameUnique(bkt *bolt.Bucket, name string, selfID int64) error {
	return bkt.ForEach(func(_, v []byte) error {
		cfg := store.IndexConfiguration{}
		if e := json.Unmarshal(v, &cfg); e != nil {
			return errors.Wrap(e, "failed to unmarshal configuration")
		}
		if cfg.ID != selfID && store.SameName(cfg.Name, name) {
			return errors.Wrapf(ErrDuplicateName, "%q", name)
		}
		return nil
	})
}

func putConfig(bkt *bolt.Bucket, cfg store.IndexConfiguration) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal configuration")
	}
	return errors.Wrapf(bkt.Put(idKey(cfg.ID), data), "failed to put configuration %q", cfg.Name)
}

func idKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
