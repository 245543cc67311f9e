package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	R "github.com/go-pkgz/rest"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/engine"
)

var errInvalidRequest = errors.New("invalid request")

// GET /admin/indexes - registered indexes with remote statistics
func (s *Rest) listIndexesCtrl(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Search.ListIndexes(r.Context())
	if err != nil {
		sendResult(w, r, http.StatusBadGateway, err, "can't list indexes")
		return
	}
	render.JSON(w, r, stats)
}

// GET /admin/indexes/{name} - stored index configuration
func (s *Rest) getIndexCtrl(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.Engine.Get(chi.URLParam(r, "name"))
	if err != nil {
		sendResult(w, r, errorCode(err), err, "can't get index")
		return
	}
	render.JSON(w, r, cfg)
}

// POST /admin/indexes - create index, body is index configuration
func (s *Rest) createIndexCtrl(w http.ResponseWriter, r *http.Request) {
	cfg, err := decodeConfig(w, r)
	if err != nil {
		sendResult(w, r, http.StatusBadRequest, err, "bad index configuration")
		return
	}
	id, err := s.Engine.Create(cfg)
	if err != nil {
		sendResult(w, r, errorCode(err), err, "can't create index")
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, R.JSON{"status": "ok", "message": "index " + cfg.Name + " created", "id": id})
}

// PUT /admin/indexes/{name} - replace index configuration, rename allowed
func (s *Rest) editIndexCtrl(w http.ResponseWriter, r *http.Request) {
	existing, err := s.Engine.Get(chi.URLParam(r, "name"))
	if err != nil {
		sendResult(w, r, errorCode(err), err, "can't get index")
		return
	}
	cfg, err := decodeConfig(w, r)
	if err != nil {
		sendResult(w, r, http.StatusBadRequest, err, "bad index configuration")
		return
	}
	cfg.ID = existing.ID
	if err = s.Engine.Edit(cfg); err != nil {
		sendResult(w, r, errorCode(err), err, "can't edit index")
		return
	}
	sendResult(w, r, http.StatusOK, nil, "index "+cfg.Name+" updated")
}

// DELETE /admin/indexes/{name} - delete index configuration, remote index is kept
func (s *Rest) deleteIndexCtrl(w http.ResponseWriter, r *http.Request) {
	existing, err := s.Engine.Get(chi.URLParam(r, "name"))
	if err != nil {
		sendResult(w, r, errorCode(err), err, "can't get index")
		return
	}
	if err = s.Engine.Delete(existing.ID); err != nil {
		sendResult(w, r, errorCode(err), err, "can't delete index")
		return
	}
	sendResult(w, r, http.StatusOK, nil, "index "+existing.Name+" deleted")
}

// POST /admin/indexes/{name}/rebuild - clear remote index and queue all content in scope
func (s *Rest) rebuildCtrl(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	queued, err := s.Search.Rebuild(r.Context(), name, s.Queue)
	if err != nil {
		sendResult(w, r, errorCode(err), err, "can't rebuild index "+name)
		return
	}
	render.JSON(w, r, R.JSON{"status": "ok", "message": "index " + name + " rebuild started", "queued": queued})
}

// GET /admin/strategies - names of available indexing strategies
func (s *Rest) strategiesCtrl(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.Registry.Strategies().Names())
}

// POST /admin/flush - process queued tasks now
func (s *Rest) flushCtrl(w http.ResponseWriter, r *http.Request) {
	n, err := s.Queue.Flush(r.Context())
	if err != nil {
		sendResult(w, r, http.StatusServiceUnavailable, err, "can't flush queue")
		return
	}
	render.JSON(w, r, R.JSON{"status": "ok", "message": "queue flushed", "processed": n})
}

func decodeConfig(w http.ResponseWriter, r *http.Request) (store.IndexConfiguration, error) {
	cfg := store.IndexConfiguration{}
	if err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, 64*1024), &cfg); err != nil {
		return cfg, errors.Wrap(errInvalidRequest, err.Error())
	}
	if err := engine.Validate(cfg); err != nil {
		return cfg, errors.Wrap(errInvalidRequest, err.Error())
	}
	return cfg, nil
}
