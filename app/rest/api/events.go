package api

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	R "github.com/go-pkgz/rest"
	"github.com/pkg/errors"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store"
)

// POST /api/v1/events/{variant}/{event} - content lifecycle event from CMS,
// variant is webpage or reusable, event is publish, delete or archive.
// Body is the item snapshot. Responds with number of queued tasks.
func (s *Rest) eventCtrl(w http.ResponseWriter, r *http.Request) {
	variant, event := chi.URLParam(r, "variant"), store.EventKind(chi.URLParam(r, "event"))
	body := http.MaxBytesReader(w, r.Body, 256*1024)

	var item store.EventItem
	switch variant {
	case "webpage":
		page := store.WebPageItem{}
		if err := render.DecodeJSON(body, &page); err != nil {
			sendResult(w, r, http.StatusBadRequest, err, "can't decode web page item")
			return
		}
		item = page
	case "reusable":
		reusable := store.ReusableItem{}
		if err := render.DecodeJSON(body, &reusable); err != nil {
			sendResult(w, r, http.StatusBadRequest, err, "can't decode reusable item")
			return
		}
		item = reusable
	default:
		sendResult(w, r, http.StatusBadRequest, errors.Errorf("unknown item variant %q", variant), "bad event")
		return
	}

	queued := s.Events.Handle(r.Context(), item, event)
	render.JSON(w, r, R.JSON{"status": "ok", "message": string(event) + " handled", "queued": queued})
}
