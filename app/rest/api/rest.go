// Package api provides rest-like server for index administration and CMS content event webhooks.
package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth_chi"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	log "github.com/go-pkgz/lgr"
	R "github.com/go-pkgz/rest"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/engine"
	"github.com/Kentico/xperience-by-kentico-algolia-sub000/app/store/search"
)

// Rest is a rest access server
type Rest struct {
	Version string

	Engine   engine.Interface // storage decorated to reload the registry on change
	Registry *search.Registry
	Search   *search.Client
	Queue    *search.Queue
	Events   search.ContentEvents
	Tracking TrackingConfig

	AdminUser       string
	AdminPasswdHash string // bcrypt hash, admin api disabled if empty
	WebhookToken    string // bearer token expected from CMS, not checked if empty

	httpServer *http.Server
	lock       sync.Mutex
}

// TrackingConfig is the client side configuration of search and click tracking
type TrackingConfig struct {
	AppID         string `json:"app_id"`
	SearchKey     string `json:"search_key"`
	ObjectParam   string `json:"object_param"`
	QueryParam    string `json:"query_param"`
	PositionParam string `json:"position_param"`
}

// Run the lister and request's router, activate rest server
func (s *Rest) Run(address string, port int) {
	if address == "*" {
		address = ""
	}
	log.Printf("[INFO] activate http rest server on %s:%d", address, port)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", address, port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
	s.lock.Unlock()

	err := s.httpServer.ListenAndServe()
	log.Printf("[WARN] http server terminated, %s", err)
}

// Shutdown rest http server
func (s *Rest) Shutdown() {
	log.Print("[WARN] shutdown rest server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.lock.Lock()
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("[DEBUG] http shutdown error, %s", err)
		}
		log.Print("[DEBUG] shutdown http server completed")
	}
	s.lock.Unlock()
}

func (s *Rest) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Throttle(1000), middleware.RealIP, R.Recoverer(log.Default()))
	router.Use(R.AppInfo("xperience-algolia", "kentico", s.Version), R.Ping)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	router.Use(corsMiddleware.Handler)

	router.Route("/api/v1", func(rapi chi.Router) {
		rapi.Group(func(rhook chi.Router) {
			rhook.Use(middleware.Timeout(10 * time.Second))
			rhook.Use(tollbooth_chi.LimitHandler(tollbooth.NewLimiter(100, nil)))
			rhook.Use(s.webhookAuth)
			rhook.Post("/events/{variant}/{event}", s.eventCtrl)
		})

		rapi.Group(func(ropen chi.Router) {
			ropen.Use(tollbooth_chi.LimitHandler(tollbooth.NewLimiter(10, nil)))
			ropen.Get("/config", s.configCtrl)
		})

		rapi.Route("/admin", func(radmin chi.Router) {
			radmin.Use(tollbooth_chi.LimitHandler(tollbooth.NewLimiter(50, nil)))
			radmin.Use(R.BasicAuth(s.checkAdmin))
			radmin.Get("/indexes", s.listIndexesCtrl)
			radmin.Post("/indexes", s.createIndexCtrl)
			radmin.Get("/indexes/{name}", s.getIndexCtrl)
			radmin.Put("/indexes/{name}", s.editIndexCtrl)
			radmin.Delete("/indexes/{name}", s.deleteIndexCtrl)
			radmin.Post("/indexes/{name}/rebuild", s.rebuildCtrl)
			radmin.Get("/strategies", s.strategiesCtrl)
			radmin.Post("/flush", s.flushCtrl)
		})
	})

	return router
}

// checkAdmin compares credentials with admin user and bcrypt hash of the password
func (s *Rest) checkAdmin(user, passwd string) bool {
	if s.AdminPasswdHash == "" || user != s.AdminUser {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.AdminPasswdHash), []byte(passwd)) == nil
}

// webhookAuth checks bearer token of CMS requests
func (s *Rest) webhookAuth(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if s.WebhookToken != "" {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(s.WebhookToken)) != 1 {
				sendResult(w, r, http.StatusUnauthorized, errors.New("bad webhook token"), "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// GET /config - returns search application id, search-only key and click tracking parameters
func (s *Rest) configCtrl(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.Tracking)
}

// sendResult renders status response, error is logged and its message is shown to the caller
func sendResult(w http.ResponseWriter, r *http.Request, code int, err error, msg string) {
	if err == nil {
		render.Status(r, code)
		render.JSON(w, r, R.JSON{"status": "ok", "message": msg})
		return
	}
	log.Printf("[WARN] %s %s, %s: %v", r.Method, r.URL.Path, msg, err)
	render.Status(r, code)
	render.JSON(w, r, R.JSON{"status": "error", "message": msg + ": " + err.Error()})
}

// errorCode maps errors of storage and registry to http status
func errorCode(err error) int {
	switch errors.Cause(err) {
	case search.ErrDuplicateIndex, engine.ErrDuplicateName:
		return http.StatusConflict
	case search.ErrIndexNotFound, engine.ErrNotFound:
		return http.StatusNotFound
	case search.ErrUnknownStrategy, search.ErrContradictorySettings, errInvalidRequest:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
