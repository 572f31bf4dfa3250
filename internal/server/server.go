// Package server Hermes
//
// Hermes is the federation backend of the publishing platform: feed,
// reply-chain and post reads plus the CMS import webhook.
//
//     Schemes: https
//     BasePath: /v1
//     Version: 1.0.0
//
//     Produces:
//     - application/json
//     Consumes:
//     - application/json
//
// swagger:meta
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/tomasen/realip"

	mm "github.com/fedipress/hermes/internal/middleware"
	"github.com/fedipress/hermes/internal/service"
	"github.com/fedipress/hermes/internal/storage"
	"github.com/fedipress/hermes/internal/thread"
)

var log = logrus.WithField("package", "server")

const maxBodySize = 64 * 1024

type server struct {
	s   storage.Storage
	svc service.Service
	t   *thread.View
}

// SetupRouter setups handlers to chi router.
func SetupRouter(s storage.Storage, svc service.Service, t *thread.View, r chi.Router, timeout time.Duration) {
	r.Use(
		loggerMiddleware,
		middleware.StripSlashes,
		cors.AllowAll().Handler,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
	)

	srv := server{
		s:   s,
		svc: svc,
		t:   t,
	}

	r.Get("/health", health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/feed/{account}", srv.getFeed)
		r.Get("/thread", mm.Cached(time.Minute, srv.getThread))
		r.Get("/posts/{author}/{uuid}", srv.getPost)
		r.Post("/import", srv.importArticle)
	})
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.WithFields(logrus.Fields{
			"ip":      realip.FromRequest(r),
			"method":  r.Method,
			"uri":     r.RequestURI,
			"elapsed": time.Since(start),
		}).Debug("request processed")
	})
}
