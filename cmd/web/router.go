package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmehra2102/eventia/internal/auth"
	"github.com/dmehra2102/eventia/pkg/httpjson"
)

type registrar interface {
	Register(r chi.Router)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// newRouter serves /health and /ready unauthenticated and every /api route
// behind the session identity middleware.
func newRouter(log *slog.Logger, db pinger, users auth.Directory, api ...registrar) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			log.Warn("readiness check failed", "err", err)
			httpjson.Error(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		httpjson.Write(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Route("/api", func(ar chi.Router) {
		ar.Use(auth.Middleware(log, users))
		for _, h := range api {
			h.Register(ar)
		}
	})

	return otelhttp.NewHandler(r, "eventia-web")
}
