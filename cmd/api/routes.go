package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"shelfapi/internal/search"
	"shelfapi/internal/shelf"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type routes struct {
	search    *search.HTTPHandler
	shelf     *shelf.HTTPHandler
	ready     func(context.Context) error
	staticDir string
}

func newRouter(rt routes) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := rt.ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", promhttp.Handler())

	router.HandleFunc("GET /api/search", rt.search.Search)
	router.HandleFunc("GET /api/external-books/{id}", rt.search.Detail)

	router.HandleFunc("GET /api/books", rt.shelf.List)
	router.HandleFunc("POST /api/books", rt.shelf.Add)
	router.HandleFunc("PATCH /api/books/{id}", rt.shelf.Update)
	router.HandleFunc("DELETE /api/books/{id}", rt.shelf.Delete)

	if info, err := os.Stat(rt.staticDir); err == nil && info.IsDir() {
		router.Handle("GET /", http.FileServer(http.Dir(rt.staticDir)))
	}

	return router
}
