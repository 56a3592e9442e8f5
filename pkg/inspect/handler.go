package inspect

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHandler returns the inspector HTTP API:
//
//	GET /healthz       liveness
//	GET /vars          all snapshots, sorted by name
//	GET /vars/{name}   one snapshot, 404 if unknown
//	GET /ws            websocket change stream
//	GET /metrics       Prometheus exposition of gatherer
//
// A nil gatherer uses prometheus.DefaultGatherer.
func NewHandler(reg *Registry, hub *Hub, gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoCache)

		r.Get("/vars", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, reg.Snapshots())
		})

		r.Get("/vars/{name}", func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "name")
			s, ok := reg.Lookup(name)
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown var " + name})
				return
			}
			writeJSON(w, http.StatusOK, s)
		})
	})

	r.Handle("/ws", hub)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
