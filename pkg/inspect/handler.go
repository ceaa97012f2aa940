// Package inspect exposes a read-only HTTP surface over a state registry:
// the current bindings as JSON plus Prometheus metrics exposition. It never
// mutates the registry.
package inspect

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/molab-dev/molab/pkg/state"
)

// Option configures the inspect handler.
type Option func(*handler)

// WithLogger sets the handler's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *handler) {
		h.logger = logger
	}
}

// WithGatherer sets the Prometheus gatherer backing /metrics.
// Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *handler) {
		h.gatherer = g
	}
}

type handler struct {
	registry *state.Registry
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Handler returns an http.Handler serving the registry's introspection
// routes:
//
//	GET /healthz            liveness probe
//	GET /metrics            Prometheus exposition
//	GET /states             all bindings, sorted by qualified name
//	GET /states/{name}      one binding by base name (?context= qualifies)
func Handler(registry *state.Registry, opts ...Option) http.Handler {
	h := &handler{
		registry: registry,
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Get("/healthz", h.healthz)
	r.Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	r.Get("/states", h.listStates)
	r.Get("/states/{name}", h.getState)
	return r
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// statesResponse wraps the binding list so the payload stays extensible.
type statesResponse struct {
	Count    int             `json:"count"`
	Bindings []state.Binding `json:"bindings"`
}

func (h *handler) listStates(w http.ResponseWriter, _ *http.Request) {
	bindings := h.registry.Bindings()
	h.writeJSON(w, http.StatusOK, statesResponse{
		Count:    len(bindings),
		Bindings: bindings,
	})
}

func (h *handler) getState(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	qname := state.Qualify(name, r.URL.Query().Get("context"))

	for _, b := range h.registry.Bindings() {
		if b.Name == qname {
			h.writeJSON(w, http.StatusOK, b)
			return
		}
	}

	h.writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "no binding for name",
		"name":  qname,
	})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode inspect response", "error", err)
	}
}
