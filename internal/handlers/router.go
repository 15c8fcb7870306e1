package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sagoresarker/cabletrace/internal/cables"
	"github.com/sagoresarker/cabletrace/internal/metrics"
	"github.com/sagoresarker/cabletrace/internal/ratelimit"
	"github.com/sagoresarker/cabletrace/internal/utils"
)

type CableHandler struct {
	catalog *cables.Catalog
	logger  *zap.Logger
}

func NewCableHandler(catalog *cables.Catalog, logger *zap.Logger) *CableHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CableHandler{catalog: catalog, logger: logger}
}

// Handle serves the static cable collection the renderer draws from.
func (h *CableHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeError(w, h.logger, http.StatusNotFound, "cable collection not loaded")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(h.catalog.Raw()); err != nil {
		h.logger.Error("error writing cable collection", zap.Error(err))
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// RateLimit rejects clients over their request budget.
func RateLimit(rl *ratelimit.RateLimiter, logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := rl.Allow(utils.GetClientIP(r)); err != nil {
				writeError(w, logger, http.StatusTooManyRequests, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RouterDeps collects what NewRouter wires. Limiter and Metrics may be nil.
type RouterDeps struct {
	Sessions *SessionHandler
	Stream   *StreamHandler
	Cables   *CableHandler
	Limiter  *ratelimit.RateLimiter
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

func NewRouter(d RouterDeps) *mux.Router {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if d.Cables == nil {
		d.Cables = NewCableHandler(nil, logger)
	}

	r := mux.NewRouter()
	if d.Metrics != nil {
		r.Use(metrics.Middleware(d.Metrics))
	}
	r.HandleFunc("/health", Health).Methods(http.MethodGet)
	if d.Stream != nil {
		r.HandleFunc("/sessions/{id}/stream", d.Stream.Handle).Methods(http.MethodGet)
	}

	api := r.NewRoute().Subrouter()
	if d.Limiter != nil {
		api.Use(RateLimit(d.Limiter, logger))
	}

	api.HandleFunc("/cables", d.Cables.Handle).Methods(http.MethodGet)

	api.HandleFunc("/sessions", d.Sessions.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", d.Sessions.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", d.Sessions.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/load", d.Sessions.Load).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/next", d.Sessions.Next).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/previous", d.Sessions.Previous).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/reset", d.Sessions.Reset).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/cables/show-all", d.Sessions.ShowAllCables).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/cables/clear", d.Sessions.ClearCables).Methods(http.MethodPost)

	return r
}
