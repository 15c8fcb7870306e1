package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/sagoresarker/cabletrace/internal/cables"
	"github.com/sagoresarker/cabletrace/internal/cache"
	"github.com/sagoresarker/cabletrace/internal/metrics"
	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/navigator"
	"github.com/sagoresarker/cabletrace/internal/session"
	"github.com/sagoresarker/cabletrace/internal/utils"
)

const maxLoadBody = 5 << 20

type loadRequest struct {
	Target   string           `json:"target"`
	Hops     *[]models.Hop    `json:"hops"`
	TimeInfo *models.TimeInfo `json:"time_info"`
	Merge    bool             `json:"merge"`
	Annotate bool             `json:"annotate"`
}

// SessionHandler exposes viewer sessions over HTTP.
type SessionHandler struct {
	sessions    *session.Manager
	runs        cache.Store
	catalog     *cables.Catalog
	toleranceKm float64
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewSessionHandler wires the handler. catalog and m may be nil.
func NewSessionHandler(sessions *session.Manager, runs cache.Store, catalog *cables.Catalog, toleranceKm float64, m *metrics.Metrics, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{
		sessions:    sessions,
		runs:        runs,
		catalog:     catalog,
		toleranceKm: toleranceKm,
		metrics:     m,
		logger:      logger,
	}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	writeJSON(w, h.logger, http.StatusCreated, s.State())
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.State())
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(mux.Vars(r)["id"]); err != nil {
		writeError(w, h.logger, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Load(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req loadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoadBody)).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("invalid load request: %v", err))
		return
	}

	run, status, err := h.resolveRun(r, req)
	if err != nil {
		writeError(w, h.logger, status, err.Error())
		return
	}

	writeJSON(w, h.logger, http.StatusOK, s.Load(run))
}

func (h *SessionHandler) resolveRun(r *http.Request, req loadRequest) (models.Run, int, error) {
	target := ""
	if req.Target != "" {
		t, err := utils.NormalizeHost(req.Target)
		if err != nil {
			return models.Run{}, http.StatusBadRequest, err
		}
		target = t
	}

	if req.Hops == nil {
		if target == "" {
			return models.Run{}, http.StatusBadRequest, errors.New("hops or a cached target is required")
		}
		run, err := h.runs.Get(r.Context(), target)
		if err != nil {
			h.countCache("miss")
			if errors.Is(err, cache.ErrNotFound) {
				return models.Run{}, http.StatusNotFound, err
			}
			return models.Run{}, http.StatusInternalServerError, err
		}
		h.countCache("hit")
		run.CacheStatus = "HIT"
		return run, http.StatusOK, nil
	}

	hops := *req.Hops
	if req.Merge {
		hops = models.MergeConsecutive(hops)
	}
	if req.Annotate && h.catalog != nil {
		hops = h.catalog.Annotate(hops, h.toleranceKm)
	}

	run := models.Run{Target: target, Hops: hops, TimeInfo: req.TimeInfo}
	if target != "" && len(hops) > 0 {
		if err := h.runs.Set(r.Context(), target, run); err != nil {
			h.logger.Error("failed to cache run", zap.String("target", target), zap.Error(err))
		}
		run.CacheStatus = "MISS"
	}
	return run, http.StatusOK, nil
}

func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, navigator.Next)
}

func (h *SessionHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.advance(w, r, navigator.Previous)
}

func (h *SessionHandler) advance(w http.ResponseWriter, r *http.Request, direction int) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.Advance(direction))
}

func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.Reset())
}

func (h *SessionHandler) ShowAllCables(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.ShowAllCables())
}

func (h *SessionHandler) ClearCables(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.ClearCableFilter())
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, err.Error())
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) countCache(result string) {
	if h.metrics != nil {
		h.metrics.RunCache.WithLabelValues(result).Inc()
	}
}
