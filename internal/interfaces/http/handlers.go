// Package http exposes the analysis engine over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tokensentry/internal/cache"
	"tokensentry/internal/models"
	"tokensentry/internal/pipeline"
)

// Analyzer is the pipeline collaborator the handlers call. It is an
// interface so handler tests can stub the whole engine.
type Analyzer interface {
	Analyze(ctx context.Context, req pipeline.Request) (*models.Analysis, error)
}

// Enqueuer accepts background webhook work.
type Enqueuer interface {
	Enqueue(req pipeline.Request) bool
	Stats() pipeline.PoolStats
}

// Historian serves past analyses for a token.
type Historian interface {
	Recent(ctx context.Context, tokenAddress string, limit int) ([]models.Analysis, error)
}

// Handlers carries the collaborators behind the HTTP surface. History may be
// nil when Postgres is not configured.
type Handlers struct {
	Engine  Analyzer
	Cache   cache.Store
	Queue   Enqueuer
	History Historian
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// Analyze handles POST /analyze/{mint}. The type query selects quick or deep;
// force=true bypasses the cache lookup.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	mint := mux.Vars(r)["mint"]

	typ := models.AnalysisQuick
	event := pipeline.EventQuick
	switch r.URL.Query().Get("type") {
	case "", "quick":
	case "deep":
		typ = models.AnalysisDeep
		event = pipeline.EventDeep
	default:
		writeError(w, http.StatusBadRequest, "type must be quick or deep")
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	analysis, err := h.Engine.Analyze(r.Context(), pipeline.Request{
		TokenAddress: mint,
		Type:         typ,
		SourceEvent:  event,
		Force:        force,
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// GetAnalysis handles GET /analysis/{mint}: a cache-only lookup that never
// triggers new provider traffic.
func (h *Handlers) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	mint := mux.Vars(r)["mint"]
	addr, err := models.ValidateTokenAddress(mint)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	typ := models.AnalysisType(r.URL.Query().Get("type"))
	if typ != models.AnalysisQuick && typ != models.AnalysisDeep {
		// Prefer the richer result when both are cached.
		if a, ok := h.Cache.Get(r.Context(), models.CacheKey(addr, models.AnalysisDeep)); ok {
			writeJSON(w, http.StatusOK, a)
			return
		}
		typ = models.AnalysisQuick
	}

	analysis, ok := h.Cache.Get(r.Context(), models.CacheKey(addr, typ))
	if !ok {
		writeError(w, http.StatusNotFound, "no cached analysis for token")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// GetHistory handles GET /analysis/{mint}/history from the Postgres archive.
func (h *Handlers) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeError(w, http.StatusNotFound, "analysis history is not enabled")
		return
	}
	addr, err := models.ValidateTokenAddress(mux.Vars(r)["mint"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	analyses, err := h.History.Recent(r.Context(), addr, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token_address": addr,
		"count":         len(analyses),
		"analyses":      analyses,
	})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"service": "tokensentry",
	}
	if h.Queue != nil {
		body["webhook_queue"] = h.Queue.Stats()
	}
	writeJSON(w, http.StatusOK, body)
}

// NotFound is the JSON 404 handler.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeError(w, http.StatusNotFound, "not found")
}
