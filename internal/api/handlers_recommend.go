// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sommelier/internal/cache"
	"github.com/tomtom215/sommelier/internal/logging"
	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/wine"
)

// Recommend handles POST /api/v1/recommend.
// The query is either given inline or taken from a catalog record (wine_id).
// Recommendations of one request all come from the same catalog snapshot.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.RecommendRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Query == nil && req.WineID == "" {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "query or wine_id is required", nil, nil)
		return
	}

	view, err := h.engine.View()
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	var query wine.Features
	if req.Query != nil {
		query = *req.Query
	} else {
		source, ok := view.Wine(req.WineID)
		if !ok {
			respondError(w, r, http.StatusNotFound, CodeNotFound, "Wine not found",
				map[string]interface{}{"wine_id": req.WineID}, nil)
			return
		}
		query = source.Features
	}

	key, cacheable := h.cacheKey(view.Version(), &req)
	if cacheable {
		if cached, ok := h.cache.Get(key); ok {
			metrics.RecordCacheLookup(true)
			cached.Metadata.RequestID = logging.RequestIDFromContext(r.Context())
			cached.Cached = true
			respondSuccess(w, r, cached, start)
			return
		}
		metrics.RecordCacheLookup(false)
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	resp, err := view.RecommendDetailed(ctx, recommend.Request{
		Query:     wine.QueryFrom(query),
		TopN:      req.TopN,
		Diversity: req.Diversity,
		Seed:      req.Seed,
		Params:    req.Params,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	data := models.RecommendResponse{
		IDs:      resp.IDs(),
		Metadata: resp.Metadata,
	}
	if req.Detailed {
		data.Items = resp.Items
		data.Wines = make([]wine.Wine, 0, len(resp.Items))
		for _, item := range resp.Items {
			if rec, ok := view.Wine(item.ID); ok {
				data.Wines = append(data.Wines, rec)
			}
		}
	}
	if cacheable {
		h.cache.Add(key, data)
	}

	respondSuccess(w, r, data, start)
}

// cacheKey identifies a request against one feature space version. It
// reports false when caching is disabled.
func (h *Handler) cacheKey(version int64, req *models.RecommendRequest) (string, bool) {
	if h.cache == nil {
		return "", false
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(body)
	return fmt.Sprintf("%d:%s", version, hex.EncodeToString(sum[:])), true
}

// Wine handles GET /api/v1/wines/{id}.
func (h *Handler) Wine(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	view, err := h.engine.View()
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	rec, ok := view.Wine(id)
	if !ok {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Wine not found",
			map[string]interface{}{"id": id}, nil)
		return
	}

	respondSuccess(w, r, rec, start)
}

// statusData is the body of GET /api/v1/status.
type statusData struct {
	Engine  recommend.Status  `json:"engine"`
	Metrics recommend.Metrics `json:"metrics"`
	Params  recommend.Params  `json:"params"`
	Cache   *cache.Stats      `json:"cache,omitempty"`
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	data := statusData{
		Engine:  h.engine.Status(),
		Metrics: h.engine.GetMetrics(),
		Params:  h.engine.DefaultParams(),
	}
	if h.cache != nil {
		stats := h.cache.Stats()
		data.Cache = &stats
	}
	respondSuccess(w, r, data, time.Now())
}
