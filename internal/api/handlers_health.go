// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/sommelier/internal/models"
)

// Health handles GET /api/v1/health. It always answers 200; an engine
// without a fitted catalog reports "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := h.engine.Status()

	health := models.HealthResponse{
		Status:       "healthy",
		Version:      h.config.Version,
		Fitted:       status.Fitted,
		SpaceVersion: status.Version,
		Records:      status.Records,
		Uptime:       time.Since(h.startTime).Seconds(),
		LoadedAt:     status.LoadedAt,
	}
	if !status.Fitted {
		health.Status = "degraded"
	}

	respondSuccess(w, r, health, start)
}

// Live handles GET /api/v1/health/live.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]string{"status": "alive"}, time.Now())
}

// Ready handles GET /api/v1/health/ready. It answers 503 until a catalog has
// been fitted or loaded.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Status().Fitted {
		respondError(w, r, http.StatusServiceUnavailable, CodeNotFitted, "No wine catalog has been fitted yet", nil, nil)
		return
	}
	respondSuccess(w, r, map[string]string{"status": "ready"}, time.Now())
}
