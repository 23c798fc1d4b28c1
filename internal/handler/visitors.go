// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arajbanshi/folio/internal/model"
	"github.com/arajbanshi/folio/internal/store"
)

// DefaultVisitorLimit is the number of visits returned when no limit is given.
const DefaultVisitorLimit = 50

// MaxVisitorLimit caps the visits returned in one request.
const MaxVisitorLimit = 500

// maxGeoLookups caps remote location lookups per list request. A cold
// lookup can block for seconds, so only the most recent visits get
// enriched; the rest are returned without a location.
const maxGeoLookups = DefaultVisitorLimit

// GeoLookup resolves an IP to a location, nil meaning unknown.
type GeoLookup interface {
	Lookup(ctx context.Context, ip string) *model.GeoInfo
}

// VisitorsHandler serves the admin visitor log.
type VisitorsHandler struct {
	queries *store.Queries
	geo     GeoLookup
	logger  *slog.Logger
}

// NewVisitorsHandler creates a VisitorsHandler.
func NewVisitorsHandler(queries *store.Queries, geo GeoLookup, logger *slog.Logger) *VisitorsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisitorsHandler{queries: queries, geo: geo, logger: logger}
}

// visitView is a visit enriched with location data for the admin UI.
type visitView struct {
	model.Visit
	Facts    []string       `json:"facts"`
	Location *model.GeoInfo `json:"location,omitempty"`
}

// List handles GET /admin/api/visitors - the most recent visits, newest
// first, enriched with a best-effort location. Lookups are deduplicated
// per IP within the request and capped at maxGeoLookups.
func (h *VisitorsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := int64(DefaultVisitorLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if parsed > MaxVisitorLimit {
			parsed = MaxVisitorLimit
		}
		limit = parsed
	}

	visits, err := h.queries.ListRecentVisits(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing visits", "category", "visitor", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not list visitors")
		return
	}

	views := make([]visitView, 0, len(visits))
	locations := make(map[string]*model.GeoInfo)
	lookups := 0
	for _, v := range visits {
		view := visitView{Visit: v, Facts: v.GetFacts()}
		if view.Facts == nil {
			view.Facts = []string{}
		}
		if h.geo != nil {
			loc, seen := locations[v.IPAddress]
			if !seen && lookups < maxGeoLookups {
				loc = h.geo.Lookup(r.Context(), v.IPAddress)
				locations[v.IPAddress] = loc
				lookups++
			}
			view.Location = loc
		}
		views = append(views, view)
	}
	writeJSONSuccess(w, map[string]any{"visitors": views})
}

// Get handles GET /admin/api/visitors/{id} - one visit with full detail.
func (h *VisitorsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	visit, err := h.queries.GetVisit(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "visitor not found")
			return
		}
		h.logger.Error("loading visit", "category", "visitor", "visit_id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load visitor")
		return
	}

	view := h.enrich(r.Context(), visit)
	writeJSONSuccess(w, map[string]any{
		"visitor":     view,
		"device_info": visit.GetDeviceInfo(),
	})
}

func (h *VisitorsHandler) enrich(ctx context.Context, v model.Visit) visitView {
	view := visitView{Visit: v, Facts: v.GetFacts()}
	if view.Facts == nil {
		view.Facts = []string{}
	}
	if h.geo != nil {
		view.Location = h.geo.Lookup(ctx, v.IPAddress)
	}
	return view
}
