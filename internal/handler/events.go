// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/arajbanshi/folio/internal/store"
)

// DefaultEventLimit is the number of log entries returned when no limit is given.
const DefaultEventLimit = 100

// EventsHandler serves the persisted application event log.
type EventsHandler struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(queries *store.Queries, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventsHandler{queries: queries, logger: logger}
}

// List handles GET /admin/api/events - recent event log entries.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := int64(DefaultEventLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.queries.ListEvents(r.Context(), limit)
	if err != nil {
		h.logger.Error("listing events", "category", "system", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not list events")
		return
	}
	if entries == nil {
		entries = []store.EventLogEntry{}
	}
	writeJSONSuccess(w, map[string]any{"events": entries})
}
