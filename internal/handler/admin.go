// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/arajbanshi/folio/internal/store"
)

// AdminHandler serves the dashboard statistics.
type AdminHandler struct {
	queries *store.Queries
	logger  *slog.Logger
	now     func() time.Time
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(queries *store.Queries, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		queries: queries,
		logger:  logger,
		now:     time.Now,
	}
}

// Stats handles GET /admin/api/stats - aggregate visit and message
// counters for the dashboard. "Today" starts at local midnight; the
// weekly window covers the last 7 days.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	totalVisits, err := h.queries.CountVisits(ctx)
	if err != nil {
		h.statsError(w, "counting visits", err)
		return
	}
	visitsToday, err := h.queries.CountVisitsSince(ctx, midnight)
	if err != nil {
		h.statsError(w, "counting today's visits", err)
		return
	}
	visitsWeek, err := h.queries.CountVisitsSince(ctx, weekAgo)
	if err != nil {
		h.statsError(w, "counting weekly visits", err)
		return
	}
	uniqueVisitors, err := h.queries.CountUniqueVisitors(ctx)
	if err != nil {
		h.statsError(w, "counting unique visitors", err)
		return
	}
	uniqueToday, err := h.queries.CountUniqueVisitorsSince(ctx, midnight)
	if err != nil {
		h.statsError(w, "counting today's unique visitors", err)
		return
	}
	unreadMessages, err := h.queries.CountUnreadMessages(ctx)
	if err != nil {
		h.statsError(w, "counting unread messages", err)
		return
	}

	writeJSONSuccess(w, map[string]any{
		"total_visits":          totalVisits,
		"visits_today":          visitsToday,
		"visits_week":           visitsWeek,
		"unique_visitors":       uniqueVisitors,
		"unique_visitors_today": uniqueToday,
		"unread_messages":       unreadMessages,
	})
}

func (h *AdminHandler) statsError(w http.ResponseWriter, what string, err error) {
	h.logger.Error(what, "category", "system", "error", err)
	writeJSONError(w, http.StatusInternalServerError, "could not load dashboard stats")
}
