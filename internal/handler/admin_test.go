// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arajbanshi/folio/internal/store"
)

func TestAdminStats(t *testing.T) {
	queries := store.New(testDB(t))
	h := NewAdminHandler(queries, testLogger())

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	// Two visits today from the same IP, one last week from another,
	// one outside the weekly window.
	seedVisitAt(t, queries, "v-1", now.Add(-1*time.Hour), "203.0.113.5")
	seedVisitAt(t, queries, "v-2", now.Add(-2*time.Hour), "203.0.113.5")
	seedVisitAt(t, queries, "v-3", now.AddDate(0, 0, -3), "198.51.100.7")
	seedVisitAt(t, queries, "v-4", now.AddDate(0, 0, -10), "192.0.2.1")

	seedMessage(t, queries, "m-1", now.Add(-30*time.Minute))

	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalVisits         int64 `json:"total_visits"`
		VisitsToday         int64 `json:"visits_today"`
		VisitsWeek          int64 `json:"visits_week"`
		UniqueVisitors      int64 `json:"unique_visitors"`
		UniqueVisitorsToday int64 `json:"unique_visitors_today"`
		UnreadMessages      int64 `json:"unread_messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(4), resp.TotalVisits)
	assert.Equal(t, int64(2), resp.VisitsToday)
	assert.Equal(t, int64(3), resp.VisitsWeek)
	assert.Equal(t, int64(3), resp.UniqueVisitors)
	assert.Equal(t, int64(1), resp.UniqueVisitorsToday)
	assert.Equal(t, int64(1), resp.UnreadMessages)
}

func seedVisitAt(t *testing.T, q *store.Queries, id string, createdAt time.Time, ip string) {
	t.Helper()
	_, err := q.CreateVisit(context.Background(), store.CreateVisitParams{
		ID:        id,
		CreatedAt: createdAt,
		IPAddress: ip,
		Facts:     "[]",
	})
	require.NoError(t, err)
}
