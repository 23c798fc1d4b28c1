// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arajbanshi/folio/internal/captcha"
	"github.com/arajbanshi/folio/internal/content"
	"github.com/arajbanshi/folio/internal/devicecache"
	"github.com/arajbanshi/folio/internal/model"
	"github.com/arajbanshi/folio/internal/store"
	"github.com/arajbanshi/folio/internal/tracker"
	"github.com/arajbanshi/folio/web"
)

// noopNotifier satisfies tracker.Notifier without any delivery.
type noopNotifier struct{}

func (noopNotifier) DispatchVisit(ctx context.Context, visit *model.Visit, geo *model.GeoInfo) {}
func (noopNotifier) DispatchMessage(ctx context.Context, msg *model.ContactMessage, geo *model.GeoInfo) {
}

const testContent = `{
    "sidebar": {"name": "Jane Doe", "title": "Backend Engineer", "email": "jane@example.com"},
    "about": {"text": "I build **backend** systems."}
}`

func newFrontendRouter(t *testing.T) (*chi.Mux, *store.Queries) {
	t.Helper()
	queries := store.New(testDB(t))

	contentPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(contentPath, []byte(testContent), 0o644))

	devices := devicecache.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = devices.Close() })

	trackerService := tracker.NewService(queries, nilGeo{}, noopNotifier{}, devices, testLogger())

	tmpl, err := web.Templates()
	require.NoError(t, err)

	h := NewFrontendHandler(trackerService, content.NewStore(contentPath, ""),
		captcha.NewVerifier("", ""), tmpl, testLogger())

	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Get("/success", h.Success)
	r.Post("/contact", h.Contact)
	r.Post("/api/device-info", h.DeviceInfo)
	return r, queries
}

func TestHomeRendersAndRecordsVisit(t *testing.T) {
	r, queries := newFrontendRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.5:4242"
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Firefox/143.0")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
	assert.Contains(t, rec.Body.String(), "<strong>backend</strong>")

	count, err := queries.CountVisits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestContactSubmission(t *testing.T) {
	r, queries := newFrontendRouter(t)

	form := url.Values{
		"fullname": {"Ana"},
		"email":    {"a@example.com"},
		"subject":  {"Hello"},
		"message":  {"Nice site!"},
	}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.5:4242"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/success", rec.Header().Get("Location"))

	messages, err := queries.ListMessages(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Ana", messages[0].FullName)
	assert.Equal(t, "203.0.113.5", messages[0].IPAddress)
}

func TestContactHoneypotDropsSilently(t *testing.T) {
	r, queries := newFrontendRouter(t)

	form := url.Values{
		"fullname": {"Bot"},
		"email":    {"bot@example.com"},
		"subject":  {"Spam"},
		"message":  {"Buy now"},
		"_website": {"https://spam.example.com"},
	}
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// Looks like success to the bot, but nothing is stored.
	require.Equal(t, http.StatusSeeOther, rec.Code)
	messages, err := queries.ListMessages(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestContactValidation(t *testing.T) {
	r, _ := newFrontendRouter(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing fields", url.Values{"fullname": {"Ana"}}},
		{"bad email", url.Values{
			"fullname": {"Ana"}, "email": {"not-an-email"},
			"subject": {"Hi"}, "message": {"Hello"},
		}},
		{"oversized name", url.Values{
			"fullname": {strings.Repeat("a", maxNameLen+1)}, "email": {"a@example.com"},
			"subject": {"Hi"}, "message": {"Hello"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDeviceInfoEndpoint(t *testing.T) {
	r, _ := newFrontendRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/device-info",
		strings.NewReader(`{"screen":{"width":1920,"height":1080}}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/device-info", strings.NewReader(`{not json`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuccessPage(t *testing.T) {
	r, _ := newFrontendRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/success", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thank you")
}
