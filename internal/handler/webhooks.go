// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/arajbanshi/folio/internal/model"
	"github.com/arajbanshi/folio/internal/notify"
	"github.com/arajbanshi/folio/internal/store"
)

// WebhooksHandler manages notification endpoint configuration.
type WebhooksHandler struct {
	queries    *store.Queries
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewWebhooksHandler creates a WebhooksHandler.
func NewWebhooksHandler(queries *store.Queries, dispatcher *notify.Dispatcher, logger *slog.Logger) *WebhooksHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhooksHandler{queries: queries, dispatcher: dispatcher, logger: logger}
}

// endpointRequest is the JSON body for creating or updating an endpoint.
type endpointRequest struct {
	Name      string `json:"name"`
	EventType string `json:"event_type"`
	URL       string `json:"url"`
	Enabled   *bool  `json:"enabled"`
}

func (req *endpointRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)
	switch {
	case req.Name == "":
		return "name is required"
	case !model.ValidEventType(req.EventType):
		return "event_type must be visitor or message"
	case req.URL == "":
		return "url is required"
	}
	parsed, err := url.Parse(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "url must be a valid http(s) URL"
	}
	return ""
}

// endpointView adds the detected platform to an endpoint.
type endpointView struct {
	model.WebhookEndpoint
	Platform notify.Platform `json:"platform"`
}

func toView(e model.WebhookEndpoint) endpointView {
	return endpointView{WebhookEndpoint: e, Platform: notify.DetectPlatform(e.URL)}
}

// List handles GET /admin/api/webhooks - all configured endpoints.
func (h *WebhooksHandler) List(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.queries.ListEndpoints(r.Context())
	if err != nil {
		h.logger.Error("listing webhook endpoints", "category", "webhook", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not list webhooks")
		return
	}

	views := make([]endpointView, 0, len(endpoints))
	for _, e := range endpoints {
		views = append(views, toView(e))
	}
	writeJSONSuccess(w, map[string]any{"webhooks": views})
}

// Create handles POST /admin/api/webhooks - registers a new endpoint.
func (h *WebhooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req endpointRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	endpoint, err := h.queries.CreateEndpoint(r.Context(), store.CreateEndpointParams{
		ID:        uuid.NewString(),
		Name:      req.Name,
		EventType: req.EventType,
		URL:       req.URL,
		Enabled:   enabled,
		CreatedAt: time.Now(),
	})
	if err != nil {
		h.logger.Error("creating webhook endpoint", "category", "webhook", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not create webhook")
		return
	}

	h.logger.Info("webhook endpoint created", "category", "webhook", "endpoint", endpoint.Name, "event_type", endpoint.EventType)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"webhook": toView(endpoint),
	})
}

// Update handles PUT /admin/api/webhooks/{id} - reconfigures an endpoint.
func (h *WebhooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadEndpoint(w, r)
	if !ok {
		return
	}

	var req endpointRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	enabled := existing.Enabled
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	err := h.queries.UpdateEndpoint(r.Context(), store.UpdateEndpointParams{
		ID:        existing.ID,
		Name:      req.Name,
		EventType: req.EventType,
		URL:       req.URL,
		Enabled:   enabled,
	})
	if err != nil {
		h.logger.Error("updating webhook endpoint", "category", "webhook", "endpoint_id", existing.ID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not update webhook")
		return
	}

	updated, err := h.queries.GetEndpoint(r.Context(), existing.ID)
	if err != nil {
		h.logger.Error("reloading webhook endpoint", "category", "webhook", "endpoint_id", existing.ID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load webhook")
		return
	}
	writeJSONSuccess(w, map[string]any{"webhook": toView(updated)})
}

// Delete handles DELETE /admin/api/webhooks/{id}.
func (h *WebhooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadEndpoint(w, r)
	if !ok {
		return
	}
	if err := h.queries.DeleteEndpoint(r.Context(), existing.ID); err != nil {
		h.logger.Error("deleting webhook endpoint", "category", "webhook", "endpoint_id", existing.ID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not delete webhook")
		return
	}
	h.logger.Info("webhook endpoint deleted", "category", "webhook", "endpoint", existing.Name)
	writeJSONSuccess(w, nil)
}

// Test handles POST /admin/api/webhooks/{id}/test - fires a sample
// notification at the endpoint and reports the delivery outcome.
func (h *WebhooksHandler) Test(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadEndpoint(w, r)
	if !ok {
		return
	}

	if err := h.dispatcher.SendTest(r.Context(), existing.EventType, existing.URL); err != nil {
		h.logger.Warn("webhook test delivery failed", "category", "webhook", "endpoint", existing.Name, "error", err)
		writeJSONError(w, http.StatusBadGateway, "test delivery failed: "+err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"platform": notify.DetectPlatform(existing.URL)})
}

// DetectPlatform handles GET /admin/api/webhooks/detect?url=... - previews
// which payload format a URL would receive.
func (h *WebhooksHandler) DetectPlatform(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeJSONError(w, http.StatusBadRequest, "url parameter is required")
		return
	}
	writeJSONSuccess(w, map[string]any{"platform": notify.DetectPlatform(rawURL)})
}

func (h *WebhooksHandler) loadEndpoint(w http.ResponseWriter, r *http.Request) (model.WebhookEndpoint, bool) {
	id := chi.URLParam(r, "id")
	endpoint, err := h.queries.GetEndpoint(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "webhook not found")
			return model.WebhookEndpoint{}, false
		}
		h.logger.Error("loading webhook endpoint", "category", "webhook", "endpoint_id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load webhook")
		return model.WebhookEndpoint{}, false
	}
	return endpoint, true
}
