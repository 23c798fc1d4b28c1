// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arajbanshi/folio/internal/model"
	"github.com/arajbanshi/folio/internal/store"
)

// MessagesHandler serves the admin contact-message inbox.
type MessagesHandler struct {
	queries *store.Queries
	geo     GeoLookup
	logger  *slog.Logger
}

// NewMessagesHandler creates a MessagesHandler.
func NewMessagesHandler(queries *store.Queries, geo GeoLookup, logger *slog.Logger) *MessagesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessagesHandler{queries: queries, geo: geo, logger: logger}
}

// messageView is a message enriched with location data for the admin UI.
type messageView struct {
	model.ContactMessage
	Location *model.GeoInfo `json:"location,omitempty"`
}

// List handles GET /admin/api/messages - non-archived messages, newest
// first. ?unread=1 narrows to unviewed messages.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	unreadOnly := r.URL.Query().Get("unread") == "1"

	messages, err := h.queries.ListMessages(r.Context(), unreadOnly)
	if err != nil {
		h.logger.Error("listing messages", "category", "message", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not list messages")
		return
	}
	if messages == nil {
		messages = []model.ContactMessage{}
	}
	writeJSONSuccess(w, map[string]any{"messages": messages})
}

// Get handles GET /admin/api/messages/{id} - one message with location.
func (h *MessagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.loadMessage(w, r)
	if !ok {
		return
	}

	view := messageView{ContactMessage: msg}
	if h.geo != nil {
		view.Location = h.geo.Lookup(r.Context(), msg.IPAddress)
	}
	writeJSONSuccess(w, map[string]any{"message": view})
}

// MarkRead handles POST /admin/api/messages/{id}/read.
func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.setViewed(w, r, true)
}

// MarkUnread handles POST /admin/api/messages/{id}/unread.
func (h *MessagesHandler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	h.setViewed(w, r, false)
}

func (h *MessagesHandler) setViewed(w http.ResponseWriter, r *http.Request, viewed bool) {
	msg, ok := h.loadMessage(w, r)
	if !ok {
		return
	}
	if err := h.queries.SetMessageViewed(r.Context(), msg.ID, viewed); err != nil {
		h.logger.Error("updating message viewed flag", "category", "message", "message_id", msg.ID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not update message")
		return
	}
	writeJSONSuccess(w, nil)
}

// Archive handles POST /admin/api/messages/{id}/archive - hides a
// message from the inbox without deleting it.
func (h *MessagesHandler) Archive(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.loadMessage(w, r)
	if !ok {
		return
	}
	if err := h.queries.SetMessageArchived(r.Context(), msg.ID, true); err != nil {
		h.logger.Error("archiving message", "category", "message", "message_id", msg.ID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not archive message")
		return
	}
	writeJSONSuccess(w, nil)
}

// Delete handles DELETE /admin/api/messages/{id} - permanent removal.
func (h *MessagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.loadMessage(w, r)
	if !ok {
		return
	}
	if err := h.queries.DeleteMessage(r.Context(), msg.ID); err != nil {
		h.logger.Error("deleting message", "category", "message", "message_id", msg.ID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not delete message")
		return
	}
	writeJSONSuccess(w, nil)
}

func (h *MessagesHandler) loadMessage(w http.ResponseWriter, r *http.Request) (model.ContactMessage, bool) {
	id := chi.URLParam(r, "id")
	msg, err := h.queries.GetMessage(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONError(w, http.StatusNotFound, "message not found")
			return model.ContactMessage{}, false
		}
		h.logger.Error("loading message", "category", "message", "message_id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load message")
		return model.ContactMessage{}, false
	}
	return msg, true
}
