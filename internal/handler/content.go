// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arajbanshi/folio/internal/content"
	"github.com/arajbanshi/folio/internal/media"
)

// ContentHandler manages the site content document and image uploads.
type ContentHandler struct {
	store     *content.Store
	processor *media.Processor
	logger    *slog.Logger
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(store *content.Store, processor *media.Processor, logger *slog.Logger) *ContentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentHandler{store: store, processor: processor, logger: logger}
}

// Get handles GET /admin/api/content - the full content document.
func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Read()
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "content not configured")
			return
		}
		h.logger.Error("loading content", "category", "content", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not load content")
		return
	}
	writeJSONSuccess(w, map[string]any{"content": doc})
}

// GetSection handles GET /admin/api/content/{section} - one top-level
// section of the document.
func (h *ContentHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "section")
	section, err := h.store.Section(name)
	if err != nil {
		switch {
		case errors.Is(err, content.ErrSectionNotFound):
			writeJSONError(w, http.StatusNotFound, "section not found")
		case errors.Is(err, content.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "content not configured")
		default:
			h.logger.Error("loading content section", "category", "content", "section", name, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "could not load content")
		}
		return
	}
	writeJSONSuccess(w, map[string]any{"section": section})
}

// Update handles PUT /admin/api/content - merges updates into the
// document and returns the result.
func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var updates map[string]any
	if err := decodeJSONBody(r, &updates); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(updates) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no updates provided")
		return
	}

	doc, err := h.store.Update(updates)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "content not configured")
			return
		}
		// Validation failures surface as plain errors from the store.
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("content updated", "category", "content", "sections", len(updates))
	writeJSONSuccess(w, map[string]any{"content": doc})
}

// UpdateSkills handles PUT /admin/api/content/skills - validates and
// replaces the whole skills section.
func (h *ContentHandler) UpdateSkills(w http.ResponseWriter, r *http.Request) {
	var skills map[string]any
	if err := decodeJSONBody(r, &skills); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.store.UpdateSkills(skills)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("skills updated", "category", "content")
	writeJSONSuccess(w, map[string]any{"content": doc})
}

// DeleteSkillSection handles DELETE /admin/api/content/skills/{section} -
// removes one skill section and renumbers the rest.
func (h *ContentHandler) DeleteSkillSection(w http.ResponseWriter, r *http.Request) {
	sectionID := chi.URLParam(r, "section")
	doc, err := h.store.DeleteSkillSection(sectionID)
	if err != nil {
		h.logger.Error("deleting skill section", "category", "content", "section", sectionID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not delete skill section")
		return
	}

	h.logger.Info("skill section deleted", "category", "content", "section", sectionID)
	writeJSONSuccess(w, map[string]any{"content": doc})
}

// UploadImage handles POST /admin/api/content/images - multipart upload
// of a skill icon or project screenshot.
func (h *ContentHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(media.MaxUploadBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	kind := r.FormValue("kind")
	title := r.FormValue("title")
	if title == "" {
		writeJSONError(w, http.StatusBadRequest, "title is required")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.processor.Process(file, kind, title)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("image uploaded", "category", "content", "kind", kind, "name", result.Name)
	writeJSONSuccess(w, map[string]any{
		"name":   result.Name,
		"width":  result.Width,
		"height": result.Height,
		"size":   result.Size,
	})
}

// DeleteImage handles DELETE /admin/api/content/images/{kind}/{name}.
func (h *ContentHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	name := chi.URLParam(r, "name")
	if kind != media.KindSkillIcon && kind != media.KindProjectImg {
		writeJSONError(w, http.StatusBadRequest, "unknown image kind")
		return
	}

	if err := h.processor.Delete(kind, name); err != nil {
		h.logger.Error("deleting image", "category", "content", "kind", kind, "name", name, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not delete image")
		return
	}
	writeJSONSuccess(w, nil)
}
