// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/arajbanshi/folio/internal/auth"
	"github.com/arajbanshi/folio/internal/session"
	"github.com/arajbanshi/folio/internal/store"
)

// AuthHandler handles admin login and logout.
type AuthHandler struct {
	queries        *store.Queries
	sessionManager *scs.SessionManager
	tmpl           *template.Template
	logger         *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(queries *store.Queries, sm *scs.SessionManager, tmpl *template.Template, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		queries:        queries,
		sessionManager: sm,
		tmpl:           tmpl,
		logger:         logger,
	}
}

// loginData holds data for the login template.
type loginData struct {
	Error string
}

// LoginPage handles GET /admin/login - displays the token entry form.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.sessionManager.GetBool(r.Context(), session.KeyAuthenticated) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, loginData{})
}

// Login handles POST /admin/login - verifies the presented admin token
// against the stored hash and establishes the session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	token := strings.TrimSpace(r.PostFormValue("token"))
	if token == "" {
		h.renderLogin(w, loginData{Error: "Token is required"})
		return
	}

	hash, err := h.queries.GetAdminTokenHash(r.Context())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.logger.Warn("login attempted with no admin token configured", "category", "auth")
			h.renderLogin(w, loginData{Error: "No admin token configured; run with -generate-token first"})
			return
		}
		h.logger.Error("loading admin token hash", "category", "auth", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ok, err := auth.VerifyToken(token, hash)
	if err != nil {
		h.logger.Error("verifying admin token", "category", "auth", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !ok {
		h.logger.Warn("failed admin login attempt", "category", "auth", "ip", clientIP(r))
		h.renderLogin(w, loginData{Error: "Invalid token"})
		return
	}

	// Rotate the session ID on privilege change.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		h.logger.Error("renewing session token", "category", "auth", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.sessionManager.Put(r.Context(), session.KeyAuthenticated, true)

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /admin/logout - destroys the admin session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		h.logger.Error("destroying session", "category", "auth", "error", err)
	}
	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, data loginData) {
	if err := h.tmpl.ExecuteTemplate(w, "login.html", data); err != nil {
		h.logger.Error("rendering login page", "error", err)
	}
}
