// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for admin authentication,
// CSRF protection and security headers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"

	"github.com/arajbanshi/folio/internal/session"
)

// RequireAdmin gates the admin panel behind an authenticated session.
// Browser requests are redirected to the login page; API requests get
// a bare 401.
func RequireAdmin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sm.GetBool(r.Context(), session.KeyAuthenticated) {
				if wantsJSON(r) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/admin/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
