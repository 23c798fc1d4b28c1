// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import "net/http"

// SecurityHeaders sets the standard hardening headers on every
// response. HSTS is only sent outside development.
func SecurityHeaders(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy",
				"default-src 'self'; "+
					"script-src 'self' 'unsafe-inline' https://hcaptcha.com https://*.hcaptcha.com; "+
					"style-src 'self' 'unsafe-inline' https://hcaptcha.com https://*.hcaptcha.com; "+
					"img-src 'self' data: https:; "+
					"frame-src https://hcaptcha.com https://*.hcaptcha.com; "+
					"object-src 'none'; base-uri 'self'; form-action 'self'")
			if !isDev {
				h.Set("Strict-Transport-Security", "max-age=31536000")
			}
			next.ServeHTTP(w, r)
		})
	}
}
