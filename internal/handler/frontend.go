// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/arajbanshi/folio/internal/captcha"
	"github.com/arajbanshi/folio/internal/content"
	"github.com/arajbanshi/folio/internal/tracker"
)

// Contact form field limits.
const (
	maxNameLen    = 100
	maxSubjectLen = 200
	maxBodyLen    = 5000

	// honeypotField is a hidden form input real browsers leave empty.
	honeypotField = "_website"

	// maxDeviceInfoBytes caps a client metadata report.
	maxDeviceInfoBytes = 16 << 10
)

// FrontendHandler serves the public site: the portfolio page, the
// contact form and the client device-info endpoint.
type FrontendHandler struct {
	tracker *tracker.Service
	content *content.Store
	captcha *captcha.Verifier
	tmpl    *template.Template
	logger  *slog.Logger
}

// NewFrontendHandler creates a FrontendHandler.
func NewFrontendHandler(tr *tracker.Service, cs *content.Store, cv *captcha.Verifier, tmpl *template.Template, logger *slog.Logger) *FrontendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FrontendHandler{
		tracker: tr,
		content: cs,
		captcha: cv,
		tmpl:    tmpl,
		logger:  logger,
	}
}

// homeData holds data for the home template.
type homeData struct {
	Content        map[string]any
	AboutHTML      template.HTML
	CaptchaEnabled bool
	CaptchaSiteKey string
}

// Home handles GET / - renders the portfolio page and records the visit.
// Tracking failure never breaks the page: the visitor still gets content.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if _, err := h.tracker.TrackVisit(r.Context(), ip, r.UserAgent()); err != nil {
		h.logger.Error("recording visit", "category", "visitor", "ip", ip, "error", err)
	}

	doc, err := h.content.Read()
	if err != nil {
		h.logger.Error("loading site content", "category", "content", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := homeData{
		Content:        doc,
		CaptchaEnabled: h.captcha.Enabled(),
		CaptchaSiteKey: h.captcha.SiteKey(),
	}
	if about, ok := doc["about"].(map[string]any); ok {
		if text, ok := about["text"].(string); ok {
			rendered, err := content.RenderMarkdown(text)
			if err == nil {
				data.AboutHTML = rendered
			}
		}
	}

	if err := h.tmpl.ExecuteTemplate(w, "home.html", data); err != nil {
		h.logger.Error("rendering home page", "error", err)
	}
}

// DeviceInfo handles POST /api/device-info - stores client-reported
// metadata keyed by IP for the next page load to pick up.
func (h *FrontendHandler) DeviceInfo(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxDeviceInfoBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	if err := h.tracker.StoreDeviceInfo(r.Context(), clientIP(r), payload); err != nil {
		if errors.Is(err, tracker.ErrInvalidDeviceInfo) {
			writeJSONError(w, http.StatusBadRequest, "invalid device info payload")
			return
		}
		h.logger.Error("storing device info", "category", "visitor", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "could not store device info")
		return
	}
	writeJSONSuccess(w, nil)
}

// Contact handles POST /contact - validates and records a contact form
// submission, then redirects to the success page.
func (h *FrontendHandler) Contact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// Bots fill every field; humans never see this one.
	if r.PostFormValue(honeypotField) != "" {
		h.logger.Warn("contact form honeypot triggered", "category", "message", "ip", clientIP(r))
		http.Redirect(w, r, "/success", http.StatusSeeOther)
		return
	}

	fullName := strings.TrimSpace(r.PostFormValue("fullname"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	subject := strings.TrimSpace(r.PostFormValue("subject"))
	body := strings.TrimSpace(r.PostFormValue("message"))

	if msg := validateContactForm(fullName, email, subject, body); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	ip := clientIP(r)
	ok, err := h.captcha.Verify(r.Context(), r.PostFormValue("h-captcha-response"), ip)
	if err != nil {
		h.logger.Error("verifying captcha", "category", "message", "error", err)
		http.Error(w, "Could not verify captcha, please try again", http.StatusServiceUnavailable)
		return
	}
	if !ok {
		http.Error(w, "Captcha verification failed", http.StatusBadRequest)
		return
	}

	if _, err := h.tracker.SubmitMessage(r.Context(), fullName, email, subject, body, ip); err != nil {
		h.logger.Error("recording contact message", "category", "message", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/success", http.StatusSeeOther)
}

// Success handles GET /success - the post-submission thank-you page.
func (h *FrontendHandler) Success(w http.ResponseWriter, r *http.Request) {
	if err := h.tmpl.ExecuteTemplate(w, "success.html", nil); err != nil {
		h.logger.Error("rendering success page", "error", err)
	}
}

func validateContactForm(fullName, email, subject, body string) string {
	switch {
	case fullName == "" || email == "" || subject == "" || body == "":
		return "All fields are required"
	case len(fullName) > maxNameLen:
		return "Name is too long"
	case len(subject) > maxSubjectLen:
		return "Subject is too long"
	case len(body) > maxBodyLen:
		return "Message is too long"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Invalid email address"
	}
	return ""
}
