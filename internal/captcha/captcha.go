// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package captcha verifies hCaptcha responses on the public contact
// form. Verification is optional: with no secret configured, every
// submission passes.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultVerifyURL is the hCaptcha verification endpoint.
	DefaultVerifyURL = "https://api.hcaptcha.com/siteverify"

	verifyTimeout = 10 * time.Second
)

// VerifyResponse mirrors the hCaptcha API response.
type VerifyResponse struct {
	Success     bool      `json:"success"`
	ChallengeTS time.Time `json:"challenge_ts"`
	Hostname    string    `json:"hostname"`
	ErrorCodes  []string  `json:"error-codes"`
}

// Verifier checks captcha responses against the hCaptcha API.
type Verifier struct {
	siteKey   string
	secretKey string
	verifyURL string
	client    *http.Client
}

// NewVerifier creates a Verifier. With an empty secret the verifier is
// disabled and Verify always succeeds.
func NewVerifier(siteKey, secretKey string) *Verifier {
	return &Verifier{
		siteKey:   siteKey,
		secretKey: secretKey,
		verifyURL: DefaultVerifyURL,
		client:    &http.Client{Timeout: verifyTimeout},
	}
}

// Enabled reports whether captcha verification is configured.
func (v *Verifier) Enabled() bool {
	return v.secretKey != ""
}

// SiteKey returns the public site key for template rendering.
func (v *Verifier) SiteKey() string {
	return v.siteKey
}

// Verify checks an h-captcha-response token. A disabled verifier
// accepts everything; an enabled one requires a non-empty token the
// API confirms.
func (v *Verifier) Verify(ctx context.Context, response, remoteIP string) (bool, error) {
	if !v.Enabled() {
		return true, nil
	}
	if response == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", response)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("building captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha verification request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("parsing captcha response: %w", err)
	}
	return result.Success, nil
}
