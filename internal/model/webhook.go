// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// WebhookEndpoint represents a configured outbound notification target.
// Endpoints are owned by configuration and read fresh on every dispatch,
// so admin edits take effect immediately.
type WebhookEndpoint struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	EventType string    `json:"event_type"` // "visitor" or "message"
	URL       string    `json:"url"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidEventType reports whether t is a known webhook event type.
func ValidEventType(t string) bool {
	return t == EventTypeVisitor || t == EventTypeMessage
}
