// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// ContactMessage represents a contact form submission. The viewed and
// archived flags are the only fields mutated after creation, and only by
// the admin moderation flow.
type ContactMessage struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	FullName  string    `json:"fullname"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"message"`
	IPAddress string    `json:"ip_address"`
	Viewed    bool      `json:"viewed"`
	Archived  bool      `json:"archived"`
}
