// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/arajbanshi/folio/internal/model"
)

// SendTest posts a sample notification of the given event type to url so
// an operator can verify a newly configured endpoint. Unlike Dispatch*,
// a failure is returned to the caller.
func (d *Dispatcher) SendTest(ctx context.Context, eventType, url string) error {
	platform := DetectPlatform(url)

	var payload map[string]any
	switch eventType {
	case model.EventTypeVisitor:
		visit := &model.Visit{
			ID:             uuid.NewString(),
			CreatedAt:      d.now(),
			IPAddress:      "127.0.0.1",
			DeviceSummary:  "Test Device",
			OSSummary:      "Test System",
			BrowserSummary: "Test Browser",
			DisplaySummary: "Test Display",
		}
		payload = FormatVisit(platform, visit, nil, d.now())
	case model.EventTypeMessage:
		msg := &model.ContactMessage{
			ID:        uuid.NewString(),
			CreatedAt: d.now(),
			FullName:  "Test User",
			Email:     "test@example.com",
			Subject:   "Test Subject",
			Body:      "This is a test message from your webhook configuration page.",
			IPAddress: "127.0.0.1",
		}
		payload = FormatMessage(platform, msg, nil, d.now())
	default:
		return fmt.Errorf("unknown webhook event type: %s", eventType)
	}

	return d.Post(ctx, url, payload)
}
