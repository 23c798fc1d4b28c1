// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/arajbanshi/folio/internal/model"
)

// postTimeout bounds each webhook POST. There are no retries.
const postTimeout = 5 * time.Second

// EndpointSource provides the enabled endpoints for an event type. It is
// queried fresh on every dispatch so configuration edits apply to the
// next event without a restart.
type EndpointSource interface {
	ListEnabledEndpointsByType(ctx context.Context, eventType string) ([]model.WebhookEndpoint, error)
}

// Dispatcher fans out event notifications to configured webhook
// endpoints. Each endpoint is an independent failure domain: a timeout
// or error on one never cancels or delays delivery to the others.
type Dispatcher struct {
	endpoints EndpointSource
	client    *http.Client
	logger    *slog.Logger
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher reading endpoints from src.
func NewDispatcher(src EndpointSource, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		endpoints: src,
		client:    &http.Client{Timeout: postTimeout},
		logger:    logger,
		now:       time.Now,
	}
}

// DispatchVisit notifies all enabled visitor endpoints about a recorded
// visit. Best-effort: failures are logged, never returned.
func (d *Dispatcher) DispatchVisit(ctx context.Context, visit *model.Visit, geo *model.GeoInfo) {
	d.dispatch(ctx, model.EventTypeVisitor, func(platform Platform) map[string]any {
		return FormatVisit(platform, visit, geo, d.now())
	})
}

// DispatchMessage notifies all enabled message endpoints about a contact
// submission. Best-effort: failures are logged, never returned.
func (d *Dispatcher) DispatchMessage(ctx context.Context, msg *model.ContactMessage, geo *model.GeoInfo) {
	d.dispatch(ctx, model.EventTypeMessage, func(platform Platform) map[string]any {
		return FormatMessage(platform, msg, geo, d.now())
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, eventType string, format func(Platform) map[string]any) {
	endpoints, err := d.endpoints.ListEnabledEndpointsByType(ctx, eventType)
	if err != nil {
		d.logger.Error("loading webhook endpoints", "event_type", eventType, "error", err)
		return
	}
	if len(endpoints) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, ep := range endpoints {
		wg.Add(1)
		go func(ep model.WebhookEndpoint) {
			defer wg.Done()

			payload := format(DetectPlatform(ep.URL))
			if err := d.Post(ctx, ep.URL, payload); err != nil {
				d.logger.Warn("webhook delivery failed",
					"endpoint", ep.Name, "event_type", eventType, "error", err)
				return
			}
			d.logger.Debug("webhook delivered", "endpoint", ep.Name, "event_type", eventType)
		}(ep)
	}
	wg.Wait()
}

// Post sends one JSON payload to a webhook URL. Success is any 2xx
// response. Exposed for the admin test-fire flow.
func (d *Dispatcher) Post(ctx context.Context, url string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
