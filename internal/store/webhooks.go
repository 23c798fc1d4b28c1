// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/arajbanshi/folio/internal/model"
)

const createEndpoint = `
INSERT INTO webhook_endpoints (id, name, event_type, url, enabled, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

// CreateEndpointParams holds parameters for CreateEndpoint.
type CreateEndpointParams struct {
	ID        string
	Name      string
	EventType string
	URL       string
	Enabled   bool
	CreatedAt time.Time
}

// CreateEndpoint inserts a webhook endpoint and returns it.
func (q *Queries) CreateEndpoint(ctx context.Context, arg CreateEndpointParams) (model.WebhookEndpoint, error) {
	_, err := q.db.ExecContext(ctx, createEndpoint,
		arg.ID, arg.Name, arg.EventType, arg.URL, arg.Enabled, arg.CreatedAt)
	if err != nil {
		return model.WebhookEndpoint{}, err
	}
	return model.WebhookEndpoint{
		ID:        arg.ID,
		Name:      arg.Name,
		EventType: arg.EventType,
		URL:       arg.URL,
		Enabled:   arg.Enabled,
		CreatedAt: arg.CreatedAt,
	}, nil
}

const getEndpoint = `
SELECT id, name, event_type, url, enabled, created_at
FROM webhook_endpoints WHERE id = ?
`

// GetEndpoint fetches a single endpoint by ID.
func (q *Queries) GetEndpoint(ctx context.Context, id string) (model.WebhookEndpoint, error) {
	row := q.db.QueryRowContext(ctx, getEndpoint, id)
	var e model.WebhookEndpoint
	err := row.Scan(&e.ID, &e.Name, &e.EventType, &e.URL, &e.Enabled, &e.CreatedAt)
	return e, err
}

const listEndpoints = `
SELECT id, name, event_type, url, enabled, created_at
FROM webhook_endpoints ORDER BY created_at
`

// ListEndpoints returns all configured endpoints.
func (q *Queries) ListEndpoints(ctx context.Context) ([]model.WebhookEndpoint, error) {
	return q.queryEndpoints(ctx, listEndpoints)
}

const listEnabledEndpointsByType = `
SELECT id, name, event_type, url, enabled, created_at
FROM webhook_endpoints WHERE event_type = ? AND enabled = 1 ORDER BY created_at
`

// ListEnabledEndpointsByType returns the enabled endpoints for an event type.
// Called fresh on every dispatch so configuration edits apply immediately.
func (q *Queries) ListEnabledEndpointsByType(ctx context.Context, eventType string) ([]model.WebhookEndpoint, error) {
	return q.queryEndpoints(ctx, listEnabledEndpointsByType, eventType)
}

func (q *Queries) queryEndpoints(ctx context.Context, query string, args ...any) ([]model.WebhookEndpoint, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var endpoints []model.WebhookEndpoint
	for rows.Next() {
		var e model.WebhookEndpoint
		if err := rows.Scan(&e.ID, &e.Name, &e.EventType, &e.URL, &e.Enabled, &e.CreatedAt); err != nil {
			return nil, err
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

const updateEndpoint = `
UPDATE webhook_endpoints SET name = ?, event_type = ?, url = ?, enabled = ? WHERE id = ?
`

// UpdateEndpointParams holds parameters for UpdateEndpoint.
type UpdateEndpointParams struct {
	ID        string
	Name      string
	EventType string
	URL       string
	Enabled   bool
}

// UpdateEndpoint updates an endpoint's configuration.
func (q *Queries) UpdateEndpoint(ctx context.Context, arg UpdateEndpointParams) error {
	_, err := q.db.ExecContext(ctx, updateEndpoint,
		arg.Name, arg.EventType, arg.URL, arg.Enabled, arg.ID)
	return err
}

const deleteEndpoint = `DELETE FROM webhook_endpoints WHERE id = ?`

// DeleteEndpoint removes an endpoint.
func (q *Queries) DeleteEndpoint(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteEndpoint, id)
	return err
}
