// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/arajbanshi/folio/internal/model"
	"github.com/arajbanshi/folio/internal/store"
)

// testDB creates an in-memory SQLite database with the application schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// One connection so every query sees the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	schema := `
		CREATE TABLE visits (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			device_info TEXT NOT NULL DEFAULT '',
			device_summary TEXT NOT NULL DEFAULT '',
			os_summary TEXT NOT NULL DEFAULT '',
			browser_summary TEXT NOT NULL DEFAULT '',
			display_summary TEXT NOT NULL DEFAULT '',
			facts TEXT NOT NULL DEFAULT '[]'
		);

		CREATE TABLE contact_messages (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			fullname TEXT NOT NULL,
			email TEXT NOT NULL,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			ip_address TEXT NOT NULL DEFAULT '',
			viewed INTEGER NOT NULL DEFAULT 0,
			archived INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE webhook_endpoints (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			event_type TEXT NOT NULL CHECK (event_type IN ('visitor', 'message')),
			url TEXT NOT NULL,
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE admin_tokens (
			id TEXT PRIMARY KEY,
			token_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE TABLE event_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'general',
			message TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}
	return db
}

// testLogger discards all log output.
func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// nilGeo is a GeoLookup that never resolves a location.
type nilGeo struct{}

func (nilGeo) Lookup(ctx context.Context, ip string) *model.GeoInfo { return nil }

// fixedGeo always resolves to the same location.
type fixedGeo struct {
	info model.GeoInfo
}

func (g fixedGeo) Lookup(ctx context.Context, ip string) *model.GeoInfo {
	info := g.info
	return &info
}

// seedEndpoint inserts a webhook endpoint for tests.
func seedEndpoint(t *testing.T, q *store.Queries, arg store.CreateEndpointParams) model.WebhookEndpoint {
	t.Helper()
	endpoint, err := q.CreateEndpoint(context.Background(), arg)
	if err != nil {
		t.Fatalf("seeding endpoint: %v", err)
	}
	return endpoint
}
