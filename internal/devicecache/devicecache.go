// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package devicecache bridges the gap between the client script posting
// device metadata and the page-view request that wants it: metadata is
// keyed by IP, held briefly, and consumed by the next matching visit.
// The contract is best-effort — entries may expire or go stale, and a
// missing entry just means the visit records without client metadata.
package devicecache

import (
	"context"
	"time"
)

// DefaultTTL bounds how long unconsumed metadata is retained. Consumed
// entries are removed immediately; the TTL only caps orphans.
const DefaultTTL = 2 * time.Minute

// Store holds client-reported device metadata keyed by IP address.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put stores raw metadata JSON for an IP, replacing any previous
	// entry and restarting its TTL.
	Put(ctx context.Context, ip string, payload []byte) error

	// Take retrieves and removes the metadata for an IP. The second
	// return is false when no live entry exists.
	Take(ctx context.Context, ip string) ([]byte, bool)

	// Close releases any resources held by the store.
	Close() error
}

// Config selects and tunes a Store backend.
type Config struct {
	// RedisURL enables the Redis backend when non-empty.
	RedisURL string

	// Prefix namespaces Redis keys (e.g. "folio:").
	Prefix string

	// TTL caps retention of unconsumed entries. Zero means DefaultTTL.
	TTL time.Duration
}

// New creates a Store for the given configuration. With a Redis URL the
// Redis backend is tried first; on connection failure the caller decides
// whether to fall back (see NewWithFallback).
func New(cfg Config) (Store, error) {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.RedisURL != "" {
		return NewRedisStore(cfg.RedisURL, cfg.Prefix, cfg.TTL)
	}
	return NewMemoryStore(cfg.TTL), nil
}

// NewWithFallback creates a Store, degrading to the in-memory backend
// when Redis is configured but unreachable. The returned error is the
// Redis failure, reported for logging only; the Store is always usable.
func NewWithFallback(cfg Config) (Store, error) {
	store, err := New(cfg)
	if err == nil {
		return store, nil
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	return NewMemoryStore(cfg.TTL), err
}
