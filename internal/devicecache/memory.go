// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package devicecache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// cleanupInterval is how often expired orphan entries are swept.
const cleanupInterval = time.Minute

// MemoryStore is the default in-process Store backend.
type MemoryStore struct {
	data   sync.Map
	ttl    time.Duration
	stopCh chan struct{}
	closed atomic.Bool
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store with the given TTL for
// unconsumed entries.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Put stores metadata for an IP, replacing any previous entry.
func (s *MemoryStore) Put(_ context.Context, ip string, payload []byte) error {
	if s.closed.Load() {
		return nil
	}

	buf := make([]byte, len(payload))
	copy(buf, payload)

	s.data.Store(ip, &memoryEntry{
		payload:   buf,
		expiresAt: time.Now().Add(s.ttl),
	})
	return nil
}

// Take retrieves and removes the live entry for an IP.
func (s *MemoryStore) Take(_ context.Context, ip string) ([]byte, bool) {
	if s.closed.Load() {
		return nil, false
	}

	val, loaded := s.data.LoadAndDelete(ip)
	if !loaded {
		return nil, false
	}

	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.payload, true
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	return nil
}

// Sweep removes expired entries. Exposed so the scheduler can trigger a
// sweep alongside other maintenance jobs.
func (s *MemoryStore) Sweep() {
	now := time.Now()
	s.data.Range(func(key, value any) bool {
		if now.After(value.(*memoryEntry).expiresAt) {
			s.data.Delete(key)
		}
		return true
	})
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stopCh:
			return
		}
	}
}

var _ Store = (*MemoryStore)(nil)
