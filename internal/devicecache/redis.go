// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package devicecache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisConnectTimeout = 5 * time.Second

// RedisStore is a Redis-backed Store, useful when multiple instances
// serve the site behind one address pool.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	closed atomic.Bool
}

// NewRedisStore connects to Redis at url and verifies the connection.
func NewRedisStore(url, prefix string, ttl time.Duration) (*RedisStore, error) {
	if url == "" {
		return nil, errors.New("redis URL is required")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

func (s *RedisStore) key(ip string) string {
	return s.prefix + "device:" + ip
}

// Put stores metadata for an IP with the configured TTL.
func (s *RedisStore) Put(ctx context.Context, ip string, payload []byte) error {
	if s.closed.Load() {
		return nil
	}
	return s.client.Set(ctx, s.key(ip), payload, s.ttl).Err()
}

// Take atomically retrieves and removes the entry for an IP.
func (s *RedisStore) Take(ctx context.Context, ip string) ([]byte, bool) {
	if s.closed.Load() {
		return nil, false
	}

	val, err := s.client.GetDel(ctx, s.key(ip)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
