// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geo resolves client IPs to a coarse location. A local
// GeoLite2-City database is used when configured; otherwise a single
// best-effort HTTP query goes to the ip-api.com JSON endpoint. Lookups
// never fail the caller: any error degrades to "location unknown".
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/arajbanshi/folio/internal/model"
)

const (
	// DefaultAPIURL is the ip-api.com JSON endpoint base.
	DefaultAPIURL = "http://ip-api.com/json"

	// lookupTimeout bounds the remote geolocation request.
	lookupTimeout = 5 * time.Second

	// loopbackSubstitute is queried in place of loopback addresses so
	// local testing still produces a plausible location. The public
	// service cannot resolve 127.0.0.1.
	loopbackSubstitute = "8.8.8.8"
)

// apiResponse mirrors the ip-api.com JSON response fields we consume.
type apiResponse struct {
	Status     string  `json:"status"`
	Country    string  `json:"country"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// cityRecord matches the GeoLite2-City database structure.
type cityRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Country struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	Subdivisions []struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"subdivisions"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

// Resolver performs IP geolocation lookups.
type Resolver struct {
	apiURL string
	client *http.Client
	logger *slog.Logger

	mu sync.RWMutex
	db *maxminddb.Reader
}

// NewResolver creates a Resolver querying the given API base URL.
// If apiURL is empty, DefaultAPIURL is used.
func NewResolver(apiURL string, logger *slog.Logger) *Resolver {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		apiURL: apiURL,
		client: &http.Client{Timeout: lookupTimeout},
		logger: logger,
	}
}

// InitLocalDB loads a GeoLite2-City database from the given path. If
// path is empty, local lookups are disabled and the remote API is used
// exclusively (graceful degradation).
func (r *Resolver) InitLocalDB(path string) error {
	if path == "" {
		return nil
	}

	db, err := maxminddb.Open(path)
	if err != nil {
		return fmt.Errorf("opening GeoIP database: %w", err)
	}

	r.mu.Lock()
	if r.db != nil {
		_ = r.db.Close()
	}
	r.db = db
	r.mu.Unlock()

	return nil
}

// Close releases the local database, if any.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		err := r.db.Close()
		r.db = nil
		return err
	}
	return nil
}

// Lookup resolves ip to a location. Returns nil when the address cannot
// be resolved; nil is a valid "unknown" result, never an error state
// the caller must handle. One attempt per call, no caching.
func (r *Resolver) Lookup(ctx context.Context, ip string) *model.GeoInfo {
	if ip == "" {
		return nil
	}
	if model.IsLoopback(ip) {
		ip = loopbackSubstitute
	}

	if geo := r.lookupLocal(ip); geo != nil {
		return geo
	}

	return r.lookupRemote(ctx, ip)
}

// lookupLocal consults the GeoLite2 database when one is loaded.
func (r *Resolver) lookupLocal(ip string) *model.GeoInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.db == nil {
		return nil
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil
	}

	var record cityRecord
	if err := r.db.Lookup(parsed, &record); err != nil {
		return nil
	}

	geo := &model.GeoInfo{
		Country: record.Country.Names["en"],
		City:    record.City.Names["en"],
		Lat:     record.Location.Latitude,
		Lon:     record.Location.Longitude,
	}
	if len(record.Subdivisions) > 0 {
		geo.Region = record.Subdivisions[0].Names["en"]
	}
	if geo.Country == "" && geo.City == "" {
		return nil
	}
	return geo
}

// lookupRemote issues a single GET to the ip-api.com endpoint.
func (r *Resolver) lookupRemote(ctx context.Context, ip string) *model.GeoInfo {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.apiURL+"/"+ip, nil)
	if err != nil {
		return nil
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("geo lookup request failed", "ip", ip, "error", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		r.logger.Debug("geo lookup non-200 response", "ip", ip, "status", resp.StatusCode)
		return nil
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		r.logger.Debug("geo lookup malformed response", "ip", ip, "error", err)
		return nil
	}

	if body.Status != "success" {
		return nil
	}

	return &model.GeoInfo{
		Country: body.Country,
		City:    body.City,
		Region:  body.RegionName,
		Lat:     body.Lat,
		Lon:     body.Lon,
	}
}
