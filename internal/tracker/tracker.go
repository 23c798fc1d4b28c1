// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tracker records visitor and contact-message events and drives
// the notification workflow around them. The ordering invariant lives
// here: an event is durably persisted before any webhook is attempted,
// and delivery outcome never affects the stored record.
package tracker

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arajbanshi/folio/internal/botcheck"
	"github.com/arajbanshi/folio/internal/devicecache"
	"github.com/arajbanshi/folio/internal/model"
	"github.com/arajbanshi/folio/internal/store"
)

// EventStore persists visit and message records.
type EventStore interface {
	CreateVisit(ctx context.Context, arg store.CreateVisitParams) (model.Visit, error)
	CreateMessage(ctx context.Context, arg store.CreateMessageParams) (model.ContactMessage, error)
}

// GeoLookup resolves an IP to a location, nil meaning unknown.
type GeoLookup interface {
	Lookup(ctx context.Context, ip string) *model.GeoInfo
}

// Notifier fans out webhook notifications. Implementations are
// best-effort and never return errors to the caller.
type Notifier interface {
	DispatchVisit(ctx context.Context, visit *model.Visit, geo *model.GeoInfo)
	DispatchMessage(ctx context.Context, msg *model.ContactMessage, geo *model.GeoInfo)
}

// Service orchestrates event recording, bot filtering, geolocation and
// webhook dispatch.
type Service struct {
	store    EventStore
	geo      GeoLookup
	notifier Notifier
	devices  devicecache.Store
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires a tracker Service. devices may be nil when no device
// metadata bridging is wanted (visits then record without client data).
func NewService(st EventStore, geo GeoLookup, notifier Notifier, devices devicecache.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    st,
		geo:      geo,
		notifier: notifier,
		devices:  devices,
		logger:   logger,
		now:      time.Now,
	}
}

// StoreDeviceInfo records client-reported device metadata for later
// consumption by the next visit from the same IP. Malformed payloads
// are rejected; staleness is acceptable by contract.
func (s *Service) StoreDeviceInfo(ctx context.Context, ip string, payload []byte) error {
	if s.devices == nil {
		return nil
	}
	if !json.Valid(payload) {
		return ErrInvalidDeviceInfo
	}
	return s.devices.Put(ctx, ip, payload)
}

// TrackVisit records a page load and, unless the visitor is loopback or
// classified as a bot, resolves geolocation and dispatches visitor
// webhooks. Persistence failure is the only error returned; notification
// problems never surface.
func (s *Service) TrackVisit(ctx context.Context, ip, rawUA string) (*model.Visit, error) {
	var deviceJSON string
	var info map[string]any
	if s.devices != nil {
		if payload, ok := s.devices.Take(ctx, ip); ok {
			if err := json.Unmarshal(payload, &info); err == nil {
				deviceJSON = string(payload)
			}
		}
	}

	sum := summarize(rawUA, info)
	visit := model.Visit{
		ID:             uuid.NewString(),
		CreatedAt:      s.now(),
		IPAddress:      ip,
		UserAgent:      rawUA,
		DeviceInfo:     deviceJSON,
		DeviceSummary:  sum.Device,
		OSSummary:      sum.OS,
		BrowserSummary: sum.Browser,
		DisplaySummary: sum.Display,
	}
	visit.SetFacts(collectFacts(info))

	created, err := s.store.CreateVisit(ctx, store.CreateVisitParams{
		ID:             visit.ID,
		CreatedAt:      visit.CreatedAt,
		IPAddress:      visit.IPAddress,
		UserAgent:      visit.UserAgent,
		DeviceInfo:     visit.DeviceInfo,
		DeviceSummary:  visit.DeviceSummary,
		OSSummary:      visit.OSSummary,
		BrowserSummary: visit.BrowserSummary,
		DisplaySummary: visit.DisplaySummary,
		Facts:          visit.Facts,
	})
	if err != nil {
		return nil, err
	}

	if model.IsLoopback(ip) {
		s.logger.Debug("skipping visitor notification for loopback", "visit_id", created.ID)
		return &created, nil
	}
	if botcheck.IsBot(rawUA, info) {
		s.logger.Debug("skipping visitor notification for bot", "visit_id", created.ID, "user_agent", rawUA)
		return &created, nil
	}

	geo := s.geo.Lookup(ctx, ip)
	s.notifier.DispatchVisit(ctx, &created, geo)
	return &created, nil
}

// SubmitMessage records a contact-form submission and dispatches message
// webhooks. Messages are always notified; only visits are bot-filtered.
func (s *Service) SubmitMessage(ctx context.Context, fullName, email, subject, body, ip string) (*model.ContactMessage, error) {
	created, err := s.store.CreateMessage(ctx, store.CreateMessageParams{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
		FullName:  fullName,
		Email:     email,
		Subject:   subject,
		Body:      body,
		IPAddress: ip,
	})
	if err != nil {
		return nil, err
	}

	geo := s.geo.Lookup(ctx, ip)
	s.notifier.DispatchMessage(ctx, &created, geo)
	return &created, nil
}

// ErrInvalidDeviceInfo rejects device metadata that is not valid JSON.
var ErrInvalidDeviceInfo = trackerError("device info payload is not valid JSON")

type trackerError string

func (e trackerError) Error() string { return string(e) }
