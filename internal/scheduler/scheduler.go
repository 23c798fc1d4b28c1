// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance: visit retention purging
// and device-cache sweeping.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/arajbanshi/folio/internal/devicecache"
	"github.com/arajbanshi/folio/internal/store"
)

// Scheduler owns the background cron jobs.
type Scheduler struct {
	cron          *cron.Cron
	queries       *store.Queries
	devices       devicecache.Store
	retentionDays int
	logger        *slog.Logger
}

// New creates a Scheduler. retentionDays <= 0 disables the purge job.
func New(queries *store.Queries, devices devicecache.Store, retentionDays int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:          cron.New(),
		queries:       queries,
		devices:       devices,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// Start registers and starts the jobs.
func (s *Scheduler) Start() {
	if s.retentionDays > 0 {
		// Daily at 03:30: purge visits past the retention window.
		_, _ = s.cron.AddFunc("30 3 * * *", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := s.PurgeOldVisits(ctx); err != nil {
				s.logger.Error("visit retention purge failed", "error", err)
			}
		})
	}

	if mem, ok := s.devices.(*devicecache.MemoryStore); ok {
		// Hourly: sweep orphaned device metadata.
		_, _ = s.cron.AddFunc("0 * * * *", mem.Sweep)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "retention_days", s.retentionDays)
}

// Stop stops the cron runner and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// PurgeOldVisits deletes visits older than the retention window.
func (s *Scheduler) PurgeOldVisits(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.queries.DeleteVisitsBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.logger.Info("purged old visits", "deleted", deleted, "cutoff", cutoff)
	}
	return nil
}
