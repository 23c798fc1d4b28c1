// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/arajbanshi/folio/internal/model"
)

const createVisit = `
INSERT INTO visits (
    id, created_at, ip_address, user_agent, device_info,
    device_summary, os_summary, browser_summary, display_summary, facts
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// CreateVisitParams holds parameters for CreateVisit.
type CreateVisitParams struct {
	ID             string
	CreatedAt      time.Time
	IPAddress      string
	UserAgent      string
	DeviceInfo     string
	DeviceSummary  string
	OSSummary      string
	BrowserSummary string
	DisplaySummary string
	Facts          string
}

// CreateVisit inserts a visit record and returns it.
func (q *Queries) CreateVisit(ctx context.Context, arg CreateVisitParams) (model.Visit, error) {
	_, err := q.db.ExecContext(ctx, createVisit,
		arg.ID, arg.CreatedAt, arg.IPAddress, arg.UserAgent, arg.DeviceInfo,
		arg.DeviceSummary, arg.OSSummary, arg.BrowserSummary, arg.DisplaySummary, arg.Facts)
	if err != nil {
		return model.Visit{}, err
	}
	return model.Visit{
		ID:             arg.ID,
		CreatedAt:      arg.CreatedAt,
		IPAddress:      arg.IPAddress,
		UserAgent:      arg.UserAgent,
		DeviceInfo:     arg.DeviceInfo,
		DeviceSummary:  arg.DeviceSummary,
		OSSummary:      arg.OSSummary,
		BrowserSummary: arg.BrowserSummary,
		DisplaySummary: arg.DisplaySummary,
		Facts:          arg.Facts,
	}, nil
}

const getVisit = `
SELECT id, created_at, ip_address, user_agent, device_info,
       device_summary, os_summary, browser_summary, display_summary, facts
FROM visits WHERE id = ?
`

// GetVisit fetches a single visit by ID.
func (q *Queries) GetVisit(ctx context.Context, id string) (model.Visit, error) {
	row := q.db.QueryRowContext(ctx, getVisit, id)
	var v model.Visit
	err := row.Scan(&v.ID, &v.CreatedAt, &v.IPAddress, &v.UserAgent, &v.DeviceInfo,
		&v.DeviceSummary, &v.OSSummary, &v.BrowserSummary, &v.DisplaySummary, &v.Facts)
	return v, err
}

const listRecentVisits = `
SELECT id, created_at, ip_address, user_agent, device_info,
       device_summary, os_summary, browser_summary, display_summary, facts
FROM visits ORDER BY created_at DESC LIMIT ?
`

// ListRecentVisits returns the most recent visits, newest first.
func (q *Queries) ListRecentVisits(ctx context.Context, limit int64) ([]model.Visit, error) {
	rows, err := q.db.QueryContext(ctx, listRecentVisits, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var visits []model.Visit
	for rows.Next() {
		var v model.Visit
		if err := rows.Scan(&v.ID, &v.CreatedAt, &v.IPAddress, &v.UserAgent, &v.DeviceInfo,
			&v.DeviceSummary, &v.OSSummary, &v.BrowserSummary, &v.DisplaySummary, &v.Facts); err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

const countVisits = `SELECT COUNT(*) FROM visits`

// CountVisits returns the total number of recorded visits.
func (q *Queries) CountVisits(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countVisits).Scan(&count)
	return count, err
}

const countVisitsSince = `SELECT COUNT(*) FROM visits WHERE created_at >= ?`

// CountVisitsSince returns the number of visits recorded at or after t.
func (q *Queries) CountVisitsSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countVisitsSince, t).Scan(&count)
	return count, err
}

const countUniqueVisitors = `SELECT COUNT(DISTINCT ip_address) FROM visits`

// CountUniqueVisitors returns the number of distinct visitor IPs overall.
func (q *Queries) CountUniqueVisitors(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUniqueVisitors).Scan(&count)
	return count, err
}

const countUniqueVisitorsSince = `SELECT COUNT(DISTINCT ip_address) FROM visits WHERE created_at >= ?`

// CountUniqueVisitorsSince returns the number of distinct visitor IPs at or after t.
func (q *Queries) CountUniqueVisitorsSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUniqueVisitorsSince, t).Scan(&count)
	return count, err
}

const deleteVisitsBefore = `DELETE FROM visits WHERE created_at < ?`

// DeleteVisitsBefore removes visits older than t and returns the number deleted.
func (q *Queries) DeleteVisitsBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteVisitsBefore, t)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
