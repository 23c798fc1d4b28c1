// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const replaceAdminToken = `INSERT INTO admin_tokens (id, token_hash, created_at) VALUES (?, ?, ?)`
const deleteAdminTokens = `DELETE FROM admin_tokens`

// ReplaceAdminToken deletes any existing admin tokens and stores the hash
// of a freshly generated one. Generating a new token revokes the old.
func (q *Queries) ReplaceAdminToken(ctx context.Context, id, tokenHash string, createdAt time.Time) error {
	if _, err := q.db.ExecContext(ctx, deleteAdminTokens); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, replaceAdminToken, id, tokenHash, createdAt)
	return err
}

const getAdminTokenHash = `SELECT token_hash FROM admin_tokens ORDER BY created_at DESC LIMIT 1`

// GetAdminTokenHash returns the stored hash of the current admin token.
func (q *Queries) GetAdminTokenHash(ctx context.Context) (string, error) {
	var hash string
	err := q.db.QueryRowContext(ctx, getAdminTokenHash).Scan(&hash)
	return hash, err
}
