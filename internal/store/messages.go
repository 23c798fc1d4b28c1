// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/arajbanshi/folio/internal/model"
)

const createMessage = `
INSERT INTO contact_messages (id, created_at, fullname, email, subject, body, ip_address, viewed, archived)
VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0)
`

// CreateMessageParams holds parameters for CreateMessage.
type CreateMessageParams struct {
	ID        string
	CreatedAt time.Time
	FullName  string
	Email     string
	Subject   string
	Body      string
	IPAddress string
}

// CreateMessage inserts a contact message and returns it.
func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (model.ContactMessage, error) {
	_, err := q.db.ExecContext(ctx, createMessage,
		arg.ID, arg.CreatedAt, arg.FullName, arg.Email, arg.Subject, arg.Body, arg.IPAddress)
	if err != nil {
		return model.ContactMessage{}, err
	}
	return model.ContactMessage{
		ID:        arg.ID,
		CreatedAt: arg.CreatedAt,
		FullName:  arg.FullName,
		Email:     arg.Email,
		Subject:   arg.Subject,
		Body:      arg.Body,
		IPAddress: arg.IPAddress,
	}, nil
}

const getMessage = `
SELECT id, created_at, fullname, email, subject, body, ip_address, viewed, archived
FROM contact_messages WHERE id = ?
`

// GetMessage fetches a single message by ID.
func (q *Queries) GetMessage(ctx context.Context, id string) (model.ContactMessage, error) {
	row := q.db.QueryRowContext(ctx, getMessage, id)
	var m model.ContactMessage
	err := row.Scan(&m.ID, &m.CreatedAt, &m.FullName, &m.Email, &m.Subject, &m.Body,
		&m.IPAddress, &m.Viewed, &m.Archived)
	return m, err
}

const listMessages = `
SELECT id, created_at, fullname, email, subject, body, ip_address, viewed, archived
FROM contact_messages
WHERE archived = 0 AND (? = 0 OR viewed = 0)
ORDER BY created_at DESC
`

// ListMessages returns non-archived messages, newest first. When
// unreadOnly is true, only unviewed messages are returned.
func (q *Queries) ListMessages(ctx context.Context, unreadOnly bool) ([]model.ContactMessage, error) {
	flag := 0
	if unreadOnly {
		flag = 1
	}
	rows, err := q.db.QueryContext(ctx, listMessages, flag)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var messages []model.ContactMessage
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.FullName, &m.Email, &m.Subject, &m.Body,
			&m.IPAddress, &m.Viewed, &m.Archived); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

const setMessageViewed = `UPDATE contact_messages SET viewed = ? WHERE id = ?`

// SetMessageViewed flags a message as read or unread.
func (q *Queries) SetMessageViewed(ctx context.Context, id string, viewed bool) error {
	_, err := q.db.ExecContext(ctx, setMessageViewed, viewed, id)
	return err
}

const setMessageArchived = `UPDATE contact_messages SET archived = ? WHERE id = ?`

// SetMessageArchived archives or unarchives a message.
func (q *Queries) SetMessageArchived(ctx context.Context, id string, archived bool) error {
	_, err := q.db.ExecContext(ctx, setMessageArchived, archived, id)
	return err
}

const deleteMessage = `DELETE FROM contact_messages WHERE id = ?`

// DeleteMessage permanently removes a message.
func (q *Queries) DeleteMessage(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteMessage, id)
	return err
}

const countUnreadMessages = `SELECT COUNT(*) FROM contact_messages WHERE viewed = 0 AND archived = 0`

// CountUnreadMessages returns the number of unviewed, non-archived messages.
func (q *Queries) CountUnreadMessages(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUnreadMessages).Scan(&count)
	return count, err
}
