// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/guardian"
)

// EventSink returns a guardian.Sink that appends every registry event
// to the events table. Failures follow the store's mirror-write rules.
func (s *Store) EventSink() guardian.Sink {
	return &eventSink{store: s}
}

type eventSink struct {
	store *Store
}

func (k *eventSink) Emit(event guardian.Event) {
	s := k.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var guardianText string
	if !event.Guardian.IsZero() {
		guardianText = event.Guardian.String()
	}
	var statusText string
	if event.Status != guardian.StatusNone {
		statusText = event.Status.String()
	}

	s.mirror("append event", func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			INSERT INTO events (type, account, guardian, weight, status, threshold, at_unix)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{
				Args: []any{
					string(event.Type),
					event.Account.String(),
					guardianText,
					int64(event.Weight),
					statusText,
					int64(event.Threshold),
					event.Time.Unix(),
				},
			})
	})
}

// StoredEvent is a registry event as read back from the events table,
// with its append position.
type StoredEvent struct {
	ID uint64 `json:"id"`
	guardian.Event
}

// EventFilter selects events.
type EventFilter struct {
	// Account restricts to one account. The zero address means all.
	Account addr.Address

	// Type restricts to one event type. Empty means all.
	Type guardian.EventType

	// Limit caps the number of rows returned, newest first. Zero
	// means 100.
	Limit int
}

// Events returns stored events matching the filter, newest first.
func (s *Store) Events(ctx context.Context, filter EventFilter) ([]StoredEvent, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var conditions []string
	var args []any
	if !filter.Account.IsZero() {
		conditions = append(conditions, "account = ?")
		args = append(args, filter.Account.String())
	}
	if filter.Type != "" {
		conditions = append(conditions, "type = ?")
		args = append(args, string(filter.Type))
	}

	query := `SELECT id, type, account, guardian, weight, status, threshold, at_unix FROM events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, err
	}
	defer s.pool.Put(conn)

	var out []StoredEvent
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var stored StoredEvent
			stored.ID = uint64(stmt.ColumnInt64(0))
			stored.Type = guardian.EventType(stmt.ColumnText(1))

			account, err := addr.Parse(stmt.ColumnText(2))
			if err != nil {
				return fmt.Errorf("events.account %q: %w", stmt.ColumnText(2), err)
			}
			stored.Account = account

			if text := stmt.ColumnText(3); text != "" {
				guardianAddress, err := addr.Parse(text)
				if err != nil {
					return fmt.Errorf("events.guardian %q: %w", text, err)
				}
				stored.Guardian = guardianAddress
			}

			stored.Weight = uint64(stmt.ColumnInt64(4))

			if text := stmt.ColumnText(5); text != "" {
				status, err := guardian.ParseStatus(text)
				if err != nil {
					return fmt.Errorf("events.status %q: %w", text, err)
				}
				stored.Status = status
			}

			stored.Threshold = uint64(stmt.ColumnInt64(6))
			stored.Time = time.Unix(stmt.ColumnInt64(7), 0).UTC()

			out = append(out, stored)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: querying events: %w", err)
	}
	return out, nil
}
