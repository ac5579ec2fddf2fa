// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitestore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/guardian"
	"github.com/soloking1412/email-recovery/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS guardians (
	account  TEXT NOT NULL,
	guardian TEXT NOT NULL,
	status   TEXT NOT NULL,
	weight   INTEGER NOT NULL,
	PRIMARY KEY (account, guardian)
);

CREATE TABLE IF NOT EXISTS accounts (
	account         TEXT PRIMARY KEY,
	guardian_count  INTEGER NOT NULL,
	total_weight    INTEGER NOT NULL,
	accepted_weight INTEGER NOT NULL,
	threshold       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id        INTEGER PRIMARY KEY,
	type      TEXT NOT NULL,
	account   TEXT NOT NULL,
	guardian  TEXT NOT NULL DEFAULT '',
	weight    INTEGER NOT NULL DEFAULT 0,
	status    TEXT NOT NULL DEFAULT '',
	threshold INTEGER NOT NULL DEFAULT 0,
	at_unix   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_account ON events (account, id);
`

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the SQLite database file. Required.
	Path string

	// PoolSize is the connection pool size. Zero means the pool
	// default.
	PoolSize int

	// Logger receives operational messages and mirror-write failures.
	// Nil means discard.
	Logger *slog.Logger
}

// Store is a durable guardian.Store. The working set lives in memory
// and answers every read; each mutation is applied to memory first and
// then mirrored to SQLite, so a restart reloads exactly the rows the
// last mirror write left behind.
//
// The guardian.Store methods cannot report I/O errors, so a failed
// mirror write is recorded instead: the store keeps serving from
// memory, logs the failure, and [Store.Err] returns the first error
// until the process restarts. The hash-chained journal, not this
// database, is the durable audit record.
type Store struct {
	memory *guardian.MemoryStore
	pool   *sqlitepool.Pool
	logger *slog.Logger

	mu     sync.Mutex
	failed error
}

var _ guardian.Store = (*Store)(nil)

// Open opens the database, creates the schema if needed, and loads
// every stored row into the in-memory working set.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitestore: Path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: cfg.PoolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, err
	}

	store := &Store{
		memory: guardian.NewMemoryStore(),
		pool:   pool,
		logger: logger,
	}
	if err := store.load(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// load reads every guardian record and account config into memory.
func (s *Store) load(ctx context.Context) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return err
	}
	defer s.pool.Put(conn)

	var guardianRows, accountRows int
	err = sqlitex.Execute(conn, `SELECT account, guardian, status, weight FROM guardians`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			account, err := addr.Parse(stmt.ColumnText(0))
			if err != nil {
				return fmt.Errorf("guardians.account %q: %w", stmt.ColumnText(0), err)
			}
			guardianAddress, err := addr.Parse(stmt.ColumnText(1))
			if err != nil {
				return fmt.Errorf("guardians.guardian %q: %w", stmt.ColumnText(1), err)
			}
			status, err := guardian.ParseStatus(stmt.ColumnText(2))
			if err != nil {
				return fmt.Errorf("guardians.status %q: %w", stmt.ColumnText(2), err)
			}
			s.memory.Set(account, guardianAddress, guardian.Record{
				Status: status,
				Weight: uint64(stmt.ColumnInt64(3)),
			})
			guardianRows++
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("sqlitestore: loading guardians: %w", err)
	}

	err = sqlitex.Execute(conn, `SELECT account, guardian_count, total_weight, accepted_weight, threshold FROM accounts`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			account, err := addr.Parse(stmt.ColumnText(0))
			if err != nil {
				return fmt.Errorf("accounts.account %q: %w", stmt.ColumnText(0), err)
			}
			s.memory.SetConfig(account, guardian.Config{
				GuardianCount:  uint64(stmt.ColumnInt64(1)),
				TotalWeight:    uint64(stmt.ColumnInt64(2)),
				AcceptedWeight: uint64(stmt.ColumnInt64(3)),
				Threshold:      uint64(stmt.ColumnInt64(4)),
			})
			accountRows++
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("sqlitestore: loading accounts: %w", err)
	}

	s.logger.Info("guardian store loaded",
		"guardians", guardianRows,
		"accounts", accountRows,
	)
	return nil
}

// Close closes the connection pool. The working set stays readable
// but further mutations fail their mirror writes.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Err returns the first mirror-write failure, or nil. A non-nil value
// means the database may be behind the working set.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// mirror runs one mirror write on a pooled connection. Failures are
// sticky: the first one is kept for Err and every failure is logged.
// Called with s.mu held.
func (s *Store) mirror(operation string, fn func(conn *sqlite.Conn) error) {
	conn, err := s.pool.Take(context.Background())
	if err != nil {
		s.fail(operation, err)
		return
	}
	defer s.pool.Put(conn)

	if err := fn(conn); err != nil {
		s.fail(operation, err)
	}
}

func (s *Store) fail(operation string, err error) {
	if s.failed == nil {
		s.failed = fmt.Errorf("sqlitestore: %s: %w", operation, err)
	}
	s.logger.Error("guardian store mirror write failed",
		"operation", operation,
		"error", err,
	)
}

// Get returns the record for (account, guardian).
func (s *Store) Get(account, guardianAddress addr.Address) (guardian.Record, bool) {
	return s.memory.Get(account, guardianAddress)
}

// Set inserts or overwrites a record, reporting prior existence.
func (s *Store) Set(account, guardianAddress addr.Address, record guardian.Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	existed := s.memory.Set(account, guardianAddress, record)
	s.mirror("set guardian", func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			INSERT INTO guardians (account, guardian, status, weight)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (account, guardian) DO UPDATE SET
				status = excluded.status,
				weight = excluded.weight`,
			&sqlitex.ExecOptions{
				Args: []any{account.String(), guardianAddress.String(), record.Status.String(), int64(record.Weight)},
			})
	})
	return existed
}

// Remove deletes a record, returning it and whether it existed.
func (s *Store) Remove(account, guardianAddress addr.Address) (guardian.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, existed := s.memory.Remove(account, guardianAddress)
	if existed {
		s.mirror("remove guardian", func(conn *sqlite.Conn) error {
			return sqlitex.Execute(conn, `DELETE FROM guardians WHERE account = ? AND guardian = ?`,
				&sqlitex.ExecOptions{
					Args: []any{account.String(), guardianAddress.String()},
				})
		})
	}
	return record, existed
}

// RemoveAll deletes every record for the account.
func (s *Store) RemoveAll(account addr.Address) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.memory.RemoveAll(account)
	if removed > 0 {
		s.mirror("remove account guardians", func(conn *sqlite.Conn) error {
			return sqlitex.Execute(conn, `DELETE FROM guardians WHERE account = ?`,
				&sqlitex.ExecOptions{
					Args: []any{account.String()},
				})
		})
	}
	return removed
}

// Guardians returns the account's guardian addresses, sorted.
func (s *Store) Guardians(account addr.Address) []addr.Address {
	return s.memory.Guardians(account)
}

// Count returns the number of live records for the account.
func (s *Store) Count(account addr.Address) int {
	return s.memory.Count(account)
}

// Config returns the account's stored config.
func (s *Store) Config(account addr.Address) (guardian.Config, bool) {
	return s.memory.Config(account)
}

// SetConfig stores the account's config. The zero Config deletes the
// row so absence survives a restart too.
func (s *Store) SetConfig(account addr.Address, config guardian.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory.SetConfig(account, config)
	if config == (guardian.Config{}) {
		s.mirror("clear account config", func(conn *sqlite.Conn) error {
			return sqlitex.Execute(conn, `DELETE FROM accounts WHERE account = ?`,
				&sqlitex.ExecOptions{
					Args: []any{account.String()},
				})
		})
		return
	}
	s.mirror("set account config", func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, `
			INSERT INTO accounts (account, guardian_count, total_weight, accepted_weight, threshold)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (account) DO UPDATE SET
				guardian_count  = excluded.guardian_count,
				total_weight    = excluded.total_weight,
				accepted_weight = excluded.accepted_weight,
				threshold       = excluded.threshold`,
			&sqlitex.ExecOptions{
				Args: []any{
					account.String(),
					int64(config.GuardianCount),
					int64(config.TotalWeight),
					int64(config.AcceptedWeight),
					int64(config.Threshold),
				},
			})
	})
}

// Stats describes the database for status reporting.
type Stats struct {
	Accounts  int64 `json:"accounts"`
	Guardians int64 `json:"guardians"`
	Events    int64 `json:"events"`
	SizeBytes int64 `json:"size_bytes"`
}

// Stats reports row counts and the database file size.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Stats{}, err
	}
	defer s.pool.Put(conn)

	var stats Stats
	if stats.Accounts, err = tableRowCount(conn, "accounts"); err != nil {
		return Stats{}, err
	}
	if stats.Guardians, err = tableRowCount(conn, "guardians"); err != nil {
		return Stats{}, err
	}
	if stats.Events, err = tableRowCount(conn, "events"); err != nil {
		return Stats{}, err
	}

	err = sqlitex.Execute(conn, `SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			stats.SizeBytes = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return Stats{}, fmt.Errorf("sqlitestore: database size: %w", err)
	}
	return stats, nil
}

func tableRowCount(conn *sqlite.Conn, table string) (int64, error) {
	var count int64
	err := sqlitex.Execute(conn, `SELECT COUNT(*) FROM `+table, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("sqlitestore: counting %s: %w", table, err)
	}
	return count, nil
}
