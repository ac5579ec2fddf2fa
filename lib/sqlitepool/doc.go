// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool used by every
// durable store in this project.
//
// It wraps zombiezen.com/go/sqlite with one fixed set of pragmas: WAL
// journal mode, NORMAL synchronous, memory-mapped reads, and a busy
// timeout for write contention. Callers [Pool.Take] a connection, do
// their work, and [Pool.Put] it back. Connections are not safe for
// concurrent use; each goroutine holds its own for the duration of its
// work.
//
// # Pragmas
//
// Every connection is initialized with:
//
//   - journal_mode=WAL: concurrent readers with a single writer.
//     Reads never block writes and writes never block reads.
//   - synchronous=NORMAL: commits survive a process crash but not
//     necessarily an OS crash or power loss. That trade is acceptable
//     here because the databases built on this pool mirror registry
//     state; the fsync'd hash-chained journal is the durable audit
//     record.
//   - busy_timeout=5000: wait up to five seconds for a write lock
//     rather than failing with SQLITE_BUSY.
//   - foreign_keys=OFF: the stores manage referential integrity
//     themselves. The guardian registry legitimately clears an
//     account's aggregate row while guardian rows still exist (and
//     the reverse during teardown), so declarative FK enforcement
//     would reject valid write orders.
//   - cache_size=-8192: 8 MB page cache per connection.
//   - mmap_size=268435456: 256 MB of memory-mapped I/O so the OS page
//     cache serves reads without read(2) syscalls.
//   - temp_store=MEMORY: temporary tables and indexes in memory.
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:     "/var/lib/recovery/guardians.db",
//	    PoolSize: 4,
//	    Logger:   logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        return sqlitex.ExecuteScript(conn, schema, nil)
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	conn, err := pool.Take(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Put(conn)
//
// # Design
//
// The package is deliberately thin. It applies the pragmas and hands
// back the zombiezen types unchanged: stores write SQL, run cached
// statements with sqlitex.Execute, and scope multi-statement writes
// with sqlitex.ImmediateTransaction. There is no query builder and no
// attempt to hide SQLite's connection model.
package sqlitepool
