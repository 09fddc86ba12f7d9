// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool behind the
// disk-backed salt counter.
//
// It wraps zombiezen.com/go/sqlite with defaults tuned for saltscan's
// workload: a single writer streaming millions of small upserts, with
// occasional read passes (top-N queries, CSV export) over the result.
// WAL journal mode, NORMAL synchronous for process-crash durability
// without fsync-per-commit overhead, a large page cache for the hot
// upsert b-tree, and a busy timeout so overlapping readers degrade
// gracefully instead of failing.
//
// The pool is built on zombiezen's sqlitex.Pool, which manages a
// fixed-size set of connections. Callers [Pool.Take] a connection,
// perform work, and [Pool.Put] it back. Connections are NOT safe for
// concurrent use — each goroutine must hold its own connection for the
// duration of its work.
//
// # Pragmas
//
// Every connection in the pool is initialized with these pragmas:
//
//   - journal_mode=WAL: write-ahead logging for concurrent readers and
//     a single writer. Reads never block writes; writes never block
//     reads.
//   - synchronous=NORMAL: transactions survive process crashes. Not
//     durable across OS crashes or power failure — acceptable for a
//     counting database that can be rebuilt from the input file.
//   - busy_timeout=5000: wait up to 5 seconds for a write lock instead
//     of returning SQLITE_BUSY immediately.
//   - foreign_keys=OFF: the schema is a single table with no
//     relationships to enforce.
//   - cache_size=-32768: 32 MB page cache per connection. The counting
//     pass re-touches hot index pages for every repeated salt, so a
//     large cache converts most upserts into pure memory operations.
//   - mmap_size=268435456: 256 MB memory-mapped I/O for reads. On Linux
//     this avoids read(2) syscall overhead by letting the OS page cache
//     serve reads directly.
//   - temp_store=MEMORY: temporary tables and indexes in memory. The
//     ORDER BY in ranked scans sorts in memory when it fits.
//
// # Usage
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/tmp/saltscan/counts.db",
//	    Logger: logger,
//	    OnConnect: func(conn *sqlite.Conn) error {
//	        // Create tables, register functions, etc.
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
// This package is intentionally thin: it applies standard pragmas and
// exposes the underlying zombiezen types directly. There is no attempt
// to abstract away SQLite's connection model or invent a query builder.
// The counter backend writes SQL, uses sqlitex.Execute for cached
// statements, and manages transactions with
// sqlitex.ImmediateTransaction. The goal is a shared foundation (one
// dependency, one set of pragmas, one pool pattern) without an
// abstraction layer that fights SQLite's strengths.
package sqlitepool
