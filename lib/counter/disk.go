// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hashlist-tools/saltscan/lib/sqlitepool"
)

// DefaultBatchSize is the number of buffered increments that triggers
// a flush to the database.
const DefaultBatchSize = 5000

// The table is clustered on the salt itself: one b-tree instead of a
// rowid table plus a unique index, which halves the pages the upsert
// stream touches.
const diskSchema = `
CREATE TABLE IF NOT EXISTS salt_counts (
	salt       BLOB PRIMARY KEY,
	count      INTEGER NOT NULL,
	first_seen INTEGER NOT NULL
) WITHOUT ROWID;
`

const upsertCount = `
INSERT INTO salt_counts (salt, count, first_seen) VALUES (?, ?, ?)
ON CONFLICT (salt) DO UPDATE SET count = count + excluded.count
`

// DiskConfig holds the parameters for opening a disk backend.
type DiskConfig struct {
	// Path is the filesystem path of the counts database. Required.
	// The file is created if it does not exist; an existing counts
	// database is extended, with the first-seen sequence resuming
	// past the stored maximum.
	Path string

	// BatchSize is the number of increments buffered between
	// flushes. Defaults to DefaultBatchSize when <= 0.
	BatchSize int

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

type pendingCount struct {
	delta     int64
	firstSeen int64
}

// Disk is the SQLite-backed counting backend. Increments are buffered
// and coalesced per salt, then flushed in one transaction per batch.
// Read methods flush before querying, so results always reflect every
// increment made so far.
type Disk struct {
	pool      *sqlitepool.Pool
	conn      *sqlite.Conn
	logger    *slog.Logger
	path      string
	batchSize int
	pending   map[string]pendingCount
	buffered  int
	nextSeq   int64
}

// OpenDisk opens or creates the counts database at cfg.Path. The
// single pool connection is held for the backend's lifetime.
func OpenDisk(cfg DiskConfig) (*Disk, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("counter: disk backend: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   cfg.Path,
		Logger: logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, diskSchema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("counter: disk backend: %w", err)
	}

	// The pool holds exactly one fresh connection, so this never
	// blocks; it surfaces pragma and schema errors immediately.
	conn, err := pool.Take(context.Background())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("counter: disk backend: %w", err)
	}

	d := &Disk{
		pool:      pool,
		conn:      conn,
		logger:    logger,
		path:      cfg.Path,
		batchSize: batchSize,
		pending:   make(map[string]pendingCount),
	}

	// Resume the first-seen sequence past anything already stored so
	// a reused database keeps assigning sequence numbers in stream
	// order.
	err = sqlitex.Execute(conn, "SELECT COALESCE(MAX(first_seen) + 1, 0) FROM salt_counts", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			d.nextSeq = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		pool.Put(conn)
		pool.Close()
		return nil, fmt.Errorf("counter: disk backend: loading first-seen sequence: %w", err)
	}
	return d, nil
}

// Path returns the filesystem path of the counts database.
func (d *Disk) Path() string {
	return d.path
}

func (d *Disk) Increment(salt string) error {
	if d.conn == nil {
		return fmt.Errorf("counter: disk backend is closed")
	}
	entry, ok := d.pending[salt]
	if !ok {
		entry.firstSeen = d.nextSeq
		d.nextSeq++
	}
	entry.delta++
	d.pending[salt] = entry
	d.buffered++
	if d.buffered >= d.batchSize {
		return d.flush()
	}
	return nil
}

// Import merges a snapshotted entry, preserving its count and
// first-seen sequence. The migration path uses this to replay an
// in-memory table into a fresh disk store.
func (d *Disk) Import(e Entry) error {
	if d.conn == nil {
		return fmt.Errorf("counter: disk backend is closed")
	}
	entry, ok := d.pending[e.Salt]
	if !ok {
		entry.firstSeen = e.FirstSeen
	}
	entry.delta += e.Count
	d.pending[e.Salt] = entry
	if e.FirstSeen >= d.nextSeq {
		d.nextSeq = e.FirstSeen + 1
	}
	d.buffered++
	if d.buffered >= d.batchSize {
		return d.flush()
	}
	return nil
}

func (d *Disk) Len() (int64, error) {
	if d.conn == nil {
		return 0, fmt.Errorf("counter: disk backend is closed")
	}
	if err := d.flush(); err != nil {
		return 0, err
	}
	var n int64
	err := sqlitex.Execute(d.conn, "SELECT COUNT(*) FROM salt_counts", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("counter: disk backend: counting entries: %w", err)
	}
	return n, nil
}

func (d *Disk) Scan(fn func(Entry) error) error {
	return d.scan("SELECT salt, count, first_seen FROM salt_counts", fn)
}

func (d *Disk) ScanOrdered(fn func(Entry) error) error {
	return d.scan("SELECT salt, count, first_seen FROM salt_counts ORDER BY count DESC, first_seen ASC", fn)
}

func (d *Disk) scan(query string, fn func(Entry) error) error {
	if d.conn == nil {
		return fmt.Errorf("counter: disk backend is closed")
	}
	if err := d.flush(); err != nil {
		return err
	}
	err := sqlitex.Execute(d.conn, query, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			salt := make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, salt)
			return fn(Entry{
				Salt:      string(salt),
				Count:     stmt.ColumnInt64(1),
				FirstSeen: stmt.ColumnInt64(2),
			})
		},
	})
	if err != nil {
		return fmt.Errorf("counter: disk backend: scan: %w", err)
	}
	return nil
}

// flush writes the coalesced pending deltas in one transaction.
// First-seen values were assigned at buffering time, so map iteration
// order does not affect the stored table.
func (d *Disk) flush() (err error) {
	if len(d.pending) == 0 {
		return nil
	}
	endFn, err := sqlitex.ImmediateTransaction(d.conn)
	if err != nil {
		return fmt.Errorf("counter: disk backend: begin flush: %w", err)
	}
	defer endFn(&err)

	for salt, entry := range d.pending {
		err = sqlitex.Execute(d.conn, upsertCount, &sqlitex.ExecOptions{
			Args: []any{[]byte(salt), entry.delta, entry.firstSeen},
		})
		if err != nil {
			return fmt.Errorf("counter: disk backend: upsert: %w", err)
		}
	}
	clear(d.pending)
	d.buffered = 0
	return nil
}

// Close flushes pending increments and releases the connection and
// pool. Safe to call once; no other method may be called after.
func (d *Disk) Close() error {
	if d.conn == nil {
		return nil
	}
	flushErr := d.flush()
	d.pool.Put(d.conn)
	d.conn = nil
	closeErr := d.pool.Close()
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return fmt.Errorf("counter: disk backend: %w", closeErr)
	}
	return nil
}
