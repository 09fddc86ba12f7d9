// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package counter

// Entry is one accumulated salt with its occurrence count and the
// insertion sequence assigned when the salt was first seen. FirstSeen
// is strictly increasing in stream order and gives rank ties a
// deterministic order across runs and backends.
type Entry struct {
	Salt      string
	Count     int64
	FirstSeen int64
}

// Backend accumulates per-salt occurrence counts. Implementations are
// single-writer: the counting pass is the only goroutine calling
// Increment, and read methods are called only between passes.
type Backend interface {
	// Increment adds one occurrence of salt, creating the entry with
	// the next first-seen sequence number if it is new.
	Increment(salt string) error

	// Len reports the number of unique salts accumulated so far.
	Len() (int64, error)

	// Scan calls fn for every entry in unspecified order. Iteration
	// stops at the first error from fn, which is returned.
	Scan(fn func(Entry) error) error

	// ScanOrdered calls fn for every entry ordered by count
	// descending, then first-seen ascending. Iteration stops at the
	// first error from fn, which is returned.
	ScanOrdered(fn func(Entry) error) error

	// Close releases the backend's resources. No other method may be
	// called after Close.
	Close() error
}

// Kind identifies a backend implementation.
type Kind int

const (
	KindMemory Kind = iota
	KindDisk
)

func (k Kind) String() string {
	switch k {
	case KindMemory:
		return "memory"
	case KindDisk:
		return "disk"
	default:
		return "unknown"
	}
}
