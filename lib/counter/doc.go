// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package counter accumulates per-salt occurrence counts for the
// analysis pass and owns the choice of where the count table lives.
//
// # Backends
//
// The [Backend] interface has three implementations:
//
//   - [Memory]: a plain map. Fastest, bounded by RAM.
//   - [Disk]: a SQLite table with batched, coalesced upserts. Scales
//     past RAM; ranked scans are served by SQLite's external sort.
//   - [Adaptive]: starts in memory and migrates once to disk when the
//     live unique-salt count crosses a threshold. The migration is a
//     snapshot-then-replay into a fresh disk store, swapped in
//     between increments so no count is lost or duplicated.
//
// All three assign each new salt a first-seen sequence number,
// strictly increasing in stream order. Rank ties are broken by this
// sequence, which makes top-N output deterministic across runs and
// identical across backends for the same input.
//
// # Selection
//
// [Select] picks the backend before the counting pass starts: a
// forced method wins unconditionally; otherwise the estimator's
// projected table size is compared against a fraction of available
// memory, choosing disk outright for oversized inputs and armed
// in-memory counting for the rest. When the memory signal is
// unavailable the selector starts in memory with migration armed
// rather than guessing.
//
// # The counting pass
//
// [Count] drives one forward pass over a line source, feeding every
// extracted salt to the backend. Unparseable lines are tallied, never
// fatal; storage errors and read errors abort the pass, discarding
// its partial counts.
package counter
