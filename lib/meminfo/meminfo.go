// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package meminfo probes available system memory so the counting
// backend can be sized before the first pass. The probe is best
// effort: unreadable sources produce zero-valued fields rather than
// failures, and callers treat a zero AvailableBytes as "unknown".
package meminfo

// Info reports system memory in bytes. A zero field means that value
// could not be determined.
type Info struct {
	// TotalBytes is the installed physical memory.
	TotalBytes uint64

	// AvailableBytes estimates how much memory a new allocation can
	// claim without swapping (MemAvailable when /proc/meminfo provides
	// it, free RAM otherwise).
	AvailableBytes uint64
}
