// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"fmt"
	"slices"
)

type memoryEntry struct {
	count     int64
	firstSeen int64
}

// Memory is the process-resident counting backend: a map from salt to
// count plus the first-seen sequence. It is the fastest backend and
// the default starting point; the Adaptive wrapper bounds its growth.
type Memory struct {
	counts  map[string]memoryEntry
	nextSeq int64
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{counts: make(map[string]memoryEntry)}
}

func (m *Memory) Increment(salt string) error {
	if m.counts == nil {
		return fmt.Errorf("counter: memory backend is closed")
	}
	entry, ok := m.counts[salt]
	if !ok {
		entry.firstSeen = m.nextSeq
		m.nextSeq++
	}
	entry.count++
	m.counts[salt] = entry
	return nil
}

func (m *Memory) Len() (int64, error) {
	if m.counts == nil {
		return 0, fmt.Errorf("counter: memory backend is closed")
	}
	return int64(len(m.counts)), nil
}

func (m *Memory) Scan(fn func(Entry) error) error {
	if m.counts == nil {
		return fmt.Errorf("counter: memory backend is closed")
	}
	for salt, entry := range m.counts {
		err := fn(Entry{Salt: salt, Count: entry.count, FirstSeen: entry.firstSeen})
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) ScanOrdered(fn func(Entry) error) error {
	if m.counts == nil {
		return fmt.Errorf("counter: memory backend is closed")
	}
	ordered := make([]Entry, 0, len(m.counts))
	for salt, entry := range m.counts {
		ordered = append(ordered, Entry{Salt: salt, Count: entry.count, FirstSeen: entry.firstSeen})
	}
	slices.SortFunc(ordered, func(a, b Entry) int {
		if a.Count != b.Count {
			if a.Count > b.Count {
				return -1
			}
			return 1
		}
		if a.FirstSeen < b.FirstSeen {
			return -1
		}
		if a.FirstSeen > b.FirstSeen {
			return 1
		}
		return 0
	})
	for _, entry := range ordered {
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

// Close drops the table so the memory can be reclaimed. Further calls
// on the backend return errors.
func (m *Memory) Close() error {
	m.counts = nil
	return nil
}
