// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock reads so that throughput and
// elapsed-time calculations can be driven deterministically in tests.
// Production code injects Real(); tests inject Fake() and advance it
// by hand.
package clock

import "time"

// Clock supplies the current time. Every production function that
// would call time.Now should accept a Clock (or be a method on a
// struct with a Clock field) instead of calling the time package
// directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
