// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package meminfo

// Probe has no memory source on this platform. Zero fields mean
// "unknown"; the backend selector then starts in memory with the
// migration threshold armed instead of budgeting.
func Probe() Info {
	return Info{}
}
