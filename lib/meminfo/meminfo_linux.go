// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package meminfo

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Probe reads system memory from /proc/meminfo, falling back to
// sysinfo(2) when the file is missing or incomplete. Never returns an
// error: a machine whose /proc is unreadable still deserves a best
// guess from the kernel.
func Probe() Info {
	return probeFrom("/proc")
}

// probeFrom is the testable implementation of Probe. It accepts a root
// path for /proc so tests can point at synthetic filesystems.
func probeFrom(procRoot string) Info {
	info := readMeminfo(filepath.Join(procRoot, "meminfo"))
	if info.TotalBytes == 0 {
		info = sysinfoMemory()
	}
	return info
}

// readMeminfo parses MemTotal and MemAvailable from a /proc/meminfo
// style file. Values are reported by the kernel in kB.
func readMeminfo(path string) Info {
	file, err := os.Open(path)
	if err != nil {
		return Info{}
	}
	defer file.Close()

	var info Info
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			info.TotalBytes = parseKBLine(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			info.AvailableBytes = parseKBLine(line)
		}
		if info.TotalBytes != 0 && info.AvailableBytes != 0 {
			break
		}
	}
	return info
}

// parseKBLine extracts the numeric kB value from a meminfo line like
// "MemTotal:       16316584 kB" and returns it in bytes.
func parseKBLine(line string) uint64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	kb, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return kb * 1024
}

// sysinfoMemory returns totals from sysinfo(2). Freeram understates
// what MemAvailable would report (it excludes reclaimable caches), so
// this is only the fallback path.
func sysinfoMemory() Info {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return Info{}
	}
	unit := uint64(si.Unit)
	return Info{
		TotalBytes:     uint64(si.Totalram) * unit,
		AvailableBytes: uint64(si.Freeram) * unit,
	}
}
