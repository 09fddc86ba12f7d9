// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package extract turns raw hashlist lines into salt keys.
//
// A hashlist line has the shape hash<separator>salt. The hash field is
// opaque: extraction splits at the first separator occurrence only, and
// everything after it is the salt, verbatim, including any further
// separator characters. Extraction is pure and idempotent, so the
// counting pass and the export pass can both apply it to the same line
// and arrive at the same key.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// HexMode controls canonicalization of $HEX[...]-encoded salts.
// Cracking tools emit unprintable salts as $HEX[<hexdigits>], and the
// same bytes may appear with upper- or lower-case digits in different
// dumps.
type HexMode int

const (
	// HexKeep leaves $HEX[...] salts exactly as written. Case variants
	// of the same payload count as distinct salts.
	HexKeep HexMode = iota

	// HexDecode lower-cases the hex payload so case variants of the
	// same payload collapse into one salt key.
	HexDecode
)

// String returns the flag spelling of the mode.
func (m HexMode) String() string {
	switch m {
	case HexKeep:
		return "keep"
	case HexDecode:
		return "decode"
	default:
		return fmt.Sprintf("HexMode(%d)", int(m))
	}
}

// ParseHexMode maps the flag spellings "keep" and "decode" to their
// modes.
func ParseHexMode(s string) (HexMode, error) {
	switch s {
	case "keep":
		return HexKeep, nil
	case "decode":
		return HexDecode, nil
	default:
		return 0, fmt.Errorf("extract: unknown hex-salt mode %q (want keep or decode)", s)
	}
}

// hexSaltPattern matches a salt that is entirely a $HEX[...] encoding.
// The payload may be empty; partial or embedded encodings do not match.
var hexSaltPattern = regexp.MustCompile(`^\$HEX\[([0-9A-Fa-f]*)\]$`)

// Config describes how lines are split into salt keys.
type Config struct {
	// Separator divides the hash field from the salt. Only its first
	// occurrence splits the line. Must be non-empty; when it is empty,
	// every line is treated as unparseable.
	Separator string

	// HexMode selects $HEX[...] canonicalization. The zero value is
	// HexKeep.
	HexMode HexMode
}

// Extract returns the salt key for a raw line (no trailing newline)
// and whether the line parsed. A line with no separator, an empty
// line, or an empty salt field does not parse.
func (c Config) Extract(line string) (string, bool) {
	if line == "" || c.Separator == "" {
		return "", false
	}
	i := strings.Index(line, c.Separator)
	if i < 0 {
		return "", false
	}
	salt := line[i+len(c.Separator):]
	if salt == "" {
		return "", false
	}
	return c.Canonicalize(salt), true
}

// Canonicalize applies the configured $HEX[...] normalization to a
// salt value that was already separated from its hash field. Explicit
// salt selections pass through here so they land in the same bucket as
// extracted keys. Idempotent.
func (c Config) Canonicalize(salt string) string {
	if c.HexMode != HexDecode {
		return salt
	}
	m := hexSaltPattern.FindStringSubmatch(salt)
	if m == nil {
		return salt
	}
	return "$HEX[" + strings.ToLower(m[1]) + "]"
}
