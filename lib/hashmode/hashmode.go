// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package hashmode carries the table of salted hashcat modes whose
// hashlists this tool analyzes. The table is pure metadata: the
// analyzer never inspects the hash field, so the mode only drives flag
// validation and display labels.
package hashmode

import "slices"

// Mode pairs a hashcat mode number with its algorithm label.
type Mode struct {
	Number int
	Label  string
}

var supported = map[int]string{
	// osCommerce
	21: "osCommerce, xt:Commerce",

	// MD5 salted
	10: "md5($pass.$salt)",
	20: "md5($salt.$pass)",
	30: "md5(utf16le($pass).$salt)",
	40: "md5($salt.utf16le($pass))",

	// SHA-1 salted
	110: "sha1($pass.$salt)",
	120: "sha1($salt.$pass)",
	130: "sha1(utf16le($pass).$salt)",
	140: "sha1($salt.utf16le($pass))",

	// SHA-224 salted
	1310: "sha224($pass.$salt)",
	1320: "sha224($salt.$pass)",

	// SHA-256 salted
	1410: "sha256($pass.$salt)",
	1420: "sha256($salt.$pass)",
	1430: "sha256(utf16le($pass).$salt)",
	1440: "sha256($salt.utf16le($pass))",

	// SHA-384 salted
	10810: "sha384($pass.$salt)",
	10820: "sha384($salt.$pass)",
	10830: "sha384(utf16le($pass).$salt)",
	10840: "sha384($salt.utf16le($pass))",

	// SHA-512 salted
	1710: "sha512($pass.$salt)",
	1720: "sha512($salt.$pass)",
	1730: "sha512(utf16le($pass).$salt)",
	1740: "sha512($salt.utf16le($pass))",

	// vBulletin
	2611: "vBulletin < v3.8.5 (md5(md5($pass).$salt))",
	2711: "vBulletin >= v3.8.5 (md5(md5($pass).$salt))",
}

// Description returns the algorithm label for a mode number and
// whether the mode is in the table.
func Description(number int) (string, bool) {
	label, ok := supported[number]
	return label, ok
}

// All returns every supported mode sorted by mode number.
func All() []Mode {
	modes := make([]Mode, 0, len(supported))
	for number, label := range supported {
		modes = append(modes, Mode{Number: number, Label: label})
	}
	slices.SortFunc(modes, func(a, b Mode) int { return a.Number - b.Number })
	return modes
}
