// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package extract_test

import (
	"testing"

	"github.com/hashlist-tools/saltscan/lib/extract"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  extract.Config
		line string
		want string
		ok   bool
	}{
		{
			name: "basic",
			cfg:  extract.Config{Separator: ":"},
			line: "5f4dcc3b5aa765d61d8327deb882cf99:pepper",
			want: "pepper",
			ok:   true,
		},
		{
			name: "salt keeps embedded separators",
			cfg:  extract.Config{Separator: ":"},
			line: "aabbcc:salt:with:colons",
			want: "salt:with:colons",
			ok:   true,
		},
		{
			name: "empty hash field",
			cfg:  extract.Config{Separator: ":"},
			line: ":lonely",
			want: "lonely",
			ok:   true,
		},
		{
			name: "no separator",
			cfg:  extract.Config{Separator: ":"},
			line: "5f4dcc3b5aa765d61d8327deb882cf99",
			ok:   false,
		},
		{
			name: "empty line",
			cfg:  extract.Config{Separator: ":"},
			line: "",
			ok:   false,
		},
		{
			name: "empty salt field",
			cfg:  extract.Config{Separator: ":"},
			line: "5f4dcc3b5aa765d61d8327deb882cf99:",
			ok:   false,
		},
		{
			name: "empty separator rejects everything",
			cfg:  extract.Config{Separator: ""},
			line: "aabbcc:pepper",
			ok:   false,
		},
		{
			name: "multi-character separator",
			cfg:  extract.Config{Separator: "::"},
			line: "aabbcc::left::right",
			want: "left::right",
			ok:   true,
		},
		{
			name: "whitespace salt survives verbatim",
			cfg:  extract.Config{Separator: ":"},
			line: "aabbcc:  spaced  ",
			want: "  spaced  ",
			ok:   true,
		},
		{
			name: "hex salt untouched in keep mode",
			cfg:  extract.Config{Separator: ":", HexMode: extract.HexKeep},
			line: "aabbcc:$HEX[AB12cd]",
			want: "$HEX[AB12cd]",
			ok:   true,
		},
		{
			name: "hex salt lowered in decode mode",
			cfg:  extract.Config{Separator: ":", HexMode: extract.HexDecode},
			line: "aabbcc:$HEX[AB12cd]",
			want: "$HEX[ab12cd]",
			ok:   true,
		},
		{
			name: "non-hex payload left alone in decode mode",
			cfg:  extract.Config{Separator: ":", HexMode: extract.HexDecode},
			line: "aabbcc:$HEX[xyz]",
			want: "$HEX[xyz]",
			ok:   true,
		},
		{
			name: "empty hex payload canonical already",
			cfg:  extract.Config{Separator: ":", HexMode: extract.HexDecode},
			line: "aabbcc:$HEX[]",
			want: "$HEX[]",
			ok:   true,
		},
		{
			name: "unterminated hex encoding left alone",
			cfg:  extract.Config{Separator: ":", HexMode: extract.HexDecode},
			line: "aabbcc:$HEX[ab",
			want: "$HEX[ab",
			ok:   true,
		},
		{
			name: "hex encoding with trailing text left alone",
			cfg:  extract.Config{Separator: ":", HexMode: extract.HexDecode},
			line: "aabbcc:$HEX[ab]tail",
			want: "$HEX[ab]tail",
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tt.cfg.Extract(tt.line)
			if ok != tt.ok {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	t.Parallel()

	cfg := extract.Config{Separator: ":", HexMode: extract.HexDecode}
	for _, line := range []string{
		"aabbcc:$HEX[AB12CD]",
		"aabbcc:plain",
		"aabbcc:salt:with:colons",
	} {
		first, ok := cfg.Extract(line)
		if !ok {
			t.Fatalf("Extract(%q) unexpectedly failed", line)
		}
		if again := cfg.Canonicalize(first); again != first {
			t.Errorf("Canonicalize(%q) = %q, want it unchanged", first, again)
		}
	}
}

func TestHexCaseVariantsCollapseOnlyInDecodeMode(t *testing.T) {
	t.Parallel()

	upper := "aa:$HEX[AB12]"
	lower := "aa:$HEX[ab12]"

	decode := extract.Config{Separator: ":", HexMode: extract.HexDecode}
	u, _ := decode.Extract(upper)
	l, _ := decode.Extract(lower)
	if u != l {
		t.Errorf("decode mode: %q and %q extract to distinct keys %q, %q", upper, lower, u, l)
	}

	keep := extract.Config{Separator: ":", HexMode: extract.HexKeep}
	u, _ = keep.Extract(upper)
	l, _ = keep.Extract(lower)
	if u == l {
		t.Errorf("keep mode: %q and %q collapsed to the same key %q", upper, lower, u)
	}
}

func TestParseHexMode(t *testing.T) {
	t.Parallel()

	if m, err := extract.ParseHexMode("keep"); err != nil || m != extract.HexKeep {
		t.Errorf("ParseHexMode(keep) = %v, %v", m, err)
	}
	if m, err := extract.ParseHexMode("decode"); err != nil || m != extract.HexDecode {
		t.Errorf("ParseHexMode(decode) = %v, %v", m, err)
	}
	if _, err := extract.ParseHexMode("mangle"); err == nil {
		t.Error("ParseHexMode(mangle) succeeded, want error")
	}
}
