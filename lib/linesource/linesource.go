// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package linesource streams text lines out of hashlist files.
//
// A Source is a lazy, finite, forward-only sequence of lines in the
// bufio.Scanner idiom: Scan/Text/Err, then Close. Sources are not
// restartable — the export pass re-opens the file rather than seeking.
// Compression is transparent and chosen by file extension (.gz, .zst,
// .lz4); callers only need to know whether the total line count can be
// predicted from the file size, which it cannot be for compressed
// input.
package linesource

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format identifies the on-disk encoding of a hashlist.
type Format uint8

const (
	// FormatPlain is uncompressed text.
	FormatPlain Format = iota

	// FormatGzip is gzip-compressed text (.gz). Concatenated members
	// (pigz output) decode as one stream.
	FormatGzip

	// FormatZstd is zstandard-compressed text (.zst, .zstd).
	FormatZstd

	// FormatLZ4 is lz4-frame-compressed text (.lz4).
	FormatLZ4
)

// String returns the human-readable name of the format.
func (f Format) String() string {
	switch f {
	case FormatPlain:
		return "plain"
	case FormatGzip:
		return "gzip"
	case FormatZstd:
		return "zstd"
	case FormatLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", f)
	}
}

// Compressed reports whether the format hides the decoded length,
// meaning total line count cannot be extrapolated from file size.
func (f Format) Compressed() bool { return f != FormatPlain }

// DetectFormat returns the format implied by the path's extension.
// Unknown extensions are treated as plain text.
func DetectFormat(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return FormatGzip
	case strings.HasSuffix(lower, ".zst"), strings.HasSuffix(lower, ".zstd"):
		return FormatZstd
	case strings.HasSuffix(lower, ".lz4"):
		return FormatLZ4
	default:
		return FormatPlain
	}
}

// DecodePolicy controls how bytes that are not valid UTF-8 are
// handled. Credential dumps routinely contain binary garbage; the
// default keeps the pass alive by substituting U+FFFD.
type DecodePolicy uint8

const (
	// DecodeReplace substitutes U+FFFD for each invalid byte.
	DecodeReplace DecodePolicy = iota

	// DecodeIgnore drops invalid bytes.
	DecodeIgnore

	// DecodeStrict fails the pass on the first invalid byte.
	DecodeStrict
)

// String returns the flag spelling of the policy.
func (p DecodePolicy) String() string {
	switch p {
	case DecodeReplace:
		return "replace"
	case DecodeIgnore:
		return "ignore"
	case DecodeStrict:
		return "strict"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// ParseDecodePolicy maps the flag spellings to their policies.
func ParseDecodePolicy(s string) (DecodePolicy, error) {
	switch s {
	case "replace":
		return DecodeReplace, nil
	case "ignore":
		return DecodeIgnore, nil
	case "strict":
		return DecodeStrict, nil
	default:
		return 0, fmt.Errorf("linesource: unknown decode policy %q (want replace, ignore, or strict)", s)
	}
}

// defaultMaxLineBytes bounds a single line. Hashlist lines are short;
// anything past this is a corrupt or hostile file.
const defaultMaxLineBytes = 4 * 1024 * 1024

// Options configures a Source.
type Options struct {
	// Policy selects invalid-UTF-8 handling. The zero value replaces.
	Policy DecodePolicy

	// MaxLineBytes caps a single line's length. Lines longer than
	// this fail the pass with a read error. Zero means 4 MiB.
	MaxLineBytes int
}

// Source is a forward-only line stream over a hashlist file.
type Source struct {
	path     string
	format   Format
	policy   DecodePolicy
	fileSize int64

	file    *os.File
	zstdDec *zstd.Decoder
	gzip    *gzip.Reader
	scanner *bufio.Scanner

	line  string
	lines int64
	bytes int64
	err   error
}

// Open opens path for line streaming, stacking a decompressor when
// the extension calls for one.
func Open(path string, opts Options) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("linesource: open %s: %w", path, err)
	}

	source := &Source{
		path:   path,
		format: DetectFormat(path),
		policy: opts.Policy,
		file:   file,
	}
	if stat, err := file.Stat(); err == nil {
		source.fileSize = stat.Size()
	}

	var reader io.Reader
	switch source.format {
	case FormatGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("linesource: gzip open %s: %w", path, err)
		}
		source.gzip = gz
		reader = gz
	case FormatZstd:
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("linesource: zstd open %s: %w", path, err)
		}
		source.zstdDec = dec
		reader = dec
	case FormatLZ4:
		reader = lz4.NewReader(file)
	default:
		reader = file
	}

	maxLine := opts.MaxLineBytes
	if maxLine <= 0 {
		maxLine = defaultMaxLineBytes
	}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), maxLine)
	source.scanner = scanner

	return source, nil
}

// Scan advances to the next line. It returns false at end of input or
// on error; Err distinguishes the two.
func (s *Source) Scan() bool {
	if s.err != nil {
		return false
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			s.err = fmt.Errorf("linesource: read %s: %w", s.path, err)
		}
		return false
	}

	raw := s.scanner.Bytes()
	s.lines++
	s.bytes += int64(len(raw)) + 1

	// Scanner strips the \n; a Windows-style line still carries \r.
	if n := len(raw); n > 0 && raw[n-1] == '\r' {
		raw = raw[:n-1]
	}

	line, err := decode(raw, s.policy)
	if err != nil {
		s.err = fmt.Errorf("linesource: %s line %d: %w", s.path, s.lines, err)
		return false
	}
	s.line = line
	return true
}

// Text returns the current line with the trailing newline (and any
// trailing \r) removed.
func (s *Source) Text() string { return s.line }

// Err returns the first error encountered, nil at clean end of input.
func (s *Source) Err() error { return s.err }

// Path returns the file path this source reads.
func (s *Source) Path() string { return s.path }

// Format returns the detected on-disk encoding.
func (s *Source) Format() Format { return s.format }

// TotalUnknown reports whether the total line count is unknowable
// without a full read. True for all compressed formats.
func (s *Source) TotalUnknown() bool { return s.format.Compressed() }

// FileSizeBytes returns the on-disk file size, zero if unknown.
func (s *Source) FileSizeBytes() int64 { return s.fileSize }

// Lines returns how many lines have been scanned so far.
func (s *Source) Lines() int64 { return s.lines }

// BytesConsumed returns the decoded bytes scanned so far, counting
// one byte per line terminator. The estimator divides this by Lines
// for the density extrapolation.
func (s *Source) BytesConsumed() int64 { return s.bytes }

// Close releases the decompressor (if any) and the underlying file.
func (s *Source) Close() error {
	if s.zstdDec != nil {
		s.zstdDec.Close()
		s.zstdDec = nil
	}
	var gzipErr error
	if s.gzip != nil {
		gzipErr = s.gzip.Close()
		s.gzip = nil
	}
	if s.file == nil {
		return nil
	}
	fileErr := s.file.Close()
	s.file = nil
	if gzipErr != nil {
		return fmt.Errorf("linesource: close %s: %w", s.path, gzipErr)
	}
	if fileErr != nil {
		return fmt.Errorf("linesource: close %s: %w", s.path, fileErr)
	}
	return nil
}

// decode converts raw line bytes to a string under the policy.
// Valid UTF-8 passes through untouched.
func decode(raw []byte, policy DecodePolicy) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	if policy == DecodeStrict {
		return "", fmt.Errorf("invalid UTF-8")
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size == 1 {
			if policy == DecodeReplace {
				b.WriteRune(utf8.RuneError)
			}
			i++
			continue
		}
		b.Write(raw[i : i+size])
		i += size
	}
	return b.String(), nil
}
