// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"strings"
	"unicode"
)

// reservedDOSNames contains case-insensitive reserved DOS device names.
// Archives written on real DOS machines can legitimately carry files under
// these names (backups of driver stubs); modern filesystems cannot.
var reservedDOSNames = map[string]struct{}{
	"aux":      {},
	"clock$":   {},
	"com1":     {},
	"com2":     {},
	"com3":     {},
	"com4":     {},
	"con":      {},
	"config$":  {},
	"emmxxxx0": {},
	"kbd$":     {},
	"lpt1":     {},
	"lpt2":     {},
	"lpt3":     {},
	"lpt4":     {},
	"lst":      {},
	"mouse$":   {},
	"nul":      {},
	"prn":      {},
	"screen$":  {},
	"xmsxxxx0": {},
}

// SanitizePath rewrites one catalog path to a filesystem-safe
// slash-separated form. The empty path sanitizes to the empty path.
func SanitizePath(pathValue string) (string, error) {
	normalized := NormalizePath(pathValue)
	if normalized == "" {
		return "", nil
	}

	return sanitizeExtractPath(normalized)
}

// sanitizeExtractPath sanitizes each segment of one relative path.
func sanitizeExtractPath(relativePath string) (string, error) {
	parts := strings.Split(relativePath, "/")
	sanitized := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "." {
			continue
		}

		segment, err := sanitizePathSegment(part)
		if err != nil {
			return "", err
		}

		sanitized = append(sanitized, segment)
	}
	if len(sanitized) == 0 {
		return "_", nil
	}

	return strings.Join(sanitized, "/"), nil
}

// sanitizePathSegment sanitizes one 8.3 segment for broad filesystem
// compatibility: control and separator-like runes become underscores and
// reserved device names get a disarming prefix.
func sanitizePathSegment(segment string) (string, error) {
	if segment == ".." {
		return "_", nil
	}

	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		if isUnsafeNameRune(r) || strings.ContainsRune(`<>:"/\|?*`, r) {
			b.WriteRune('_')
			continue
		}

		b.WriteRune(r)
	}

	sanitized := strings.TrimRight(b.String(), ". ")
	if sanitized == "" {
		sanitized = "_"
	}
	if isReservedDeviceName(sanitized) {
		sanitized = "_" + sanitized
	}

	return sanitized, nil
}

// isUnsafeNameRune reports whether rune must not reach the destination
// filesystem. U+FFFD appears when code-page bytes survive as invalid UTF-8.
func isUnsafeNameRune(r rune) bool {
	if unicode.IsControl(r) || unicode.In(r, unicode.Cf) {
		return true
	}

	return r == '�'
}

// isReservedDeviceName reports whether name matches a reserved DOS device
// identifier. DOS resolved devices before files and ignored extensions, so
// "CON.TXT" is just as unusable as "CON".
func isReservedDeviceName(name string) bool {
	candidate := strings.ToLower(strings.TrimSpace(name))
	if dot := strings.IndexByte(candidate, '.'); dot >= 0 {
		candidate = candidate[:dot]
	}
	candidate = strings.TrimRight(candidate, ". :")
	if candidate == "" {
		return false
	}

	_, ok := reservedDOSNames[candidate]
	return ok
}
