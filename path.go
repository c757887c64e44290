// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"path"
	"strings"
)

// NormalizePath converts an archive/internal path to normalized slash-separated form.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/", and cleans "." segments.
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// DOSPath renders a normalized catalog path with "\" separators for display.
func DOSPath(raw string) string {
	normalized := NormalizePath(raw)
	if normalized == "" {
		return ""
	}

	return strings.ReplaceAll(normalized, "/", `\`)
}

// normalizePathForMatching normalizes user/input paths for matcher use.
func normalizePathForMatching(path string) string {
	path = strings.TrimSpace(path)
	path = strings.ReplaceAll(path, `\`, `/`)
	path = strings.TrimPrefix(path, "./")
	return path
}

// foldPath upper-folds a normalized path for case-insensitive catalog keys.
func foldPath(p string) string {
	return strings.ToUpper(p)
}

// joinEntryPath joins a directory path and a name into one catalog path.
func joinEntryPath(dir, name string) string {
	if dir == "" {
		return name
	}

	return dir + "/" + name
}

// splitEntryPath returns the directory and final segment of a catalog path.
func splitEntryPath(p string) (dir, name string) {
	idx := strings.LastIndexByte(p, '/')
	if idx < 0 {
		return "", p
	}

	return p[:idx], p[idx+1:]
}
