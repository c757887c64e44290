// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"fmt"
	"strings"
)

// Wildcard is a compiled DOS file name pattern using `*` and `?`.
// Matching is anchored at both ends and case-insensitive, the way RESTORE
// matched 8.3 names. There is no escape syntax.
type Wildcard struct {
	pattern string
	folded  string
}

// CompileWildcard compiles a DOS wildcard pattern for file name matching.
// Patterns apply to single names, so path separators and NUL are rejected
// with ErrBadPattern. The empty pattern matches only the empty name.
func CompileWildcard(pattern string) (*Wildcard, error) {
	if strings.ContainsAny(pattern, "/\\\x00") {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}

	return &Wildcard{pattern: pattern, folded: foldName(pattern)}, nil
}

// MatchName compiles pattern and matches it against one name.
func MatchName(pattern, name string) (bool, error) {
	w, err := CompileWildcard(pattern)
	if err != nil {
		return false, err
	}

	return w.Match(name), nil
}

// Match reports whether name matches the pattern.
func (w *Wildcard) Match(name string) bool {
	if w == nil {
		return false
	}

	return matchFolded(w.folded, foldName(name))
}

// String returns the original pattern text.
func (w *Wildcard) String() string {
	if w == nil {
		return ""
	}

	return w.pattern
}

// matchFolded matches an upper-folded glob against an upper-folded name.
// `*` is greedy with single-point backtracking, the classic fnmatch walk.
func matchFolded(pattern, name string) bool {
	var pi, ni int
	starPi, starNi := -1, 0

	for ni < len(name) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == name[ni]):
			pi++
			ni++
		case pi < len(pattern) && pattern[pi] == '*':
			starPi, starNi = pi, ni
			pi++
		case starPi >= 0:
			starNi++
			pi, ni = starPi+1, starNi
		default:
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}

	return pi == len(pattern)
}

// foldName upper-folds ASCII bytes; 8.3 names carry no other case.
func foldName(name string) string {
	needsFold := false
	for i := 0; i < len(name); i++ {
		if name[i] >= 'a' && name[i] <= 'z' {
			needsFold = true
			break
		}
	}
	if !needsFold {
		return name
	}

	buf := []byte(name)
	for i, b := range buf {
		if b >= 'a' && b <= 'z' {
			buf[i] = b - 'a' + 'A'
		}
	}

	return string(buf)
}
