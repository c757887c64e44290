// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"errors"
	"testing"
)

func TestWildcard_Match(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*.TXT", "README.TXT", true},
		{"*.TXT", "A.TXT", true},
		{"*.TXT", "README.TXN", false},
		{"*.TXT", "readme.txt", true},
		{"*.txt", "README.TXT", true},
		{"F???.DAT", "FILE.DAT", true},
		{"F???.DAT", "F1.DAT", false},
		{"F???.DAT", "FOUR5.DAT", false},
		{"*", "ANYTHING.BIN", true},
		{"*", "", true},
		{"", "", true},
		{"", "A", false},
		{"?", "", false},
		{"?", "X", true},
		{"A*B*C", "AXXBXXC", true},
		{"A*B*C", "ABC", true},
		{"A*B*C", "AXXCXXB", false},
		{"**.TXT", "A.TXT", true},
		{"README.TXT", "README.TXT", true},
		{"README.TXT", "README.TX", false},
		{"*.*", "NOEXT", false},
		{"*.*", "A.B", true},
	}

	for _, tc := range cases {
		got, err := MatchName(tc.pattern, tc.name)
		if err != nil {
			t.Errorf("MatchName(%q, %q) error: %v", tc.pattern, tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("MatchName(%q, %q) = %v, want %v", tc.pattern, tc.name, got, tc.want)
		}
	}
}

func TestCompileWildcard_RejectsPathSeparators(t *testing.T) {
	t.Parallel()

	for _, pattern := range []string{`DOCS/*.TXT`, `DOCS\*.TXT`, "A\x00B"} {
		if _, err := CompileWildcard(pattern); !errors.Is(err, ErrBadPattern) {
			t.Errorf("CompileWildcard(%q) = %v, want ErrBadPattern", pattern, err)
		}
	}
}

func TestWildcard_NilMatchesNothing(t *testing.T) {
	t.Parallel()

	var w *Wildcard
	if w.Match("ANY") {
		t.Fatal("nil wildcard must not match")
	}
	if w.String() != "" {
		t.Fatalf("nil String() = %q", w.String())
	}
}
