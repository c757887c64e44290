// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import "testing"

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                   "",
		"DOCS/NOTES.TXT":     "DOCS/NOTES.TXT",
		`DOCS\NOTES.TXT`:     "DOCS/NOTES.TXT",
		"BAD:NAME.TXT":       "BAD_NAME.TXT",
		`Q"UO|TE?.TXT`:       "Q_UO_TE_.TXT",
		"CON":                "_CON",
		"CON.TXT":            "_CON.TXT",
		"DOCS/NUL.DAT":       "DOCS/_NUL.DAT",
		"lpt1":               "_lpt1",
		"TRAIL. ":            "TRAIL",
		"NAME\x01CTRL":       "NAME_CTRL",
		"NOTDEV/CONSOLE.TXT": "NOTDEV/CONSOLE.TXT",
	}

	for in, want := range cases {
		got, err := SanitizePath(in)
		if err != nil {
			t.Fatalf("SanitizePath(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("SanitizePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizePathSegmentReplacesUnrepresentable(t *testing.T) {
	t.Parallel()

	// A segment sanitizing to nothing still yields a usable placeholder.
	got, err := sanitizePathSegment("...")
	if err != nil {
		t.Fatalf("sanitizePathSegment: %v", err)
	}
	if got != "_" {
		t.Fatalf("sanitizePathSegment(\"...\") = %q, want _", got)
	}

	got, err = sanitizePathSegment("�FILE")
	if err != nil {
		t.Fatalf("sanitizePathSegment: %v", err)
	}
	if got != "_FILE" {
		t.Fatalf("replacement-rune segment = %q, want _FILE", got)
	}
}

func TestIsReservedDeviceName(t *testing.T) {
	t.Parallel()

	reserved := []string{"CON", "con", "Con.txt", "AUX.", "clock$", "LPT4", "prn.bin"}
	for _, name := range reserved {
		if !isReservedDeviceName(name) {
			t.Fatalf("isReservedDeviceName(%q) = false, want true", name)
		}
	}

	plain := []string{"", "CONSOLE", "LPT5", "COM10", "README.TXT", "AUXFILE"}
	for _, name := range plain {
		if isReservedDeviceName(name) {
			t.Fatalf("isReservedDeviceName(%q) = true, want false", name)
		}
	}
}
