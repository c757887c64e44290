// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadControlHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctlPath := writeSingleVolumeSet(t, dir)

	h, err := ReadControlHeader(ctlPath)
	if err != nil {
		t.Fatalf("ReadControlHeader: %v", err)
	}
	if h.Seq != 1 {
		t.Fatalf("Seq = %d, want 1", h.Seq)
	}
	if !h.Final {
		t.Fatal("Final = false, want true")
	}
}

func TestReadControlHeader_NotBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "RANDOM.BIN")
	if err := os.WriteFile(path, make([]byte, controlHeaderSize), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadControlHeader(path); !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
}

func TestListEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctlPath := writeSingleVolumeSet(t, dir)

	entries, err := ListEntries(ctlPath)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Path != "README.TXT" || entries[2].Path != "DOCS/NOTES.TXT" {
		t.Fatalf("unexpected entry order: %v", entries)
	}
}

func TestListEntries_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := ListEntries(filepath.Join(t.TempDir(), "CONTROL.001")); err == nil {
		t.Fatal("expected error for missing control file")
	}
}
