// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"errors"
	"testing"
)

func TestCatalog_LookupIgnoresCaseAndSlashStyle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSingleVolumeSet(t, dir)
	c := mustDiscover(t, dir).Catalog()

	for _, path := range []string{
		"DOCS/NOTES.TXT",
		`DOCS\NOTES.TXT`,
		"docs/notes.txt",
		`Docs\Notes.Txt`,
		"./DOCS/NOTES.TXT",
	} {
		e, ok := c.Lookup(path)
		if !ok {
			t.Fatalf("Lookup(%q) missed", path)
		}
		if e.Path != "DOCS/NOTES.TXT" {
			t.Fatalf("Lookup(%q).Path = %q", path, e.Path)
		}
	}

	if _, ok := c.Lookup("DOCS/OTHER.TXT"); ok {
		t.Fatal("Lookup found a nonexistent entry")
	}
}

func TestCatalog_DeclarationOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSingleVolumeSet(t, dir)
	c := mustDiscover(t, dir).Catalog()

	var paths []string
	for _, e := range c.Entries() {
		paths = append(paths, e.Path)
	}

	want := []string{"README.TXT", "DOCS", "DOCS/NOTES.TXT"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestCatalog_Glob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSingleVolumeSet(t, dir)
	c := mustDiscover(t, dir).Catalog()

	matched, err := c.Glob("*.txt")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("Glob(*.txt) matched %d entries, want 2", len(matched))
	}

	matched, err = c.Glob("N*.TXT")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(matched) != 1 || matched[0].Path != "DOCS/NOTES.TXT" {
		t.Fatalf("Glob(N*.TXT) = %v", matched)
	}

	if _, err := c.Glob("A/B"); !errors.Is(err, ErrBadPattern) {
		t.Fatalf("Glob(A/B) err = %v, want ErrBadPattern", err)
	}
}

func TestCatalog_Counters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSingleVolumeSet(t, dir)
	c := mustDiscover(t, dir).Catalog()

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if c.Files() != 2 {
		t.Fatalf("Files = %d, want 2", c.Files())
	}
	if c.TotalBytes() != 15 {
		t.Fatalf("TotalBytes = %d, want 15", c.TotalBytes())
	}
}

func TestCatalog_Filter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSingleVolumeSet(t, dir)
	c := mustDiscover(t, dir).Catalog()

	dirs := c.Filter(func(e *Entry) bool { return e.IsDir() })
	if len(dirs) != 1 || dirs[0].Path != "DOCS" {
		t.Fatalf("directory filter = %v", dirs)
	}
}

func TestCatalog_NilReceiver(t *testing.T) {
	t.Parallel()

	var c *Catalog
	if c.Entries() != nil || c.Len() != 0 || c.Files() != 0 || c.TotalBytes() != 0 {
		t.Fatal("nil catalog must report empty")
	}
	if _, ok := c.Lookup("X"); ok {
		t.Fatal("nil catalog Lookup must miss")
	}
}
