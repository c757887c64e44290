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

func TestDiscover_CleanSpanningSet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSpanningSet(t, dir)
	s := mustDiscover(t, dir)

	requireCleanReport(t, s)
	if len(s.Report().Warnings()) != 0 {
		t.Errorf("unexpected warnings: %v", s.Report().Warnings())
	}

	vols := s.Volumes()
	if len(vols) != 2 || vols[0].Seq != 1 || vols[1].Seq != 2 {
		t.Fatalf("volumes = %+v", vols)
	}
	if vols[0].Final || !vols[1].Final {
		t.Errorf("final marks = %v, %v", vols[0].Final, vols[1].Final)
	}

	// Declared counts must match reconstructed entries volume by volume.
	if vols[0].DeclaredEntries != 2 || vols[1].DeclaredEntries != 1 {
		t.Errorf("declared entries = %d, %d", vols[0].DeclaredEntries, vols[1].DeclaredEntries)
	}

	c := s.Catalog()
	if c == nil {
		t.Fatal("clean set must expose a catalog")
	}
	if c.Files() != 2 {
		t.Fatalf("catalog files = %d, want 2", c.Files())
	}

	e, ok := c.Lookup("SPLIT.BIN")
	if !ok {
		t.Fatal("SPLIT.BIN not in catalog")
	}
	if !e.Spanning() || len(e.Segments) != 2 {
		t.Fatalf("segments = %+v, want 2 spanning segments", e.Segments)
	}
	if e.Segments[0].Volume != 1 || e.Segments[1].Volume != 2 || e.Segments[1].Offset != 0 {
		t.Errorf("segment layout = %+v", e.Segments)
	}
	if e.StoredBytes() != int64(len(spanWhole)) || !e.Complete {
		t.Errorf("stored %d bytes, complete %v", e.StoredBytes(), e.Complete)
	}
}

func TestDiscover_IgnoresVolumeFileNames(t *testing.T) {
	t.Parallel()

	// Volumes spooled from floppies get renamed; content decides order.
	dir := t.TempDir()
	writeSpanningSet(t, dir)
	if err := os.Rename(filepath.Join(dir, "CONTROL.001"), filepath.Join(dir, "ZZ_LAST")); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(filepath.Join(dir, "CONTROL.002"), filepath.Join(dir, "AA_FIRST")); err != nil {
		t.Fatal(err)
	}

	s := mustDiscover(t, dir)
	requireCleanReport(t, s)

	vols := s.Volumes()
	if vols[0].Seq != 1 || filepath.Base(vols[0].ControlPath) != "ZZ_LAST" {
		t.Fatalf("volume 1 = %+v, want ZZ_LAST ordered first by header sequence", vols[0])
	}

	assertBytes(t, readAllEntry(t, s, "SPLIT.BIN"), spanWhole, "SPLIT.BIN")
}

func TestDiscover_MissingDataVolume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSpanningSet(t, dir)
	if err := os.Remove(filepath.Join(dir, "BACKUP.002")); err != nil {
		t.Fatal(err)
	}

	s := mustDiscover(t, dir)

	err := s.Report().Err()
	if !errors.Is(err, ErrVolumeMissing) || !errors.Is(err, ErrConsistency) {
		t.Fatalf("report error = %v, want ErrVolumeMissing under ErrConsistency", err)
	}
	if s.Catalog() != nil {
		t.Error("broken set must not expose a catalog")
	}

	// Extraction must refuse outright, never produce a truncated file.
	out := t.TempDir()
	if _, err := s.Extract(t.Context(), out, ExtractOptions{}); !errors.Is(err, ErrVolumeMissing) {
		t.Fatalf("Extract = %v, want ErrVolumeMissing", err)
	}
	names, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Fatalf("refused extraction left files behind: %v", names)
	}
}

func TestDiscover_SequenceGap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVolume(t, dir, 1, buildControl(1, false,
		dirRec("", 1),
		fileRec(fileSpec{name: "A.TXT", size: 2, length: 2}),
	), []byte("aa"))
	writeVolume(t, dir, 3, buildControl(3, true,
		dirRec("", 1),
		fileRec(fileSpec{name: "B.TXT", size: 2, length: 2}),
	), []byte("bb"))

	s := mustDiscover(t, dir)
	if err := s.Report().Err(); !errors.Is(err, ErrVolumeMissing) {
		t.Fatalf("report error = %v, want ErrVolumeMissing for the gap", err)
	}
	if !hasFinding(s.Report(), FindingSequenceGap, SeverityError) {
		t.Fatalf("findings = %v, want a sequence-gap error", s.Report().Findings)
	}
}

func TestDiscover_DuplicateSequence(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctl := buildControl(1, true,
		dirRec("", 1),
		fileRec(fileSpec{name: "A.TXT", size: 2, length: 2}),
	)
	writeVolume(t, dir, 1, ctl, []byte("aa"))
	if err := os.WriteFile(filepath.Join(dir, "COPY.001"), ctl, 0o644); err != nil {
		t.Fatal(err)
	}

	s := mustDiscover(t, dir)
	if !hasFinding(s.Report(), FindingDuplicateSequence, SeverityError) {
		t.Fatalf("findings = %v, want duplicate-sequence error", s.Report().Findings)
	}
}

func TestDiscover_DamagedVolumeDoesNotAbortOthers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeVolume(t, dir, 1, buildControl(1, true,
		dirRec("", 1),
		fileRec(fileSpec{name: "GOOD.TXT", size: 2, length: 2}),
	), []byte("ok"))

	// Sniffs as a control volume but the record area is garbage.
	damaged := append(buildHeader(2, false), 0x99, 0x99)
	if err := os.WriteFile(filepath.Join(dir, "CONTROL.002"), damaged, 0o644); err != nil {
		t.Fatal(err)
	}

	s := mustDiscover(t, dir)
	if !hasFinding(s.Report(), FindingParse, SeverityError) {
		t.Fatalf("findings = %v, want a parse error for the damaged volume", s.Report().Findings)
	}
	if len(s.Volumes()) != 1 || s.Volumes()[0].Seq != 1 {
		t.Fatalf("volumes = %+v, want the intact volume loaded", s.Volumes())
	}
}

func TestDiscover_EmptyDirectory(t *testing.T) {
	t.Parallel()

	_, err := Discover(t.TempDir())
	if !errors.Is(err, ErrNotBackupSet) {
		t.Fatalf("err = %v, want ErrNotBackupSet", err)
	}
}

func TestDiscover_DOS6Only(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "CC30923A.FUL"), []byte("MSBACKUP style catalog"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Discover(dir)
	if !errors.Is(err, ErrDOS6Format) {
		t.Fatalf("err = %v, want ErrDOS6Format", err)
	}
}

func TestOpen_SingleVolumeSet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctlPath := writeSingleVolumeSet(t, dir)

	s, err := Open(ctlPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()

	requireCleanReport(t, s)
	if !s.Partial() {
		t.Error("Open must load in partial mode")
	}

	assertBytes(t, readAllEntry(t, s, "README.TXT"), []byte("HELLO"), "README.TXT")
	assertBytes(t, readAllEntry(t, s, `DOCS\NOTES.TXT`), []byte("NOTES DATA"), "NOTES.TXT")
}

func TestOpen_MidSetVolumeIsWarningOnly(t *testing.T) {
	t.Parallel()

	// Volume 2 alone: a continuation without its head and an open tail
	// are warnings in partial mode, the way RESTORE took one disk at a time.
	dir := t.TempDir()
	ctlPath := writeVolume(t, dir, 2, buildControl(2, false,
		dirRec("", 1),
		fileRec(fileSpec{name: "SPLIT.BIN", size: 30, part: 2, offset: 0, length: 10, split: true}),
	), make([]byte, 10))

	s, err := Open(ctlPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = s.Close() }()

	requireCleanReport(t, s)
	if !hasFinding(s.Report(), FindingOrphanPart, SeverityWarning) {
		t.Errorf("findings = %v, want orphan-part warning", s.Report().Findings)
	}
	if !hasFinding(s.Report(), FindingOpenChain, SeverityWarning) {
		t.Errorf("findings = %v, want open-chain warning", s.Report().Findings)
	}

	e, ok := s.Catalog().Lookup("SPLIT.BIN")
	if !ok {
		t.Fatal("mid-chain entry missing from catalog")
	}
	if e.FirstPart != 2 || e.Complete {
		t.Fatalf("entry = FirstPart %d Complete %v, want mid-chain incomplete", e.FirstPart, e.Complete)
	}
}

func TestOpen_RejectsUnparseableControl(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "CONTROL.001")
	if err := os.WriteFile(path, []byte("MSBACKUP"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); !errors.Is(err, ErrDOS6Format) {
		t.Fatalf("err = %v, want ErrDOS6Format", err)
	}
}

func TestSet_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSpanningSet(t, dir)
	s := mustDiscover(t, dir)

	if _, err := s.ReadEntry("README.TXT"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.OpenEntryPath("README.TXT"); err == nil {
		t.Fatal("read after close must fail")
	}
}

// hasFinding reports whether the report carries one finding of code and severity.
func hasFinding(r *Report, code FindingCode, severity Severity) bool {
	for _, f := range r.Findings {
		if f.Code == code && f.Severity == severity {
			return true
		}
	}

	return false
}
