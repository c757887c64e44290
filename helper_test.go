// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// testStamp is a fixed DOS-representable timestamp used by the builders.
var testStamp = time.Date(1991, time.June, 17, 14, 32, 10, 0, time.Local)

// buildHeader builds one 0x8B-byte control volume header.
func buildHeader(seq int, final bool) []byte {
	h := make([]byte, controlHeaderSize)
	h[0] = controlHeaderSize
	copy(h[1:9], signatureText)
	h[9] = byte(seq)
	if final {
		h[0x8A] = finalVolumeMark
	}

	return h
}

// dirRec builds one directory record. The root directory is the empty path.
func dirRec(path string, files int) []byte {
	rec := make([]byte, dirRecordSize)
	rec[0] = dirRecordSize
	copy(rec[1:1+dirPathFieldSize], path)
	binary.LittleEndian.PutUint16(rec[0x40:0x42], uint16(files))

	return rec
}

// fileSpec describes one synthetic file record.
type fileSpec struct {
	name   string
	size   int
	part   int
	offset int
	length int
	attr   byte
	split  bool
}

// fileRec builds one file record with the shared test timestamp.
func fileRec(spec fileSpec) []byte {
	rec := make([]byte, fileRecordSize)
	rec[0] = fileRecordSize
	copy(rec[1:1+nameFieldSize], spec.name)

	if spec.split {
		rec[0x0D] = flagSplit
	} else {
		rec[0x0D] = flagLast
	}

	part := spec.part
	if part == 0 {
		part = 1
	}

	binary.LittleEndian.PutUint32(rec[0x0E:0x12], uint32(spec.size))
	binary.LittleEndian.PutUint16(rec[0x12:0x14], uint16(part))
	binary.LittleEndian.PutUint32(rec[0x14:0x18], uint32(spec.offset))
	binary.LittleEndian.PutUint32(rec[0x18:0x1C], uint32(spec.length))
	rec[0x1C] = spec.attr

	timeWord, dateWord := encodeDOSTime(testStamp)
	binary.LittleEndian.PutUint16(rec[0x1E:0x20], timeWord)
	binary.LittleEndian.PutUint16(rec[0x20:0x22], dateWord)

	return rec
}

// buildControl concatenates a header and records into one control volume.
func buildControl(seq int, final bool, records ...[]byte) []byte {
	out := buildHeader(seq, final)
	for _, r := range records {
		out = append(out, r...)
	}

	return out
}

// writeVolume writes one CONTROL.NNN/BACKUP.NNN pair into dir and
// returns the control file path.
func writeVolume(t *testing.T, dir string, seq int, control, data []byte) string {
	t.Helper()

	ctlPath := filepath.Join(dir, fmt.Sprintf("CONTROL.%03d", seq))
	if err := os.WriteFile(ctlPath, control, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("BACKUP.%03d", seq)), data, 0o644); err != nil {
		t.Fatal(err)
	}

	return ctlPath
}

// writeSingleVolumeSet writes a final one-volume set holding README.TXT
// ("HELLO") and DOCS\NOTES.TXT ("NOTES DATA").
func writeSingleVolumeSet(t *testing.T, dir string) string {
	t.Helper()

	data := []byte("HELLONOTES DATA")
	control := buildControl(1, true,
		dirRec("", 1),
		fileRec(fileSpec{name: "README.TXT", size: 5, offset: 0, length: 5}),
		dirRec(`DOCS`, 1),
		fileRec(fileSpec{name: "NOTES.TXT", size: 10, offset: 5, length: 10}),
	)

	return writeVolume(t, dir, 1, control, data)
}

// spanning test payload: SPLIT.BIN crosses the volume boundary.
var (
	spanPart1 = []byte("0123456789") // tail of volume 1
	spanPart2 = []byte("abcdef")     // head of volume 2
	spanWhole = append(append([]byte{}, spanPart1...), spanPart2...)
)

// writeSpanningSet writes a clean 2-volume set: README.TXT contained in
// volume 1, SPLIT.BIN split across both volumes.
func writeSpanningSet(t *testing.T, dir string) {
	t.Helper()

	data1 := append([]byte("HELLO"), spanPart1...)
	control1 := buildControl(1, false,
		dirRec("", 2),
		fileRec(fileSpec{name: "README.TXT", size: 5, offset: 0, length: 5}),
		fileRec(fileSpec{
			name: "SPLIT.BIN", size: len(spanWhole),
			part: 1, offset: 5, length: len(spanPart1), split: true,
		}),
	)
	writeVolume(t, dir, 1, control1, data1)

	control2 := buildControl(2, true,
		dirRec("", 1),
		fileRec(fileSpec{
			name: "SPLIT.BIN", size: len(spanWhole),
			part: 2, offset: 0, length: len(spanPart2),
		}),
	)
	writeVolume(t, dir, 2, control2, spanPart2)
}

// mustDiscover loads dir and fails the test on any load error.
func mustDiscover(t *testing.T, dir string) *Set {
	t.Helper()

	s, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// requireCleanReport fails the test unless the report is error-free.
func requireCleanReport(t *testing.T, s *Set) {
	t.Helper()

	if errs := s.Report().Errors(); len(errs) != 0 {
		t.Fatalf("unexpected report errors: %v", errs)
	}
}

// readAllEntry reads one catalog entry fully.
func readAllEntry(t *testing.T, s *Set, path string) []byte {
	t.Helper()

	data, err := s.ReadEntry(path)
	if err != nil {
		t.Fatalf("ReadEntry %s: %v", path, err)
	}

	return data
}

// assertBytes compares content with a readable failure message.
func assertBytes(t *testing.T, got, want []byte, what string) {
	t.Helper()

	if !bytes.Equal(got, want) {
		t.Fatalf("%s = %q, want %q", what, got, want)
	}
}
