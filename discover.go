// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileSystem abstracts the operations needed to discover and read volumes.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	Open(path string) (fs.File, error)
	ReadDir(path string) ([]fs.DirEntry, error)
}

type osFS struct{}

func (osFS) Stat(p string) (fs.FileInfo, error)      { return os.Stat(p) }
func (osFS) Open(p string) (fs.File, error)          { return os.Open(p) }
func (osFS) ReadDir(p string) ([]fs.DirEntry, error) { return os.ReadDir(p) }

var defaultFS osFS

// sniffLen covers the header length byte, signature, and sequence number.
const sniffLen = 10

// sniffResult classifies the first bytes of one candidate file.
type sniffResult uint8

const (
	sniffNoMatch sniffResult = iota
	sniffControl
	sniffDOS6
)

// sniffHeader classifies candidate file content without a full parse.
func sniffHeader(head []byte) sniffResult {
	if isDOS6Signature(head) {
		return sniffDOS6
	}
	if len(head) < sniffLen {
		return sniffNoMatch
	}
	if head[0] != controlHeaderSize || string(head[1:9]) != signatureText || head[9] == 0 {
		return sniffNoMatch
	}

	return sniffControl
}

// discoverControlPaths scans one directory for control volumes by content.
// File names are not trusted: volumes spooled from physical media are often
// renamed. Non-matching files are skipped silently; the dos6 flag reports
// whether any skipped file carried the MSBACKUP tag.
func discoverControlPaths(fsys FileSystem, dir string) (paths []string, dos6 bool, err error) {
	dirEntries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, false, fmt.Errorf("scan %s: %w", dir, err)
	}

	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}

		p := filepath.Join(dir, de.Name())
		head, err := readFileHead(fsys, p, sniffLen)
		if err != nil {
			continue
		}

		switch sniffHeader(head) {
		case sniffControl:
			paths = append(paths, p)
		case sniffDOS6:
			dos6 = true
		}
	}

	// Stable order so duplicate sequence handling is deterministic.
	sort.Strings(paths)
	return paths, dos6, nil
}

// findDataVolume locates the data file paired with one control header.
// The reference is the sequence number stored in the header, never the
// control file's own name; lookup tolerates case variants on disk.
func findDataVolume(fsys FileSystem, dir string, seq int) (string, int64, error) {
	want := fmt.Sprintf("BACKUP.%03d", seq)

	if fi, err := fsys.Stat(filepath.Join(dir, want)); err == nil && !fi.IsDir() {
		return filepath.Join(dir, want), fi.Size(), nil
	}

	dirEntries, err := fsys.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("scan %s: %w", dir, err)
	}

	for _, de := range dirEntries {
		if de.IsDir() || !strings.EqualFold(de.Name(), want) {
			continue
		}

		p := filepath.Join(dir, de.Name())
		fi, err := fsys.Stat(p)
		if err != nil {
			return "", 0, err
		}

		return p, fi.Size(), nil
	}

	return "", 0, fmt.Errorf("%w: %s", ErrVolumeMissing, filepath.Join(dir, want))
}

// readFileHead reads up to n leading bytes of one file.
func readFileHead(fsys FileSystem, path string, n int) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, err
	}

	return buf[:read], nil
}

// readFileAll reads one whole file through the set filesystem.
func readFileAll(fsys FileSystem, path string) ([]byte, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(f)
}
