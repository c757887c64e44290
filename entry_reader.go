// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"fmt"
	"io"
)

// entryReader streams one entry's content chunk by chunk across data
// volumes, hiding volume boundaries from the consumer. Reads are
// positioned (SectionReader over the cached volume handle), so concurrent
// entry readers never disturb each other.
type entryReader struct {
	set  *Set
	segs []Segment
	cur  *io.SectionReader
	idx  int
	rem  int64
}

// OpenEntry opens the reconstructed content stream of one catalog entry.
// The stream is finite and non-restartable; close it when done.
func (s *Set) OpenEntry(e *Entry) (io.ReadCloser, error) {
	if s == nil {
		return nil, ErrNilSet
	}
	if s.isClosed() {
		return nil, ErrClosed
	}
	if err := s.report.Err(); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEntryNotFound
	}
	if e.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, e.Path)
	}

	return &entryReader{set: s, segs: e.chunks()}, nil
}

// OpenEntryPath opens the content stream of the entry at path.
func (s *Set) OpenEntryPath(path string) (io.ReadCloser, error) {
	if s == nil {
		return nil, ErrNilSet
	}
	if err := s.report.Err(); err != nil {
		return nil, err
	}

	e, ok := s.catalog.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, path)
	}

	return s.OpenEntry(e)
}

// ReadEntry reads the full reconstructed content of the entry at path.
func (s *Set) ReadEntry(path string) ([]byte, error) {
	rc, err := s.OpenEntryPath(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}

// Read advances across chunks in order. A data volume shorter than a
// chunk's declared extent is payload corruption distinct from control
// file damage and surfaces as an ErrShortRead-wrapped error.
func (er *entryReader) Read(p []byte) (int, error) {
	for {
		if er.cur == nil {
			if er.idx >= len(er.segs) {
				return 0, io.EOF
			}

			seg := er.segs[er.idx]
			ra, err := er.set.dataReader(seg.Volume)
			if err != nil {
				return 0, err
			}

			er.cur = io.NewSectionReader(ra, seg.Offset, seg.Length)
			er.rem = seg.Length
		}

		n, err := er.cur.Read(p)
		er.rem -= int64(n)

		if err == io.EOF {
			if er.rem > 0 {
				seg := er.segs[er.idx]
				return n, fmt.Errorf("%w: volume %d at offset %d, %d bytes unread",
					ErrShortRead, seg.Volume, seg.Offset, er.rem)
			}

			er.cur = nil
			er.idx++
			if n > 0 {
				return n, nil
			}

			continue
		}

		return n, err
	}
}

// Close releases the reader. Data volume handles stay cached on the Set
// and are closed by Set.Close.
func (er *entryReader) Close() error {
	er.cur = nil
	er.idx = len(er.segs)
	return nil
}
