// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"sync"
)

// Set provides read-only access to one loaded backup volume set.
// The volume list, consistency report, and catalog are built once at load
// time and never mutated afterwards.
type Set struct {
	// fs is the filesystem used for discovery and all volume reads.
	fs FileSystem
	// dir is the directory scope all volumes were loaded from.
	dir string
	// volumes are loaded volume pairs in sequence order.
	volumes []loadedVolume
	// bySeq resolves one loaded volume by sequence number.
	bySeq map[int]*loadedVolume
	// report carries all consistency findings for this set.
	report *Report
	// catalog is the validated entry tree, nil when the report has errors.
	catalog *Catalog
	// partial marks a set loaded from one explicit control file.
	partial bool
	// mu guards data file handles and closed state.
	mu sync.Mutex
	// dataFiles caches open data volume handles by sequence number.
	dataFiles map[int]dataHandle
	// closed reports whether Close was already called.
	closed bool
}

// dataHandle pairs an open file handle with its random-access view.
type dataHandle struct {
	closer io.Closer
	ra     io.ReaderAt
}

// loadedVolume pairs volume metadata with its parsed control records.
// records is nil when the control file failed to parse.
type loadedVolume struct {
	records *ControlVolume
	vol     Volume
}

// Open loads a backup set from one explicit control file. The set is
// loaded in partial mode: continuation chains may begin or end outside
// this volume, the way RESTORE handled volumes fed one by one.
func Open(ctlPath string) (*Set, error) {
	return OpenWithOptions(ctlPath, SetOptions{Partial: true})
}

// OpenWithOptions loads a backup set from one explicit control file using
// explicit set options.
func OpenWithOptions(ctlPath string, opts SetOptions) (*Set, error) {
	opts.applyDefaults()

	data, err := readFileAll(opts.FS, ctlPath)
	if err != nil {
		return nil, fmt.Errorf("open control volume: %w", err)
	}

	records, err := ParseControl(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ctlPath, err)
	}

	dir := filepath.Dir(ctlPath)
	report := &Report{}
	vols := []loadedVolume{loadVolumePair(opts.FS, dir, ctlPath, records)}

	return newSet(opts, dir, vols, report), nil
}

// Discover scans dir for control volumes by content and loads the whole
// set. File names are never trusted for ordering or pairing.
func Discover(dir string) (*Set, error) {
	return DiscoverWithOptions(dir, SetOptions{})
}

// DiscoverWithOptions scans dir for control volumes using explicit set options.
func DiscoverWithOptions(dir string, opts SetOptions) (*Set, error) {
	opts.applyDefaults()

	paths, dos6, err := discoverControlPaths(opts.FS, dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		if dos6 {
			return nil, fmt.Errorf("%w: found in %s", ErrDOS6Format, dir)
		}

		return nil, fmt.Errorf("%w: no control volumes in %s", ErrNotBackupSet, dir)
	}

	report := &Report{}
	vols := make([]loadedVolume, 0, len(paths))
	claimed := make(map[int]string, len(paths))

	for _, p := range paths {
		data, err := readFileAll(opts.FS, p)
		if err != nil {
			report.error(FindingParse, 0, "", "read %s: %v", p, err)
			continue
		}

		records, err := ParseControl(data)
		if err != nil {
			// A damaged volume cannot be trusted, but the rest of the set
			// still gets loaded so the report shows the full picture.
			report.error(FindingParse, 0, "", "%s: %v", p, err)
			continue
		}

		seq := records.Header.Seq
		if prev, dup := claimed[seq]; dup {
			report.error(FindingDuplicateSequence, seq, "",
				"%s and %s both claim sequence %d, keeping %s", prev, p, seq, prev)
			continue
		}

		claimed[seq] = p
		vols = append(vols, loadVolumePair(opts.FS, dir, p, records))
	}

	if len(vols) == 0 {
		return nil, fmt.Errorf("%w: no usable control volumes in %s", ErrFormat, dir)
	}

	sort.Slice(vols, func(i, j int) bool { return vols[i].vol.Seq < vols[j].vol.Seq })
	return newSet(opts, dir, vols, report), nil
}

// loadVolumePair builds volume metadata for one parsed control file and
// locates its paired data file by the sequence number from the header.
func loadVolumePair(fsys FileSystem, dir, ctlPath string, records *ControlVolume) loadedVolume {
	declared := 0
	for _, d := range records.Dirs {
		declared += d.DeclaredFiles
	}

	vol := Volume{
		ControlPath:     ctlPath,
		Label:           records.Header.Label,
		Seq:             records.Header.Seq,
		DeclaredEntries: declared,
		Final:           records.Header.Final,
	}

	// A missing data file is a consistency finding, not a load failure:
	// the control records still feed listing diagnostics.
	if dataPath, dataSize, err := findDataVolume(fsys, dir, vol.Seq); err == nil {
		vol.DataPath = dataPath
		vol.DataSize = dataSize
	}

	return loadedVolume{records: records, vol: vol}
}

// newSet validates loaded volumes and assembles the immutable set.
func newSet(opts SetOptions, dir string, vols []loadedVolume, report *Report) *Set {
	entries := validateSet(report, vols, opts.Partial)

	s := &Set{
		fs:        opts.FS,
		dir:       dir,
		volumes:   vols,
		bySeq:     make(map[int]*loadedVolume, len(vols)),
		report:    report,
		partial:   opts.Partial,
		dataFiles: make(map[int]dataHandle, len(vols)),
	}
	for i := range vols {
		s.bySeq[vols[i].vol.Seq] = &vols[i]
	}

	// The catalog exists only for sets extraction could trust.
	if report.OK() {
		s.catalog = newCatalog(entries)
	}

	return s
}

// Volumes returns a copy of loaded volume metadata in sequence order.
func (s *Set) Volumes() []Volume {
	if s == nil {
		return nil
	}

	out := make([]Volume, len(s.volumes))
	for i := range s.volumes {
		out[i] = s.volumes[i].vol
	}

	return out
}

// Report returns the consistency report produced at load time.
func (s *Set) Report() *Report {
	if s == nil {
		return nil
	}

	return s.report
}

// Catalog returns the validated entry tree, or nil when the report
// carries errors.
func (s *Set) Catalog() *Catalog {
	if s == nil {
		return nil
	}

	return s.catalog
}

// Partial reports whether the set was loaded from one explicit control file.
func (s *Set) Partial() bool {
	return s != nil && s.partial
}

// Close closes all data volume handles opened by entry reads.
func (s *Set) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	var first error
	for seq, df := range s.dataFiles {
		if err := df.closer.Close(); err != nil && first == nil {
			first = fmt.Errorf("close data volume %d: %w", seq, err)
		}
	}
	s.dataFiles = nil

	return first
}

// isClosed reports whether Close was already called.
func (s *Set) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// dataReader returns a cached random-access reader for one data volume.
func (s *Set) dataReader(seq int) (io.ReaderAt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if df, ok := s.dataFiles[seq]; ok {
		return df.ra, nil
	}

	lv, ok := s.bySeq[seq]
	if !ok || lv.vol.DataPath == "" {
		return nil, fmt.Errorf("%w: data volume %d", ErrVolumeMissing, seq)
	}

	f, err := s.fs.Open(lv.vol.DataPath)
	if err != nil {
		return nil, fmt.Errorf("open data volume %d: %w", seq, err)
	}

	ra, ok := f.(io.ReaderAt)
	if !ok {
		_ = f.Close()
		return nil, fmt.Errorf("open data volume %d: %s does not support positioned reads", seq, lv.vol.DataPath)
	}

	s.dataFiles[seq] = dataHandle{closer: f, ra: ra}
	return ra, nil
}
