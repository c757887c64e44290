// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"time"

	"github.com/woozymasta/pathrules"
)

// Internal binary layout and format limits.
const (
	controlHeaderSize = 0x8B // fixed control volume header size in bytes
	dirRecordSize     = 0x46 // directory record size in bytes
	fileRecordSize    = 0x22 // file record size in bytes
	dirPathFieldSize  = 63   // padded directory path field size
	nameFieldSize     = 12   // padded 8.3 file name field size
	labelAreaSize     = 128  // reserved header area between sequence and final sentinel
	maxRecordValue    = 0x7FFFFFFF
)

// Record framing and header marker bytes.
const (
	signatureText     = "BACKUP  " // DOS 3.3-5.x family marker
	dos6SignatureText = "MSBACKUP" // DOS 6.0+ family marker, rejected
	flagSplit         = 0x02       // chunk continues on the next volume
	flagLast          = 0x03       // last or only chunk of the file
	finalVolumeMark   = 0xFF
)

// Default extractor tuning values.
const (
	DefaultExtractWorkers = 1
)

// Attr holds FAT attribute bits stored in a file record.
type Attr uint8

// FAT attribute bits.
const (
	AttrReadOnly    Attr = 0x01
	AttrHidden      Attr = 0x02
	AttrSystem      Attr = 0x04
	AttrVolumeLabel Attr = 0x08
	AttrDirectory   Attr = 0x10
	AttrArchive     Attr = 0x20
)

// Has reports whether all bits of flag are set.
func (a Attr) Has(flag Attr) bool {
	return a&flag == flag
}

// String renders attributes in fixed-width DOS ATTRIB order.
func (a Attr) String() string {
	buf := []byte("------")
	marks := [...]struct {
		bit  Attr
		mark byte
	}{
		{AttrReadOnly, 'R'},
		{AttrHidden, 'H'},
		{AttrSystem, 'S'},
		{AttrVolumeLabel, 'V'},
		{AttrDirectory, 'D'},
		{AttrArchive, 'A'},
	}
	for i, m := range marks {
		if a.Has(m.bit) {
			buf[i] = m.mark
		}
	}

	return string(buf)
}

// EntryKind tags a catalog entry as file or directory.
type EntryKind uint8

// Catalog entry kinds.
const (
	KindFile EntryKind = iota
	KindDir
)

// String returns a short kind label.
func (k EntryKind) String() string {
	if k == KindDir {
		return "dir"
	}

	return "file"
}

// ControlHeader is the decoded fixed header of one control volume.
type ControlHeader struct {
	// Label is printable text found in the reserved header area, empty on standard sets.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// Seq is the 1-based volume sequence number stored in the header.
	Seq int `json:"seq" yaml:"seq"`
	// Final reports whether this volume is marked as the last volume of the set.
	Final bool `json:"final" yaml:"final"`
	// HasLabelData reports whether the reserved header area carries any non-zero bytes.
	HasLabelData bool `json:"has_label_data,omitempty" yaml:"has_label_data,omitempty"`
}

// DirRecord is one decoded directory record of a control volume.
type DirRecord struct {
	// Path is the slash-normalized directory path, empty for the root directory.
	Path string `json:"path" yaml:"path"`
	// DeclaredFiles is the number of file records this volume declares for the directory.
	DeclaredFiles int `json:"declared_files" yaml:"declared_files"`
}

// FileRecord is one decoded file record of a control volume.
// Offset and Length address the chunk inside the paired data volume.
type FileRecord struct {
	// ModTime is the DOS timestamp decoded to local time.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
	// Name is the 8.3 file name as stored.
	Name string `json:"name" yaml:"name"`
	// Dir is the slash-normalized directory path of the owning directory record.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
	// Size is the total logical file size across all chunks.
	Size int64 `json:"size" yaml:"size"`
	// Part is the 1-based chunk sequence number of this record.
	Part int `json:"part" yaml:"part"`
	// Offset is the chunk start offset in the paired data volume.
	Offset int64 `json:"offset" yaml:"offset"`
	// Length is the stored chunk length in the paired data volume.
	Length int64 `json:"length" yaml:"length"`
	// Attr holds FAT attribute bits.
	Attr Attr `json:"attr,omitempty" yaml:"attr,omitempty"`
	// Split reports whether the file continues on the next volume.
	Split bool `json:"split,omitempty" yaml:"split,omitempty"`
}

// ControlVolume is the full decode of one control volume in declaration order.
type ControlVolume struct {
	Header ControlHeader `json:"header" yaml:"header"`
	Dirs   []DirRecord   `json:"dirs,omitempty" yaml:"dirs,omitempty"`
	Files  []FileRecord  `json:"files,omitempty" yaml:"files,omitempty"`
}

// Volume describes one loaded volume pair of the set. Immutable after load.
type Volume struct {
	// ControlPath is the control file location this volume was loaded from.
	ControlPath string `json:"control_path" yaml:"control_path"`
	// DataPath is the paired data file location, empty when the data file is missing.
	DataPath string `json:"data_path,omitempty" yaml:"data_path,omitempty"`
	// Label is printable text from the reserved header area, normally empty.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// Seq is the volume sequence number from the control header.
	Seq int `json:"seq" yaml:"seq"`
	// DeclaredEntries is the sum of per-directory declared file record counts.
	DeclaredEntries int `json:"declared_entries" yaml:"declared_entries"`
	// DataSize is the paired data file size in bytes, zero when the data file is missing.
	DataSize int64 `json:"data_size,omitempty" yaml:"data_size,omitempty"`
	// Final reports whether the volume claims to be the last one of the set.
	Final bool `json:"final" yaml:"final"`
}

// Segment is one contiguous chunk of a spanning entry inside a single data volume.
type Segment struct {
	// Volume is the sequence number of the volume holding this chunk.
	Volume int `json:"volume" yaml:"volume"`
	// Offset is the chunk start offset in the data volume.
	Offset int64 `json:"offset" yaml:"offset"`
	// Length is the chunk length in bytes.
	Length int64 `json:"length" yaml:"length"`
}

// Entry is one validated catalog entry. Entries are not mutated after validation.
type Entry struct {
	// ModTime is the last-modified timestamp, zero for directories.
	ModTime time.Time `json:"mod_time,omitzero" yaml:"mod_time,omitempty"`
	// Path is the slash-normalized full path relative to the archive root.
	Path string `json:"path" yaml:"path"`
	// Name is the final path segment.
	Name string `json:"name" yaml:"name"`
	// Segments holds ordered per-volume chunks when content crosses a volume
	// boundary; nil for entries contained in a single volume.
	Segments []Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
	// Size is the logical file size in bytes, zero for directories.
	Size int64 `json:"size" yaml:"size"`
	// Volume is the sequence number of the volume where content begins.
	Volume int `json:"volume" yaml:"volume"`
	// Offset is the first chunk offset inside its data volume.
	Offset int64 `json:"offset,omitempty" yaml:"offset,omitempty"`
	// Length is the first chunk stored length.
	Length int64 `json:"length,omitempty" yaml:"length,omitempty"`
	// FirstPart is the chunk sequence number the loaded set starts at; 1 unless
	// a partial set picks a file up mid-chain.
	FirstPart int `json:"first_part,omitempty" yaml:"first_part,omitempty"`
	// Kind tags the entry as file or directory.
	Kind EntryKind `json:"kind" yaml:"kind"`
	// Attr holds FAT attribute bits.
	Attr Attr `json:"attr,omitempty" yaml:"attr,omitempty"`
	// Complete reports whether every chunk of the file is present in the loaded set.
	Complete bool `json:"complete" yaml:"complete"`
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.Kind == KindDir
}

// Spanning reports whether entry content crosses a volume boundary.
func (e *Entry) Spanning() bool {
	return len(e.Segments) > 1
}

// StoredBytes returns the number of bytes present in the loaded set, which is
// less than Size for incomplete entries of a partial set.
func (e *Entry) StoredBytes() int64 {
	if e.Segments == nil {
		return e.Length
	}

	var total int64
	for _, seg := range e.Segments {
		total += seg.Length
	}

	return total
}

// chunks returns the ordered chunk list, synthesizing one for contained entries.
func (e *Entry) chunks() []Segment {
	if e.Segments != nil {
		return e.Segments
	}

	return []Segment{{Volume: e.Volume, Offset: e.Offset, Length: e.Length}}
}

// SetOptions configures volume set loading behavior.
type SetOptions struct {
	// FS overrides filesystem access for discovery and control volume reads.
	FS FileSystem `json:"-" yaml:"-"`
	// Partial relaxes chain validation for a set restored volume-by-volume:
	// chains may begin or end outside the loaded volumes and become warnings
	// instead of errors. Open enables it, Discover leaves it off.
	Partial bool `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// Chtimes applies a preserved timestamp to one written file.
	// Defaults to os.Chtimes.
	Chtimes func(path string, modTime time.Time) error `json:"-" yaml:"-"`
	// OnEntryDone is called after one entry is fully written to disk.
	OnEntryDone func(entry *Entry, written int64, outputPath string) `json:"-" yaml:"-"`
	// OnSkip is called for each entry skipped or failed; extraction continues.
	OnSkip func(entry *Entry, reason error) `json:"-" yaml:"-"`
	// Pattern is a DOS wildcard applied to file names; empty matches all files.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	// Select defines ordered path rules narrowing extraction by full path.
	Select []pathrules.Rule `json:"select,omitempty" yaml:"select,omitempty"`
	// SelectMatcherOptions control selection path rule matching.
	SelectMatcherOptions pathrules.MatcherOptions `json:"select_matcher_options,omitzero" yaml:"select_matcher_options,omitzero"`
	// MaxWorkers is the number of extraction workers. The default 1 keeps
	// deterministic declaration-order processing.
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
	// Clobber overwrites existing destination files instead of skipping them.
	Clobber bool `json:"clobber,omitempty" yaml:"clobber,omitempty"`
	// PreserveTimes applies archived timestamps to written files.
	PreserveTimes bool `json:"preserve_times,omitempty" yaml:"preserve_times,omitempty"`
	// RawNames disables default path sanitization during extract.
	RawNames bool `json:"raw_names,omitempty" yaml:"raw_names,omitempty"`
}

// ExtractResult contains extraction statistics and per-file failures.
type ExtractResult struct {
	// Errors holds one error per skipped or failed entry.
	Errors []error `json:"-" yaml:"-"`
	// Extracted is the number of entries fully written.
	Extracted int `json:"extracted" yaml:"extracted"`
	// Skipped is the number of entries skipped by the clobber policy.
	Skipped int `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// Failed is the number of entries that failed with read or write errors.
	Failed int `json:"failed,omitempty" yaml:"failed,omitempty"`
	// Bytes is the total number of payload bytes written.
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// applyDefaults fills zero-valued set options with defaults.
func (opts *SetOptions) applyDefaults() {
	if opts.FS == nil {
		opts.FS = defaultFS
	}
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = DefaultExtractWorkers
	}

	if opts.Chtimes == nil {
		opts.Chtimes = defaultChtimes
	}

	if opts.SelectMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.SelectMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionInclude,
		}
	}

	if opts.SelectMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.SelectMatcherOptions.DefaultAction = pathrules.ActionInclude
	}
}
