// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import "sort"

// validateSet cross-checks loaded volumes, stitches continuation chains
// across volume boundaries, and returns validated entries in declaration
// order. It is total: inconsistency is recorded in the report, never
// returned as an error.
func validateSet(report *Report, vols []loadedVolume, partial bool) []*Entry {
	checkVolumeRun(report, vols, partial)

	b := &setBuilder{
		report:  report,
		partial: partial,
		byPath:  make(map[string]*Entry),
		open:    make(map[string]*openChain),
	}

	for i := range vols {
		b.addVolume(&vols[i])
	}
	b.finish()

	return b.entries
}

// checkVolumeRun validates sequence contiguity and per-volume metadata.
func checkVolumeRun(report *Report, vols []loadedVolume, partial bool) {
	seqs := make([]int, 0, len(vols))
	for i := range vols {
		seqs = append(seqs, vols[i].vol.Seq)
	}
	sort.Ints(seqs)

	if len(seqs) > 0 && seqs[0] != 1 && !partial {
		report.error(FindingSequenceGap, seqs[0], "", "set starts at volume %d, not 1", seqs[0])
	}
	for i := 1; i < len(seqs); i++ {
		if seqs[i] != seqs[i-1]+1 {
			report.error(FindingSequenceGap, seqs[i], "",
				"volumes %d-%d absent between %d and %d", seqs[i-1]+1, seqs[i]-1, seqs[i-1], seqs[i])
		}
	}

	for i := range vols {
		vol := &vols[i].vol
		records := vols[i].records
		if records == nil {
			continue
		}

		if vol.DataPath == "" {
			report.error(FindingMissingVolume, vol.Seq, "", "data volume BACKUP.%03d not found", vol.Seq)
		}
		if got := len(records.Files); got != vol.DeclaredEntries {
			report.error(FindingEntryCount, vol.Seq, "",
				"header declares %d file records, reconstructed %d", vol.DeclaredEntries, got)
		}
		if records.Header.HasLabelData {
			report.warn(FindingVolumeLabel, vol.Seq, "",
				"reserved header area is not zeroed (label %q)", vol.Label)
		}
	}

	// An unfinished set may simply be truncated; in partial mode a single
	// mid-set volume is the normal case and not worth a finding.
	if !partial && len(vols) > 0 && !vols[len(vols)-1].vol.Final {
		report.warn(FindingNotFinal, vols[len(vols)-1].vol.Seq, "",
			"last loaded volume is not marked final, set may be truncated")
	}
}

// openChain tracks one split file waiting for its continuation record.
type openChain struct {
	entry    *Entry
	nextPart int
	lastSeq  int
}

// setBuilder accumulates validated entries while walking volumes in
// sequence order.
type setBuilder struct {
	report  *Report
	entries []*Entry
	byPath  map[string]*Entry
	open    map[string]*openChain
	partial bool
}

// addVolume folds one volume's records into the entry set.
func (b *setBuilder) addVolume(lv *loadedVolume) {
	if lv.records == nil {
		return
	}

	seq := lv.vol.Seq
	for _, d := range lv.records.Dirs {
		b.ensureDir(d.Path, seq)
	}
	for i := range lv.records.Files {
		b.addFileRecord(&lv.records.Files[i], lv, seq)
	}

	// Chains open at end of this volume must resume on the very next one.
	for key, chain := range b.open {
		if chain.lastSeq < seq {
			b.closeBrokenChain(key, chain, seq)
		}
	}
}

// addFileRecord stitches one file record into a new or open entry.
func (b *setBuilder) addFileRecord(rec *FileRecord, lv *loadedVolume, seq int) {
	path := joinEntryPath(rec.Dir, rec.Name)
	key := foldPath(path)

	b.checkChunkBounds(rec, lv, path)

	if rec.Part == 1 {
		b.startEntry(rec, lv, seq, path, key)
		return
	}

	b.continueEntry(rec, lv, seq, path, key)
}

// startEntry handles a part-1 record, the head of a file's chunk chain.
func (b *setBuilder) startEntry(rec *FileRecord, lv *loadedVolume, seq int, path, key string) {
	if chain, ok := b.open[key]; ok {
		b.closeBrokenChain(key, chain, seq)
	}
	if _, dup := b.byPath[key]; dup {
		b.report.error(FindingDuplicatePath, seq, path, "file declared more than once, keeping first")
		return
	}

	e := &Entry{
		ModTime:   rec.ModTime,
		Path:      path,
		Name:      rec.Name,
		Size:      rec.Size,
		Volume:    seq,
		Offset:    rec.Offset,
		Length:    rec.Length,
		FirstPart: 1,
		Kind:      KindFile,
		Attr:      rec.Attr,
		Complete:  !rec.Split,
	}
	b.register(e, key)

	if !rec.Split {
		if rec.Length != rec.Size {
			b.report.error(FindingSizeMismatch, seq, path,
				"single chunk holds %d bytes of declared %d", rec.Length, rec.Size)
		}
		return
	}

	b.checkSplitRunsToEnd(rec, lv, path)
	e.Segments = []Segment{{Volume: seq, Offset: rec.Offset, Length: rec.Length}}
	b.open[key] = &openChain{entry: e, nextPart: 2, lastSeq: seq}
}

// continueEntry matches a continuation record against its open chain.
// Matching is by path and declared total size, per-chunk sequence numbers
// must increment by one, and content must resume at offset 0 of the next
// sequential volume.
func (b *setBuilder) continueEntry(rec *FileRecord, lv *loadedVolume, seq int, path, key string) {
	chain, ok := b.open[key]
	if !ok {
		b.adoptOrphanPart(rec, lv, seq, path, key)
		return
	}

	e := chain.entry
	switch {
	case rec.Size != e.Size:
		b.report.error(FindingSizeMismatch, seq, path,
			"continuation declares total size %d, chain expects %d", rec.Size, e.Size)
	case rec.Part != chain.nextPart:
		b.report.error(FindingPartOrder, seq, path,
			"continuation chunk %d arrived, chain expects %d", rec.Part, chain.nextPart)
	case seq != chain.lastSeq+1:
		b.report.error(FindingSegmentGap, seq, path,
			"continuation in volume %d does not follow volume %d", seq, chain.lastSeq)
	case rec.Offset != 0:
		b.report.error(FindingSegmentGap, seq, path,
			"continuation resumes at offset %d, not 0", rec.Offset)
	default:
		e.Segments = append(e.Segments, Segment{Volume: seq, Offset: rec.Offset, Length: rec.Length})
		chain.nextPart = rec.Part + 1
		chain.lastSeq = seq

		if rec.Split {
			b.checkSplitRunsToEnd(rec, lv, path)
			return
		}

		delete(b.open, key)
		e.Complete = e.FirstPart == 1
		if e.Complete && e.StoredBytes() != e.Size {
			b.report.error(FindingSizeMismatch, seq, path,
				"chunks hold %d bytes of declared %d", e.StoredBytes(), e.Size)
		}
		return
	}

	delete(b.open, key)
	e.Complete = false
}

// adoptOrphanPart handles a continuation record with no open predecessor.
// In a full set that is always damage; a partial set legitimately picks a
// file up mid-chain when earlier volumes were restored in earlier runs.
func (b *setBuilder) adoptOrphanPart(rec *FileRecord, lv *loadedVolume, seq int, path, key string) {
	if !b.partial {
		b.report.error(FindingOrphanPart, seq, path,
			"continuation chunk %d has no matching predecessor", rec.Part)
		return
	}

	b.report.warn(FindingOrphanPart, seq, path,
		"chunk %d continues a file started on an earlier volume", rec.Part)

	if _, dup := b.byPath[key]; dup {
		b.report.error(FindingDuplicatePath, seq, path, "file declared more than once, keeping first")
		return
	}

	e := &Entry{
		ModTime:   rec.ModTime,
		Path:      path,
		Name:      rec.Name,
		Segments:  []Segment{{Volume: seq, Offset: rec.Offset, Length: rec.Length}},
		Size:      rec.Size,
		Volume:    seq,
		Offset:    rec.Offset,
		Length:    rec.Length,
		FirstPart: rec.Part,
		Kind:      KindFile,
		Attr:      rec.Attr,
		Complete:  false,
	}
	b.register(e, key)

	if rec.Split {
		b.checkSplitRunsToEnd(rec, lv, path)
		b.open[key] = &openChain{entry: e, nextPart: rec.Part + 1, lastSeq: seq}
	}
}

// closeBrokenChain drops one chain that found no continuation in time.
func (b *setBuilder) closeBrokenChain(key string, chain *openChain, seq int) {
	chain.entry.Complete = false
	delete(b.open, key)
	b.report.error(FindingOpenChain, seq, chain.entry.Path,
		"split file has no continuation chunk %d in volume %d", chain.nextPart, chain.lastSeq+1)
}

// finish resolves chains still open once all volumes are consumed.
// An open tail is damage in a full set; in partial mode the file simply
// continues on a volume the caller has not fed in yet.
func (b *setBuilder) finish() {
	for key, chain := range b.open {
		chain.entry.Complete = false
		delete(b.open, key)

		if b.partial {
			b.report.warn(FindingOpenChain, chain.lastSeq, chain.entry.Path,
				"file continues on volume %d", chain.lastSeq+1)
			continue
		}

		b.report.error(FindingOpenChain, chain.lastSeq, chain.entry.Path,
			"split file has no continuation before end of set")
	}
}

// checkChunkBounds verifies one chunk fits inside its data volume.
func (b *setBuilder) checkChunkBounds(rec *FileRecord, lv *loadedVolume, path string) {
	if lv.vol.DataPath == "" {
		return
	}

	if rec.Offset+rec.Length > lv.vol.DataSize {
		b.report.error(FindingChunkBounds, lv.vol.Seq, path,
			"chunk [%d..%d) reaches past end of %d-byte data volume",
			rec.Offset, rec.Offset+rec.Length, lv.vol.DataSize)
	}
}

// checkSplitRunsToEnd verifies a non-final chunk runs exactly to end of
// its data volume: the volume boundary is the only permitted discontinuity.
func (b *setBuilder) checkSplitRunsToEnd(rec *FileRecord, lv *loadedVolume, path string) {
	if lv.vol.DataPath == "" {
		return
	}

	if end := rec.Offset + rec.Length; end != lv.vol.DataSize {
		b.report.error(FindingSegmentGap, lv.vol.Seq, path,
			"split chunk ends at %d, not at end of %d-byte data volume", end, lv.vol.DataSize)
	}
}

// ensureDir registers a directory entry, synthesizing missing parents.
func (b *setBuilder) ensureDir(path string, seq int) *Entry {
	if path == "" {
		return nil
	}

	key := foldPath(path)
	if e, ok := b.byPath[key]; ok {
		if !e.IsDir() {
			b.report.error(FindingDuplicatePath, seq, path, "path is both a file and a directory")
		}
		return e
	}

	if dir, _ := splitEntryPath(path); dir != "" {
		b.ensureDir(dir, seq)
	}

	_, name := splitEntryPath(path)
	e := &Entry{
		Path:     path,
		Name:     name,
		Volume:   seq,
		Kind:     KindDir,
		Attr:     AttrDirectory,
		Complete: true,
	}
	b.register(e, key)

	return e
}

// register appends one validated entry in declaration order.
func (b *setBuilder) register(e *Entry, key string) {
	b.byPath[key] = e
	b.entries = append(b.entries, e)
}
