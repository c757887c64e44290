// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

/*
Package dosbackup reads multi-volume archive sets written by the DOS-era
BACKUP utility (DOS 3.3 through 5.x). A set consists of control volumes
(CONTROL.NNN, directory and file records) paired with data volumes
(BACKUP.NNN, raw payload). The package reconstructs the logical file tree,
validates cross-volume consistency, and extracts files, including files
whose content spans several volumes. The DOS 6.0+ MSBACKUP family uses a
different layout and is detected and rejected. Sets are read-only; the
targeted format range is uncompressed.

Volume ordering and pairing come from the sequence number embedded in each
control header, never from file names: volumes spooled off floppies are
routinely renamed.

# Loading

Discover every volume of a set in one directory:

	s, err := dosbackup.Discover("backups/")
	if err != nil {
	    return err
	}
	defer s.Close()

Or feed one explicit control file the way RESTORE handled single disks
(partial mode, continuation chains may cross into volumes not loaded):

	s, err := dosbackup.Open("backups/CONTROL.001")

Loading always yields a consistency report. Listing survives warnings,
extraction requires zero errors:

	for _, f := range s.Report().Warnings() {
	    fmt.Fprintln(os.Stderr, f)
	}
	if err := s.Report().Err(); err != nil {
	    return err
	}

# Listing

The catalog keeps control-file declaration order and resolves paths
case-insensitively:

	for _, e := range s.Catalog().Entries() {
	    fmt.Println(e.Path, e.Size, e.ModTime)
	}
	matched, err := s.Catalog().Glob("*.TXT")

# Reading and extracting

Entry content streams across volume boundaries transparently:

	data, err := s.ReadEntry(`DOCS\README.TXT`)

Extract with a DOS wildcard, preserving archived timestamps:

	res, err := s.Extract(ctx, "out/", dosbackup.ExtractOptions{
	    Pattern:       "*.TXT",
	    PreserveTimes: true,
	})

Existing destination files are skipped and counted as conflicts unless
Clobber is set; one failed file never aborts the rest of the run.

For metadata-only scans of spooled files:

	h, err := dosbackup.ReadControlHeader("DISK_07")
	fmt.Println(h.Seq, h.Final)
*/
package dosbackup
