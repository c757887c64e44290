// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/remeh/sizedwaitgroup"
)

// extractCopyBufferSize defines the per-worker buffer size for chunk copies.
const extractCopyBufferSize = 64 * 1024

// extractWorkItem stores one selected entry with prepared output paths.
type extractWorkItem struct {
	relPath string
	relDir  string
	entry   *Entry
}

// Extract writes selected file entries to dstDir. One file failing never
// aborts the rest: conflicts and write errors are counted in the result
// and reported through OnSkip. Extraction refuses to start when the
// consistency report carries errors.
func (s *Set) Extract(ctx context.Context, dstDir string, opts ExtractOptions) (*ExtractResult, error) {
	if s == nil {
		return nil, ErrNilSet
	}
	if err := s.report.Err(); err != nil {
		return nil, err
	}

	opts.applyDefaults()

	selected, err := selectEntries(s.catalog.Entries(), &opts)
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{}
	if len(selected) == 0 {
		return result, nil
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	workItems, err := prepareExtractWorkItems(selected, opts.RawNames)
	if err != nil {
		return nil, err
	}
	if err := prepareExtractDirs(dstRootAbs, workItems); err != nil {
		return nil, err
	}

	if opts.MaxWorkers > 1 {
		s.extractParallel(ctx, dstRootAbs, workItems, &opts, result)
	} else {
		s.extractSequential(ctx, dstRootAbs, workItems, &opts, result)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	return result, nil
}

// extractSequential processes work items one by one in declaration order,
// the default: partial-run output stays reproducible.
func (s *Set) extractSequential(ctx context.Context, dstRoot string, items []extractWorkItem, opts *ExtractOptions, result *ExtractResult) {
	copyBuf := make([]byte, extractCopyBufferSize)
	for i := range items {
		if ctx.Err() != nil {
			return
		}

		written, err := s.extractPreparedEntry(dstRoot, &items[i], opts, copyBuf)
		recordExtractOutcome(result, &items[i], written, err, opts, nil)
	}
}

// extractParallel processes work items with a bounded worker pool.
// Independent files have no ordering dependency, so throughput-minded
// callers opt in via MaxWorkers.
func (s *Set) extractParallel(ctx context.Context, dstRoot string, items []extractWorkItem, opts *ExtractOptions, result *ExtractResult) {
	var mu sync.Mutex
	swg := sizedwaitgroup.New(opts.MaxWorkers)

	for i := range items {
		if ctx.Err() != nil {
			break
		}

		swg.Add()
		go func(item *extractWorkItem) {
			defer swg.Done()

			copyBuf := make([]byte, extractCopyBufferSize)
			written, err := s.extractPreparedEntry(dstRoot, item, opts, copyBuf)
			recordExtractOutcome(result, item, written, err, opts, &mu)
		}(&items[i])
	}

	swg.Wait()
}

// recordExtractOutcome folds one entry's outcome into the shared result.
func recordExtractOutcome(result *ExtractResult, item *extractWorkItem, written int64, err error, opts *ExtractOptions, mu *sync.Mutex) {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}

	switch {
	case err == nil:
		result.Extracted++
		result.Bytes += written
	case errors.Is(err, ErrDestinationExists):
		result.Skipped++
		result.Errors = append(result.Errors, err)
		if opts.OnSkip != nil {
			opts.OnSkip(item.entry, err)
		}
	default:
		result.Failed++
		result.Errors = append(result.Errors, err)
		if opts.OnSkip != nil {
			opts.OnSkip(item.entry, err)
		}
	}
}

// prepareExtractWorkItems validates selected entries and prepares
// destination-relative paths.
func prepareExtractWorkItems(entries []*Entry, rawNames bool) ([]extractWorkItem, error) {
	workItems := make([]extractWorkItem, 0, len(entries))
	for _, entry := range entries {
		outPath := entry.Path
		if !rawNames {
			sanitized, err := sanitizeExtractPath(outPath)
			if err != nil {
				return nil, fmt.Errorf("sanitize path %s: %w", entry.Path, err)
			}
			outPath = sanitized
		}

		normalized, err := normalizeExtractEntryPath(outPath)
		if err != nil {
			return nil, fmt.Errorf("normalize entry path %s: %w", entry.Path, err)
		}

		relPath := filepath.FromSlash(normalized)
		relDir := filepath.Dir(relPath)
		if relDir == "." {
			relDir = ""
		}

		workItems = append(workItems, extractWorkItem{
			entry:   entry,
			relPath: relPath,
			relDir:  relDir,
		})
	}

	return workItems, nil
}

// prepareExtractDirs creates all unique parent directories up front.
func prepareExtractDirs(dstRootAbs string, workItems []extractWorkItem) error {
	seen := make(map[string]struct{}, len(workItems))
	for _, task := range workItems {
		if task.relDir == "" {
			continue
		}

		dirPath := filepath.Join(dstRootAbs, task.relDir)
		key := strings.ToLower(dirPath)
		if _, exists := seen[key]; exists {
			continue
		}

		seen[key] = struct{}{}
		if err := os.MkdirAll(dirPath, 0o750); err != nil {
			return fmt.Errorf("create output directory %s: %w", dirPath, err)
		}
	}

	return nil
}

// extractPreparedEntry writes one work item to the destination root.
func (s *Set) extractPreparedEntry(dstRootAbs string, task *extractWorkItem, opts *ExtractOptions, copyBuf []byte) (int64, error) {
	outPath := filepath.Join(dstRootAbs, task.relPath)

	rc, err := s.OpenEntry(task.entry)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", task.entry.Path, err)
	}
	defer func() { _ = rc.Close() }()

	file, err := openExtractFile(outPath, task.entry, opts.Clobber)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", task.entry.Path, err)
	}

	written, copyErr := copyExtractData(file, rc, copyBuf)
	closeErr := file.Close()
	if copyErr != nil {
		return written, fmt.Errorf("write %s: %w", task.entry.Path, copyErr)
	}
	if closeErr != nil {
		return written, fmt.Errorf("close %s: %w", task.entry.Path, closeErr)
	}

	if opts.PreserveTimes && !task.entry.ModTime.IsZero() {
		if err := opts.Chtimes(outPath, task.entry.ModTime); err != nil {
			return written, fmt.Errorf("set times on %s: %w", task.entry.Path, err)
		}
	}

	if opts.OnEntryDone != nil {
		opts.OnEntryDone(task.entry, written, outPath)
	}

	return written, nil
}

// openExtractFile opens the output file under the clobber policy.
// Continuation entries of a partial set append to the file the earlier
// volumes produced, the way RESTORE stitched a file across disk swaps.
func openExtractFile(path string, entry *Entry, clobber bool) (*os.File, error) {
	if entry.FirstPart > 1 {
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrContinuationTarget, path)
			}

			return nil, err
		}

		return file, nil
	}

	if clobber {
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	}

	// O_EXCL keeps the existing file byte-for-byte untouched; the skip is
	// a reported conflict, not a run failure.
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDestinationExists, path)
		}

		return nil, err
	}

	return file, nil
}

// copyExtractData copies one entry stream to the output file using the
// fixed worker buffer.
func copyExtractData(dst *os.File, src io.Reader, buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, io.ErrShortBuffer
	}

	var total int64
	for {
		readN, readErr := src.Read(buf)
		if readN > 0 {
			writeN, writeErr := dst.Write(buf[:readN])
			total += int64(writeN)

			if writeErr != nil {
				return total, writeErr
			}
			if writeN != readN {
				return total, io.ErrShortWrite
			}
		}

		if readErr == nil {
			continue
		}
		if readErr == io.EOF {
			return total, nil
		}

		return total, readErr
	}
}

// normalizeExtractEntryPath rejects paths that would escape the
// destination root. Catalog paths are already normalized, so anything
// caught here is archive damage or a hostile input.
func normalizeExtractEntryPath(entryPath string) (string, error) {
	raw := strings.TrimSpace(entryPath)
	if raw == "" || strings.ContainsRune(raw, 0) {
		return "", ErrInvalidExtractPath
	}
	if strings.HasPrefix(raw, `/`) || strings.HasPrefix(raw, `\`) {
		return "", ErrInvalidExtractPath
	}

	raw = strings.ReplaceAll(raw, `\`, `/`)
	if hasDrivePrefix(raw) {
		return "", ErrInvalidExtractPath
	}

	parts := strings.Split(raw, `/`)
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			return "", ErrInvalidExtractPath
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", ErrInvalidExtractPath
	}

	return strings.Join(cleanParts, `/`), nil
}

// hasDrivePrefix reports whether path starts with a DOS drive root like C:/.
func hasDrivePrefix(path string) bool {
	if len(path) < 3 {
		return false
	}

	return isASCIIAlpha(path[0]) && path[1] == ':' && path[2] == '/'
}

// isASCIIAlpha reports whether b is an ASCII latin letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// defaultChtimes is the default timestamp collaborator.
func defaultChtimes(path string, modTime time.Time) error {
	return os.Chtimes(path, modTime, modTime)
}
