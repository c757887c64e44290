// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"errors"
	"fmt"
)

// Sentinel errors for backup set operations. Use errors.Is in callers.
var (
	// ErrFormat means a control volume is structurally malformed.
	ErrFormat = errors.New("malformed control volume")
	// ErrNotBackupSet means the file does not carry the DOS 3.3-5.x BACKUP signature.
	ErrNotBackupSet = fmt.Errorf("%w: not a DOS backup control volume", ErrFormat)
	// ErrDOS6Format means the file belongs to the DOS 6.0+ MSBACKUP family, which uses a different layout.
	ErrDOS6Format = fmt.Errorf("%w: DOS 6.0+ MSBACKUP sets are not supported", ErrFormat)
	// ErrVolumeMissing means a volume referenced by the set cannot be located.
	ErrVolumeMissing = errors.New("backup volume missing")
	// ErrConsistency means the loaded set failed cross-volume validation.
	ErrConsistency = errors.New("backup set failed consistency checks")
	// ErrBadPattern means a wildcard pattern cannot apply to DOS file names.
	ErrBadPattern = errors.New("bad wildcard pattern")
	// ErrEntryNotFound means the entry is not present in the catalog.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrIsDirectory means a directory entry was used where a file entry is required.
	ErrIsDirectory = errors.New("entry is a directory")
	// ErrShortRead means a data volume ended before the declared chunk length.
	ErrShortRead = errors.New("data volume shorter than declared chunk")
	// ErrNilSet means the backup set is nil.
	ErrNilSet = errors.New("backup set is nil")
	// ErrClosed means the backup set is already closed.
	ErrClosed = errors.New("backup set already closed")
	// ErrDestinationExists means the destination file exists and overwrite is disabled.
	ErrDestinationExists = errors.New("destination file already exists")
	// ErrContinuationTarget means a continuation chunk has no existing output file to append to.
	ErrContinuationTarget = errors.New("continuation chunk has no existing output file")
	// ErrInvalidSelectRules means one or more extraction path rules are invalid.
	ErrInvalidSelectRules = errors.New("invalid selection rules")
	// ErrInvalidExtractPath means archive entry path is invalid for extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
)
