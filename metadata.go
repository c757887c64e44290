// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import "fmt"

// ReadControlHeader decodes only the fixed header of one control volume
// without parsing its directory and file records. Useful for identifying
// and ordering spooled volume files quickly.
func ReadControlHeader(path string) (*ControlHeader, error) {
	head, err := readFileHead(defaultFS, path, controlHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("read control volume: %w", err)
	}

	h, err := parseControlHeader(head)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &h, nil
}

// ListEntries loads the set rooted at one explicit control file and
// returns its validated entries without opening any data volume payload.
// Hard consistency errors refuse the listing.
func ListEntries(ctlPath string) ([]*Entry, error) {
	s, err := Open(ctlPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	if err := s.report.Err(); err != nil {
		return nil, err
	}

	return s.catalog.Entries(), nil
}
