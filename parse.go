// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// ParseControl decodes the raw bytes of one control volume into a header and
// ordered directory/file records. The decode is pure: no cross-volume
// resolution happens here and any structural damage fails with an error
// wrapping ErrFormat.
func ParseControl(data []byte) (*ControlVolume, error) {
	header, err := parseControlHeader(data)
	if err != nil {
		return nil, err
	}

	cv := &ControlVolume{Header: header}
	filesInDir := 0

	off := controlHeaderSize
	for off < len(data) {
		switch data[off] {
		case dirRecordSize:
			if err := checkDeclaredCount(cv, filesInDir); err != nil {
				return nil, err
			}
			if off+dirRecordSize > len(data) {
				return nil, fmt.Errorf("%w: truncated directory record at offset %d", ErrFormat, off)
			}

			rec, err := parseDirRecord(data[off : off+dirRecordSize])
			if err != nil {
				return nil, err
			}

			cv.Dirs = append(cv.Dirs, rec)
			filesInDir = 0
			off += dirRecordSize
		case fileRecordSize:
			if len(cv.Dirs) == 0 {
				return nil, fmt.Errorf("%w: file record before first directory record", ErrFormat)
			}
			if off+fileRecordSize > len(data) {
				return nil, fmt.Errorf("%w: truncated file record at offset %d", ErrFormat, off)
			}

			rec, err := parseFileRecord(data[off:off+fileRecordSize], cv.Dirs[len(cv.Dirs)-1].Path)
			if err != nil {
				return nil, err
			}

			cv.Files = append(cv.Files, rec)
			filesInDir++
			off += fileRecordSize
		default:
			return nil, fmt.Errorf("%w: unexpected record length byte 0x%02X at offset %d", ErrFormat, data[off], off)
		}
	}

	if err := checkDeclaredCount(cv, filesInDir); err != nil {
		return nil, err
	}

	return cv, nil
}

// parseControlHeader decodes and validates the fixed control volume header.
func parseControlHeader(data []byte) (ControlHeader, error) {
	var h ControlHeader

	if isDOS6Signature(data) {
		return h, ErrDOS6Format
	}
	if len(data) < controlHeaderSize {
		return h, fmt.Errorf("%w: short header (%d bytes)", ErrFormat, len(data))
	}
	if string(data[1:9]) != signatureText {
		return h, ErrNotBackupSet
	}
	if data[0] != controlHeaderSize {
		return h, fmt.Errorf("%w: header length byte 0x%02X", ErrFormat, data[0])
	}

	seq := int(data[9])
	if seq == 0 {
		return h, fmt.Errorf("%w: volume sequence number zero", ErrFormat)
	}

	switch data[0x8A] {
	case finalVolumeMark:
		h.Final = true
	case 0x00:
		h.Final = false
	default:
		return h, fmt.Errorf("%w: final volume marker 0x%02X", ErrFormat, data[0x8A])
	}

	h.Seq = seq
	h.Label, h.HasLabelData = decodeLabelArea(data[0x0A : 0x0A+labelAreaSize])
	return h, nil
}

// isDOS6Signature reports whether header bytes carry the MSBACKUP family tag.
// DOS 6.0+ catalogs drop the fixed length byte, so both alignments are probed.
func isDOS6Signature(data []byte) bool {
	if len(data) >= len(dos6SignatureText) && string(data[:len(dos6SignatureText)]) == dos6SignatureText {
		return true
	}

	return len(data) >= len(dos6SignatureText)+1 && string(data[1:len(dos6SignatureText)+1]) == dos6SignatureText
}

// checkDeclaredCount verifies the previous directory record saw exactly the
// declared number of file records.
func checkDeclaredCount(cv *ControlVolume, filesInDir int) error {
	if len(cv.Dirs) == 0 {
		return nil
	}

	last := cv.Dirs[len(cv.Dirs)-1]
	if last.DeclaredFiles != filesInDir {
		return fmt.Errorf("%w: directory %q declares %d file records, found %d",
			ErrFormat, displayDirPath(last.Path), last.DeclaredFiles, filesInDir)
	}

	return nil
}

// parseDirRecord decodes one 0x46-byte directory record.
func parseDirRecord(rec []byte) (DirRecord, error) {
	raw := decodeStoredString(rec[1 : 1+dirPathFieldSize])
	dirPath, err := decodeDirPath(raw)
	if err != nil {
		return DirRecord{}, err
	}

	return DirRecord{
		Path:          dirPath,
		DeclaredFiles: int(binary.LittleEndian.Uint16(rec[0x40:0x42])),
	}, nil
}

// parseFileRecord decodes one 0x22-byte file record owned by dir.
func parseFileRecord(rec []byte, dir string) (FileRecord, error) {
	name := decodeStoredString(rec[1 : 1+nameFieldSize])
	if err := checkFileName(name); err != nil {
		return FileRecord{}, err
	}

	var split bool
	switch rec[0x0D] {
	case flagSplit:
		split = true
	case flagLast:
		split = false
	default:
		return FileRecord{}, fmt.Errorf("%w: file %s: part flag 0x%02X", ErrFormat, name, rec[0x0D])
	}

	size := binary.LittleEndian.Uint32(rec[0x0E:0x12])
	part := binary.LittleEndian.Uint16(rec[0x12:0x14])
	offset := binary.LittleEndian.Uint32(rec[0x14:0x18])
	length := binary.LittleEndian.Uint32(rec[0x18:0x1C])

	if size > maxRecordValue {
		return FileRecord{}, fmt.Errorf("%w: file %s: size out of range", ErrFormat, name)
	}
	if part == 0 {
		return FileRecord{}, fmt.Errorf("%w: file %s: chunk sequence number zero", ErrFormat, name)
	}
	if offset > maxRecordValue || length > maxRecordValue {
		return FileRecord{}, fmt.Errorf("%w: file %s: chunk location out of range", ErrFormat, name)
	}
	if int64(length) > int64(size) {
		return FileRecord{}, fmt.Errorf("%w: file %s: chunk length %d exceeds file size %d", ErrFormat, name, length, size)
	}

	timeWord := binary.LittleEndian.Uint16(rec[0x1E:0x20])
	dateWord := binary.LittleEndian.Uint16(rec[0x20:0x22])
	modTime, ok := decodeDOSTime(timeWord, dateWord)
	if !ok {
		return FileRecord{}, fmt.Errorf("%w: file %s: timestamp outside DOS range", ErrFormat, name)
	}

	return FileRecord{
		ModTime: modTime,
		Name:    name,
		Dir:     dir,
		Size:    int64(size),
		Part:    int(part),
		Offset:  int64(offset),
		Length:  int64(length),
		Attr:    Attr(rec[0x1C]),
		Split:   split,
	}, nil
}

// decodeStoredString cuts a padded field at the first NUL and trims trailing
// padding. 8.3 fields are space or NUL padded depending on the writing tool.
func decodeStoredString(field []byte) string {
	if idx := bytes.IndexByte(field, 0); idx >= 0 {
		field = field[:idx]
	}

	return strings.TrimRight(string(field), " ")
}

// decodeDirPath converts one stored directory path to normalized slash form.
// The root directory is stored as an empty field.
func decodeDirPath(raw string) (string, error) {
	converted := strings.ReplaceAll(raw, `\`, `/`)
	converted = strings.TrimLeft(converted, "/")
	if converted == "" {
		return "", nil
	}

	for _, part := range strings.Split(converted, "/") {
		switch part {
		case "", ".", "..":
			return "", fmt.Errorf("%w: invalid directory path %q", ErrFormat, raw)
		}
		if err := checkPathBytes(part, "directory path", raw); err != nil {
			return "", err
		}
	}

	return converted, nil
}

// checkFileName validates one decoded 8.3 file name.
func checkFileName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty file name", ErrFormat)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: invalid file name %q", ErrFormat, name)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: file name %q contains path separator", ErrFormat, name)
	}

	return checkPathBytes(name, "file name", name)
}

// checkPathBytes rejects control bytes in one stored name segment.
// Bytes above 0x7F pass through, DOS code pages used them for letters.
func checkPathBytes(segment, what, raw string) error {
	for i := 0; i < len(segment); i++ {
		if segment[i] < 0x20 {
			return fmt.Errorf("%w: %s %q contains control bytes", ErrFormat, what, raw)
		}
	}

	return nil
}

// decodeLabelArea extracts printable text from the reserved header area.
// Standard sets keep the area zeroed.
func decodeLabelArea(area []byte) (label string, hasData bool) {
	content := area
	if idx := bytes.IndexByte(content, 0); idx >= 0 {
		content = content[:idx]
	}

	for _, b := range area {
		if b != 0 {
			hasData = true
			break
		}
	}
	if !hasData {
		return "", false
	}

	for _, b := range content {
		if b < 0x20 || b > 0x7E {
			return "", true
		}
	}

	return strings.TrimSpace(string(content)), true
}

// displayDirPath renders a directory path for messages, naming the root.
func displayDirPath(p string) string {
	if p == "" {
		return `\`
	}

	return DOSPath(p)
}
