// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package dosbackup

import (
	"fmt"
	"strings"
)

// Severity ranks one consistency finding.
type Severity uint8

// Finding severities.
const (
	// SeverityWarning marks findings that do not block listing or extraction.
	SeverityWarning Severity = iota + 1
	// SeverityError marks findings that make the set unusable for extraction.
	SeverityError
)

// String returns the lower-case severity label.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}

	return "warning"
}

// FindingCode identifies one class of consistency finding.
type FindingCode string

// Consistency finding codes.
const (
	// FindingParse marks a volume whose control records could not be decoded.
	FindingParse FindingCode = "parse"
	// FindingSequenceGap marks a hole in the 1-based volume sequence run.
	FindingSequenceGap FindingCode = "sequence-gap"
	// FindingDuplicateSequence marks two control volumes claiming one sequence number.
	FindingDuplicateSequence FindingCode = "duplicate-sequence"
	// FindingMissingVolume marks a control volume whose paired data file is absent.
	FindingMissingVolume FindingCode = "missing-volume"
	// FindingEntryCount marks declared entry counts disagreeing with reconstructed records.
	FindingEntryCount FindingCode = "entry-count"
	// FindingChunkBounds marks a chunk reaching past the end of its data volume.
	FindingChunkBounds FindingCode = "chunk-bounds"
	// FindingSizeMismatch marks chunk lengths that do not add up to the declared file size.
	FindingSizeMismatch FindingCode = "size-mismatch"
	// FindingPartOrder marks chunk sequence numbers that do not increment by one.
	FindingPartOrder FindingCode = "part-order"
	// FindingOrphanPart marks a continuation chunk with no matching predecessor.
	FindingOrphanPart FindingCode = "orphan-part"
	// FindingOpenChain marks a split file with no continuation before the set ends.
	FindingOpenChain FindingCode = "open-chain"
	// FindingSegmentGap marks a spanning entry violating the volume boundary rule.
	FindingSegmentGap FindingCode = "segment-gap"
	// FindingDuplicatePath marks two file records resolving to one catalog path.
	FindingDuplicatePath FindingCode = "duplicate-path"
	// FindingNotFinal marks a set whose last volume lacks the final marker.
	FindingNotFinal FindingCode = "not-final"
	// FindingVolumeLabel marks non-zero bytes in the reserved header area.
	FindingVolumeLabel FindingCode = "volume-label"
)

// Finding is one accumulated consistency observation. Inconsistency is data,
// not a fault: findings are collected, never raised one at a time.
type Finding struct {
	// Code identifies the finding class.
	Code FindingCode `json:"code" yaml:"code"`
	// Path is the affected catalog path, empty for volume-level findings.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Detail is a human-readable description.
	Detail string `json:"detail" yaml:"detail"`
	// Volume is the affected volume sequence number, zero for set-level findings.
	Volume int `json:"volume,omitempty" yaml:"volume,omitempty"`
	// Severity ranks the finding.
	Severity Severity `json:"severity" yaml:"severity"`
}

// String renders one finding as a single log-friendly line.
func (f Finding) String() string {
	var b strings.Builder
	b.WriteString(string(f.Code))
	if f.Volume > 0 {
		fmt.Fprintf(&b, ": volume %d", f.Volume)
	}
	if f.Path != "" {
		b.WriteString(": ")
		b.WriteString(f.Path)
	}
	if f.Detail != "" {
		b.WriteString(": ")
		b.WriteString(f.Detail)
	}

	return b.String()
}

// Report accumulates consistency findings produced once per load.
// The set is usable for extraction only when the report carries zero errors.
type Report struct {
	// Findings holds all findings in discovery order.
	Findings []Finding `json:"findings,omitempty" yaml:"findings,omitempty"`
}

// OK reports whether the report carries no error findings.
func (r *Report) OK() bool {
	if r == nil {
		return true
	}

	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return false
		}
	}

	return true
}

// Errors returns error findings in discovery order.
func (r *Report) Errors() []Finding {
	return r.filter(SeverityError)
}

// Warnings returns warning findings in discovery order.
func (r *Report) Warnings() []Finding {
	return r.filter(SeverityWarning)
}

// Err returns nil for an error-free report, otherwise one error summarizing
// the hard findings. The error matches ErrConsistency, and additionally
// ErrVolumeMissing when a volume of the set cannot be located.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}

	errs := r.Errors()
	for _, f := range errs {
		if f.Code == FindingMissingVolume || f.Code == FindingSequenceGap {
			return fmt.Errorf("%w: %w: %s", ErrConsistency, ErrVolumeMissing, f.String())
		}
	}

	return fmt.Errorf("%w: %d errors, first: %s", ErrConsistency, len(errs), errs[0].String())
}

func (r *Report) filter(severity Severity) []Finding {
	if r == nil {
		return nil
	}

	out := make([]Finding, 0, len(r.Findings))
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}

	return out
}

func (r *Report) warn(code FindingCode, volume int, path, format string, args ...any) {
	r.add(SeverityWarning, code, volume, path, format, args...)
}

func (r *Report) error(code FindingCode, volume int, path, format string, args ...any) {
	r.add(SeverityError, code, volume, path, format, args...)
}

func (r *Report) add(severity Severity, code FindingCode, volume int, path, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Code:     code,
		Path:     path,
		Detail:   fmt.Sprintf(format, args...),
		Volume:   volume,
		Severity: severity,
	})
}
