// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/woozymasta/pathrules"

	"github.com/retrodata/dosbackup"
)

// runRestore is the single command: load the set, surface the report,
// then list or extract.
func runRestore(cmd *cobra.Command, args []string) error {
	if flagDebug {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}
	applyConfig(cfg)

	set, err := loadSet(args)
	if err != nil {
		return &ExitError{Err: err, Code: 1}
	}
	defer func() { _ = set.Close() }()

	if err := surfaceReport(set.Report()); err != nil {
		return err
	}

	if flagList {
		listSet(cmd, set)
		return nil
	}

	return extractSet(cmd, set)
}

// loadSet opens one explicit control file or discovers the scan directory.
func loadSet(args []string) (*dosbackup.Set, error) {
	if len(args) == 1 {
		logger.Debug("loading explicit control volume", "path", args[0])
		return dosbackup.Open(args[0])
	}

	logger.Debug("discovering control volumes", "dir", flagDir)
	return dosbackup.Discover(flagDir)
}

// surfaceReport prints findings and refuses on hard errors, or on
// warnings too under --strict.
func surfaceReport(report *dosbackup.Report) error {
	for _, f := range report.Warnings() {
		fmt.Fprintln(os.Stderr, warningStyle.Render("warning: "+f.String()))
	}
	for _, f := range report.Errors() {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+f.String()))
	}

	if err := report.Err(); err != nil {
		return &ExitError{Err: err, Code: 1}
	}
	if flagStrict && len(report.Warnings()) > 0 {
		return &ExitError{Err: fmt.Errorf("refusing on %d warnings (--strict)", len(report.Warnings())), Code: 1}
	}

	return nil
}

// listSet prints matching entries in declaration order with a summary.
func listSet(cmd *cobra.Command, set *dosbackup.Set) {
	entries := set.Catalog().Entries()
	out := cmd.OutOrStdout()

	files := 0
	var bytes int64
	for _, e := range entries {
		if e.IsDir() {
			if flagWildcard == "" {
				fmt.Fprintf(out, "%17s  %12s  %s\n", "", dirStyle.Render("<DIR>"), dosbackup.DOSPath(e.Path))
			}
			continue
		}
		if !matchesWildcard(e.Name) {
			continue
		}

		files++
		bytes += e.Size
		fmt.Fprintf(out, "%s  %12s  %s\n",
			e.ModTime.Format("01/02/2006 03:04 PM"), renderSize(e.Size), dosbackup.DOSPath(e.Path))
	}

	fmt.Fprintln(out, summaryStyle.Render(
		fmt.Sprintf("%d files, %s, %d volumes", files, humanize.Bytes(uint64(bytes)), len(set.Volumes()))))
}

// matchesWildcard applies the -w pattern to one file name.
// A pattern that fails to compile was already rejected during extraction
// setup; for listing it simply matches nothing.
func matchesWildcard(name string) bool {
	if flagWildcard == "" {
		return true
	}

	ok, err := dosbackup.MatchName(flagWildcard, name)
	return err == nil && ok
}

// renderSize formats one size column value.
func renderSize(size int64) string {
	if flagHuman {
		return humanize.Bytes(uint64(size))
	}

	return strconv.FormatInt(size, 10)
}

// extractSet restores selected files under the destination root.
func extractSet(cmd *cobra.Command, set *dosbackup.Set) error {
	opts := dosbackup.ExtractOptions{
		Pattern:       flagWildcard,
		Select:        buildSelectRules(),
		MaxWorkers:    flagWorkers,
		Clobber:       flagClobber,
		PreserveTimes: flagTimestamp,
		OnEntryDone: func(entry *dosbackup.Entry, written int64, outputPath string) {
			logger.Debug("restored", "path", entry.Path, "bytes", written, "to", outputPath)
		},
		OnSkip: func(entry *dosbackup.Entry, reason error) {
			logger.Warn("skipped", "path", entry.Path, "reason", reason)
		},
	}

	// Explicit include rules switch to allow-list semantics.
	if len(flagInclude) > 0 {
		opts.SelectMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	res, err := set.Extract(cmd.Context(), flagDest, opts)
	if err != nil {
		return &ExitError{Err: err, Code: 1}
	}

	fmt.Fprintln(cmd.OutOrStdout(), summaryStyle.Render(fmt.Sprintf(
		"restored %d files (%s), %d skipped, %d failed",
		res.Extracted, humanize.Bytes(uint64(res.Bytes)), res.Skipped, res.Failed)))

	if res.Extracted == 0 && res.Failed > 0 {
		return &ExitError{Err: fmt.Errorf("all %d selected files failed", res.Failed), Code: 1}
	}

	return nil
}

// buildSelectRules folds --include/--exclude into ordered path rules.
func buildSelectRules() []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(flagInclude)+len(flagExclude))
	for _, p := range flagInclude {
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionInclude, Pattern: p})
	}
	for _, p := range flagExclude {
		rules = append(rules, pathrules.Rule{Action: pathrules.ActionExclude, Pattern: p})
	}

	return rules
}
