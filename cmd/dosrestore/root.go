// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"

	// logger is the shared CLI logger; the library itself never logs.
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "dosrestore"})

	flagList      bool
	flagClobber   bool
	flagTimestamp bool
	flagDebug     bool
	flagStrict    bool
	flagHuman     bool
	flagWildcard  string
	flagDir       string
	flagDest      string
	flagConfig    string
	flagWorkers   int
	flagInclude   []string
	flagExclude   []string

	rootCmd = &cobra.Command{
		Use:   "dosrestore [flags] [CONTROL-FILE]",
		Short: "Restore files from DOS-era BACKUP volume sets",
		Long: titleStyle.Render("dosrestore") + subtitleStyle.Render(" - restore files from DOS-era BACKUP volume sets") + `

Reads the multi-volume archive sets written by the DOS 3.3-5.x BACKUP
utility (CONTROL.NNN / BACKUP.NNN pairs), validates them, and lists or
extracts the archived files, including files split across volumes.

Pass one control file to restore a single volume (incremental mode), or
no argument to discover every volume in the scan directory by content.

` + subtitleStyle.Render("Examples:") + `
  dosrestore -l                     List everything found in .
  dosrestore -l --dir a:/           List a set spooled to a:/
  dosrestore -w "*.TXT" --dest out  Restore text files into out/
  dosrestore -c -t CONTROL.001      Restore one volume, overwrite, keep times`,
		Args: cobra.MaximumNArgs(1),
	}
)

func init() {
	rootCmd.RunE = runRestore
	rootCmd.Flags().BoolVarP(&flagList, "list", "l", false, "list archive contents without extracting")
	rootCmd.Flags().BoolVarP(&flagClobber, "clobber", "c", false, "overwrite existing destination files")
	rootCmd.Flags().BoolVarP(&flagTimestamp, "timestamp", "t", false, "restore archived timestamps on extracted files")
	rootCmd.Flags().StringVarP(&flagWildcard, "wildcard", "w", "", "DOS wildcard applied to file names (e.g. \"*.TXT\")")
	rootCmd.Flags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&flagStrict, "strict", false, "refuse listing and extraction on warnings too")
	rootCmd.Flags().BoolVar(&flagHuman, "human", false, "print humanized sizes in listings")
	rootCmd.Flags().StringVar(&flagDir, "dir", ".", "directory scanned for control volumes")
	rootCmd.Flags().StringVar(&flagDest, "dest", ".", "destination root for extracted files")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "config file (default is $HOME/.config/dosrestore/dosrestore.toml)")
	rootCmd.Flags().IntVar(&flagWorkers, "workers", 1, "parallel extraction workers (1 keeps deterministic order)")
	rootCmd.Flags().StringArrayVar(&flagInclude, "include", nil, "glob rule selecting full paths to restore (repeatable)")
	rootCmd.Flags().StringArrayVar(&flagExclude, "exclude", nil, "glob rule excluding full paths from restore (repeatable)")
}

// Execute runs the root command through fang and maps ExitError codes.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
