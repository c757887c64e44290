// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package main

import "github.com/charmbracelet/lipgloss"

// Color palette for dark terminal backgrounds.
const (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
)

var (
	// titleStyle is for the tool name in help output.
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	// subtitleStyle is for secondary headers and descriptions.
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)

	// dirStyle marks directory entries in listings.
	dirStyle = lipgloss.NewStyle().Bold(true)

	// summaryStyle is for the listing and extraction summary lines.
	summaryStyle = lipgloss.NewStyle().Foreground(colorMuted)

	// errorStyle is for consistency error lines.
	errorStyle = lipgloss.NewStyle().Foreground(colorError)

	// warningStyle is for consistency warning lines.
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
)
