// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

// Command dosrestore lists and extracts DOS 3.3-5.x BACKUP volume sets.
package main

func main() {
	Execute()
}
