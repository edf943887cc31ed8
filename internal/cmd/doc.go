// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd provides the CLI command entry point for kerntest. It handles
// flag parsing, initramfs creation, running the test scripts and mapping the
// results to an exit code.
package cmd
