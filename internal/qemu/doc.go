// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package qemu provides utilities for composing and running QEMU system
// emulation commands as needed by kerntest. It expects the required QEMU
// binary to be present on the system.
//
// The guest is expected to write its log on the first serial port, which is
// connected to the process' stdout and consumed line by line with
// [Console]. Input events and display snapshots are handled by the QEMU human
// monitor, see [Monitor].
package qemu
