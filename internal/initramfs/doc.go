// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package initramfs packs a guest root file tree into a newc CPIO archive the
// kernel can unpack as initramfs.
package initramfs
