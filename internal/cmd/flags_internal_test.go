// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/kerntest/internal/sys"
)

func TestFlagsParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expected    func(f *flags)
		expectedErr error
	}{
		{
			name: "help",
			args: []string{
				"--help",
			},
			expectedErr: pflag.ErrHelp,
		},
		{
			name: "version",
			args: []string{
				"--version",
			},
			expectedErr: pflag.ErrHelp,
		},
		{
			name: "no kernel",
			args: []string{
				"--arch=amd64",
				"boot.yaml",
			},
			expectedErr: &ParseArgsError{},
		},
		{
			name: "no script",
			args: []string{
				"--arch=amd64",
				"--kernel=vmlinuz",
			},
			expectedErr: &ParseArgsError{},
		},
		{
			name: "initrd and rootfs",
			args: []string{
				"--arch=amd64",
				"--kernel=vmlinuz",
				"--initrd=initrd.cpio",
				"--rootfs=rootfs",
				"boot.yaml",
			},
			expectedErr: &ParseArgsError{},
		},
		{
			name: "unsupported arch",
			args: []string{
				"--arch=riscv64",
				"--kernel=vmlinuz",
				"boot.yaml",
			},
			expectedErr: &ParseArgsError{},
		},
		{
			name: "memory too low",
			args: []string{
				"--memory=64",
				"--kernel=vmlinuz",
				"boot.yaml",
			},
			expectedErr: &ParseArgsError{},
		},
		{
			name: "all flags",
			args: []string{
				"--arch=armv8",
				"--kernel=vmlinuz",
				"--rootfs=rootfs",
				"--qemu-bin=/usr/bin/qemu-system-aarch64",
				"--machine=virt",
				"--cpu=max",
				"--memory=512",
				"--smp=4",
				"--nokvm",
				"--append=console=ttyAMA0",
				"--append=quiet",
				"--graphics=ramfb",
				"--device=usb-tablet",
				"--device=usb-kbd",
				"--snapshot-dir=out",
				"--console-log=console.log",
				"--keep-initramfs",
				"--verbose",
				"--debug",
				"boot.yaml",
				"desktop.yaml",
			},
			expected: func(f *flags) {
				f.arch = sys.ARMv8
				f.kernel = "vmlinuz"
				f.rootfs = "rootfs"
				f.qemuBin = "/usr/bin/qemu-system-aarch64"
				f.machine = "virt"
				f.cpu = "max"
				f.memory = 512
				f.smp = 4
				f.noKVM = true
				f.cmdline = []string{"console=ttyAMA0", "quiet"}
				f.graphics = "ramfb"
				f.devices = []string{"usb-tablet", "usb-kbd"}
				f.snapshotDir = "out"
				f.consoleLog = "console.log"
				f.keepInitramfs = true
				f.verbose = true
				f.debug = true
				f.scripts = []string{"boot.yaml", "desktop.yaml"}
			},
		},
		{
			name: "defaults",
			args: []string{
				"--arch=amd64",
				"--kernel=vmlinuz",
				"boot.yaml",
			},
			expected: func(f *flags) {
				f.arch = sys.AMD64
				f.kernel = "vmlinuz"
				f.scripts = []string{"boot.yaml"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var output bytes.Buffer

			actual := newFlags(name, &output)

			err := actual.ParseArgs(tt.args)
			require.ErrorIs(t, err, tt.expectedErr)

			if tt.expected == nil {
				return
			}

			expected := newFlags(name, &output)
			tt.expected(expected)

			assert.Equal(t, expected.arch, actual.arch)
			assert.Equal(t, expected.kernel, actual.kernel)
			assert.Equal(t, expected.initrd, actual.initrd)
			assert.Equal(t, expected.rootfs, actual.rootfs)
			assert.Equal(t, expected.qemuBin, actual.qemuBin)
			assert.Equal(t, expected.machine, actual.machine)
			assert.Equal(t, expected.cpu, actual.cpu)
			assert.Equal(t, expected.memory, actual.memory)
			assert.Equal(t, expected.smp, actual.smp)
			assert.Equal(t, expected.noKVM, actual.noKVM)
			assert.Equal(t, expected.cmdline, actual.cmdline)
			assert.Equal(t, expected.snapshotDir, actual.snapshotDir)
			assert.Equal(t, expected.consoleLog, actual.consoleLog)
			assert.Equal(t, expected.keepInitramfs, actual.keepInitramfs)
			assert.Equal(t, expected.verbose, actual.verbose)
			assert.Equal(t, expected.debug, actual.debug)
			assert.Equal(t, expected.scripts, actual.scripts)
		})
	}
}
