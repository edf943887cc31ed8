// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/pflag"

	"github.com/aibor/kerntest/internal/sys"
)

const (
	memDefault = 256
	memMin     = 128
	memMax     = 16384

	smpDefault = 1
	smpMin     = 1
	smpMax     = 16

	usageMessage = `Usage of '%[1]s':
    %[1]s [flags...] script.yaml [script.yaml...]

Boots the kernel in QEMU once per test script and runs the script's steps
against the guest's serial console, keyboard, pointer and display.

Exit code is 0 if all scripts passed, 1 if any script failed and -1 on any
other error.

All flags can also be provided via environment variable KERNTEST_ARGS:
    KERNTEST_ARGS="--kernel=/path/to/kernel --debug" %[1]s boot.yaml

All flags can also be provided via file ./.kerntest-args, with one argument
per line.
`
)

// Set on build.
var version = "dev"

type flags struct {
	name    string
	output  io.Writer
	flagSet *pflag.FlagSet

	arch          sys.Arch
	kernel        string
	initrd        string
	rootfs        string
	qemuBin       string
	machine       string
	cpu           string
	memory        uint64
	smp           uint64
	noKVM         bool
	cmdline       []string
	graphics      string
	devices       []string
	snapshotDir   string
	consoleLog    string
	keepInitramfs bool
	verbose       bool
	debug         bool
	version       bool

	scripts []string
}

func newFlags(name string, output io.Writer) *flags {
	flags := &flags{
		name:        name,
		output:      output,
		arch:        sys.Native,
		memory:      memDefault,
		smp:         smpDefault,
		snapshotDir: ".",
	}

	flags.initFlagset()

	return flags
}

func (f *flags) initFlagset() {
	flagSet := pflag.NewFlagSet(f.name, pflag.ContinueOnError)
	flagSet.SetOutput(f.output)
	flagSet.Usage = f.usage
	flagSet.SortFlags = false

	flagSet.Var(
		&f.arch,
		"arch",
		"guest architecture: amd64, armv7, armv8 (default is the host arch)",
	)

	flagSet.StringVar(
		&f.kernel,
		"kernel",
		f.kernel,
		"path to kernel to boot",
	)

	flagSet.StringVar(
		&f.initrd,
		"initrd",
		f.initrd,
		"path to an initramfs archive to boot with",
	)

	flagSet.StringVar(
		&f.rootfs,
		"rootfs",
		f.rootfs,
		"directory to pack into an initramfs archive to boot with",
	)

	flagSet.StringVar(
		&f.qemuBin,
		"qemu-bin",
		f.qemuBin,
		"QEMU binary to use (default depends on arch: qemu-system-*)",
	)

	flagSet.StringVar(
		&f.machine,
		"machine",
		f.machine,
		"QEMU machine type to use (default depends on arch)",
	)

	flagSet.StringVar(
		&f.cpu,
		"cpu",
		f.cpu,
		"QEMU CPU type to use (default depends on arch)",
	)

	flagSet.Var(
		&LimitedUintValue{
			Value: &f.memory,
			Lower: memMin,
			Upper: memMax,
		},
		"memory",
		"memory (in MB) for the QEMU VM",
	)

	flagSet.Var(
		&LimitedUintValue{
			Value: &f.smp,
			Lower: smpMin,
			Upper: smpMax,
		},
		"smp",
		"number of CPUs for the QEMU VM",
	)

	flagSet.BoolVar(
		&f.noKVM,
		"nokvm",
		f.noKVM,
		"disable hardware support (default is enabled if present and arch "+
			"matches the host arch)",
	)

	flagSet.StringArrayVar(
		&f.cmdline,
		"append",
		f.cmdline,
		"kernel command line argument. Flag may be used more than once.",
	)

	flagSet.StringVar(
		&f.graphics,
		"graphics",
		f.graphics,
		"QEMU graphics device snapshots are taken from (default depends on arch)",
	)

	flagSet.StringArrayVar(
		&f.devices,
		"device",
		f.devices,
		"additional QEMU device, like usb-tablet. Flag may be used more than once.",
	)

	flagSet.StringVar(
		&f.snapshotDir,
		"snapshot-dir",
		f.snapshotDir,
		"directory the snapshot files are written to",
	)

	flagSet.StringVar(
		&f.consoleLog,
		"console-log",
		f.consoleLog,
		"file the guest's console output is written to",
	)

	flagSet.BoolVar(
		&f.keepInitramfs,
		"keep-initramfs",
		f.keepInitramfs,
		"do not delete the initramfs built from --rootfs. Intended for "+
			"debugging. The path to the file is printed on stderr",
	)

	flagSet.BoolVar(
		&f.verbose,
		"verbose",
		f.verbose,
		"print the guest's console output and QEMU's stderr",
	)

	flagSet.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output",
	)

	flagSet.BoolVar(
		&f.version,
		"version",
		f.version,
		"show version and exit",
	)

	f.flagSet = flagSet
}

// ParseArgs parses the given arguments. It returns [pflag.ErrHelp] wrapped in
// a [ParseArgsError] if help or version information was requested.
func (f *flags) ParseArgs(args []string) error {
	err := f.flagSet.Parse(args)
	if err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag, just print the version and exit. Using [pflag.ErrHelp]
	// the main binary is supposed to return with a non error exit code.
	if f.version {
		err := f.printVersionInformation()
		return &ParseArgsError{msg: "version requested", err: err}
	}

	if f.arch == "" {
		return f.fail("no arch given and host arch is not supported (use --arch)", nil)
	}

	if f.kernel == "" {
		return f.fail("no kernel given (use --kernel)", nil)
	}

	if f.initrd != "" && f.rootfs != "" {
		return f.fail("--initrd and --rootfs are mutually exclusive", nil)
	}

	f.scripts = f.flagSet.Args()
	if len(f.scripts) == 0 {
		return f.fail("no test script given", nil)
	}

	return nil
}

// fail fails like pflag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.output, err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) printVersionInformation() error {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return ErrReadBuildInfo
	}

	fmt.Fprintf(f.output, "%s: %s (%s)\n", f.name, version, buildInfo.GoVersion)

	return pflag.ErrHelp
}

func (f *flags) usage() {
	fmt.Fprintf(f.output, usageMessage, f.name)
	fmt.Fprintln(f.output, "\nFlags:")
	f.flagSet.PrintDefaults()
}
