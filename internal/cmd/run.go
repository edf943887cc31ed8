// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/pflag"

	"github.com/aibor/kerntest/internal/initramfs"
	"github.com/aibor/kerntest/internal/qemu"
	"github.com/aibor/kerntest/internal/script"
	"github.com/aibor/kerntest/internal/session"
	"github.com/aibor/kerntest/internal/sys"
	"github.com/aibor/kerntest/internal/systest"
)

const (
	name            = "kerntest"
	localConfigFile = ".kerntest-args"
)

// Exit codes.
const (
	ExitPassed = 0
	ExitFailed = 1
	ExitError  = -1
)

// IO provides input and output details for the command.
type IO struct {
	Stdout io.Writer
	Stderr io.Writer
}

func parseFlags(args []string, cfg IO) (*flags, error) {
	args, err := MergedArgs(args, os.DirFS("."), localConfigFile)
	if err != nil {
		return nil, err
	}

	flags := newFlags(name, cfg.Stderr)

	err = flags.ParseArgs(args)
	if err != nil {
		return nil, err
	}

	return flags, nil
}

// validate checks that all given files are present and makes the paths
// absolute, as QEMU resolves them relative to its own working directory.
func (f *flags) validate() error {
	_, err := exec.LookPath(f.qemuBin)
	if err != nil {
		return fmt.Errorf("qemu binary: %w", err)
	}

	files := []struct {
		name     string
		path     *string
		validate func(string) error
	}{
		{"kernel", &f.kernel, sys.ValidateFilePath},
		{"initrd", &f.initrd, sys.ValidateFilePath},
		{"rootfs", &f.rootfs, sys.ValidateDirPath},
		{"snapshot dir", &f.snapshotDir, sys.ValidateDirPath},
	}

	for _, file := range files {
		if *file.path == "" {
			continue
		}

		path, err := sys.AbsolutePath(*file.path)
		if err != nil {
			return fmt.Errorf("%s: %w", file.name, err)
		}

		err = file.validate(path)
		if err != nil {
			return fmt.Errorf("%s: %w", file.name, err)
		}

		*file.path = path
	}

	return nil
}

func newCommandSpec(flags *flags, initramfsPath string) qemu.CommandSpec {
	spec := qemu.CommandSpec{
		Executable:     flags.qemuBin,
		Kernel:         flags.kernel,
		Initramfs:      initramfsPath,
		Machine:        flags.machine,
		CPU:            flags.cpu,
		SMP:            flags.smp,
		Memory:         flags.memory,
		NoKVM:          flags.noKVM,
		GraphicsDevice: flags.graphics,
		KernelCmdline:  flags.cmdline,
		Verbose:        flags.verbose,
	}

	for _, device := range flags.devices {
		spec.ExtraArgs = append(spec.ExtraArgs, qemu.RepeatableArg("device", device))
	}

	return spec
}

func newQemuCommand(flags *flags, initramfsPath string) (*qemu.Command, error) {
	spec := newCommandSpec(flags, initramfsPath)

	err := spec.AddDefaultsFor(flags.arch)
	if err != nil {
		return nil, fmt.Errorf("qemu defaults: %w", err)
	}

	// The executable is known now, so it can be checked.
	flags.qemuBin = spec.Executable

	err = flags.validate()
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	spec.Executable = flags.qemuBin
	spec.Kernel = flags.kernel

	if initramfsPath == "" {
		spec.Initramfs = flags.initrd
	}

	cmd, err := qemu.NewCommand(spec)
	if err != nil {
		return nil, fmt.Errorf("new qemu command: %w", err)
	}

	return cmd, nil
}

func newInitramfs(flags *flags) (string, error) {
	rootfs, err := sys.AbsolutePath(flags.rootfs)
	if err != nil {
		return "", fmt.Errorf("rootfs: %w", err)
	}

	err = sys.ValidateDirPath(rootfs)
	if err != nil {
		return "", fmt.Errorf("rootfs: %w", err)
	}

	path, err := initramfs.WriteToTempFile("", initramfs.DirFS(rootfs))
	if err != nil {
		return "", fmt.Errorf("build initramfs: %w", err)
	}

	slog.Debug("Created initramfs archive", slog.String("path", path))

	return path, nil
}

func removeInitramfs(path string) {
	slog.Debug("Removing initramfs archive", slog.String("path", path))

	err := os.Remove(path)
	if err != nil {
		slog.Error(
			"Failed to remove initramfs archive",
			slog.String("path", path),
			slog.Any("error", err),
		)
	}
}

func run(ctx context.Context, flags *flags, cfg IO) (int, error) {
	scripts := make([]*script.Script, 0, len(flags.scripts))

	for _, path := range flags.scripts {
		testScript, err := script.ParseFile(path)
		if err != nil {
			return ExitError, err //nolint:wrapcheck
		}

		scripts = append(scripts, testScript)
	}

	var initramfsPath string

	if flags.rootfs != "" {
		var err error

		initramfsPath, err = newInitramfs(flags)
		if err != nil {
			return ExitError, err
		}

		if flags.keepInitramfs {
			defer slog.Warn("Preserving initramfs archive",
				slog.String("path", initramfsPath))
		} else {
			defer removeInitramfs(initramfsPath)
		}
	}

	cmd, err := newQemuCommand(flags, initramfsPath)
	if err != nil {
		return ExitError, err
	}

	slog.Debug("QEMU command", slog.String("command", cmd.String()))

	consoleOutput, closeConsoleOutput, err := openConsoleOutput(flags, cfg)
	if err != nil {
		return ExitError, err
	}
	defer closeConsoleOutput()

	cmd.ConsoleOutput = consoleOutput

	if flags.verbose {
		cmd.Stderr = cfg.Stderr
	}

	exitCode := ExitPassed

	for _, testScript := range scripts {
		err := systest.Run(ctx, cmd, testScript,
			session.WithSnapshotDir(flags.snapshotDir))

		code := handleRunError(err, cfg.Stderr)
		if code == ExitPassed {
			fmt.Fprintf(cfg.Stdout, "ok\t%s\n", testScript.Name)
		} else {
			fmt.Fprintf(cfg.Stdout, "FAIL\t%s\n", testScript.Name)
		}

		if code == ExitError || exitCode == ExitPassed {
			exitCode = code
		}

		if ctx.Err() != nil {
			return ExitError, fmt.Errorf("interrupted: %w", context.Cause(ctx))
		}
	}

	return exitCode, nil
}

// openConsoleOutput returns the writer for the guest's console output. The
// returned function must be called once done.
func openConsoleOutput(flags *flags, cfg IO) (io.Writer, func(), error) {
	var writers []io.Writer

	if flags.verbose {
		writers = append(writers, cfg.Stdout)
	}

	closeFn := func() {}

	if flags.consoleLog != "" {
		file, err := os.Create(flags.consoleLog)
		if err != nil {
			return nil, nil, fmt.Errorf("console log: %w", err)
		}

		writers = append(writers, file)
		closeFn = func() {
			err := file.Close()
			if err != nil {
				slog.Error("Failed to close console log", slog.Any("error", err))
			}
		}
	}

	if len(writers) == 0 {
		return nil, closeFn, nil
	}

	return io.MultiWriter(writers...), closeFn, nil
}

func handleParseArgsError(err error) int {
	// [pflag.ErrHelp] is returned when help is requested. So exit without
	// error in this case.
	if errors.Is(err, pflag.ErrHelp) {
		return ExitPassed
	}

	// ParseArgs already prints errors, so we just exit without an error.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return ExitError
}

// handleRunError prints the error of a test run and returns the matching exit
// code.
func handleRunError(err error, stderr io.Writer) int {
	if err == nil {
		return ExitPassed
	}

	if errors.Is(err, &session.FailureError{}) {
		fmt.Fprintf(stderr, "Failed [%s]: %v\n", name, err)
		return ExitFailed
	}

	fmt.Fprintf(stderr, "Error [%s]: %v\n", name, err)

	return ExitError
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	flags, err := parseFlags(args, cfg)
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.verbose, flags.debug)

	exitCode, err := run(ctx, flags, cfg)
	if err != nil {
		return handleRunError(err, cfg.Stderr)
	}

	return exitCode
}
