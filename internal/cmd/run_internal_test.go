// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/kerntest/internal/qemu"
	"github.com/aibor/kerntest/internal/script"
	"github.com/aibor/kerntest/internal/session"
)

func TestHandleRunError(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		expectedExitCode int
		expectedOutput   string
	}{
		{
			name: "no error",
		},
		{
			name: "kernel panic",
			err: &session.FailureError{
				Reason: "Kernel panic",
				Line:   "12k 3[kernel::unwind] - boom",
				Err:    session.ErrKernelPanic,
			},
			expectedExitCode: ExitFailed,
			expectedOutput: "Failed [kerntest]: test failed: Kernel panic: " +
				"12k 3[kernel::unwind] - boom\n",
		},
		{
			name: "failed step",
			err: &script.StepError{
				Index:  2,
				Action: "wait",
				Err: &session.FailureError{
					Reason: "Login",
					Err:    session.ErrStepFailed,
				},
			},
			expectedExitCode: ExitFailed,
			expectedOutput:   "Failed [kerntest]: step 3 (wait): test failed: Login\n",
		},
		{
			name:             "qemu error",
			err:              fmt.Errorf("start: %w", &qemu.CommandError{Err: qemu.ErrExited}),
			expectedExitCode: ExitError,
			expectedOutput:   "Error [kerntest]: start: qemu: qemu exited\n",
		},
		{
			name:             "any error",
			err:              assert.AnError,
			expectedExitCode: ExitError,
			expectedOutput: "Error [kerntest]: " +
				"assert.AnError general error for testing\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdErr bytes.Buffer
			actualExitCode := handleRunError(tt.err, &stdErr)

			assert.Equal(t, tt.expectedExitCode, actualExitCode,
				"exit code should be as expected")
			assert.Equal(t, tt.expectedOutput, stdErr.String(),
				"stderr output should be as expected")
		})
	}
}

func TestHandleParseArgsError(t *testing.T) {
	assert.Equal(t, ExitPassed, handleParseArgsError(
		&ParseArgsError{msg: "flag parse", err: pflag.ErrHelp}))
	assert.Equal(t, ExitError, handleParseArgsError(&ParseArgsError{}))
}

func TestOpenConsoleOutput(t *testing.T) {
	var stdout bytes.Buffer

	logPath := filepath.Join(t.TempDir(), "console.log")
	testFlags := &flags{consoleLog: logPath, verbose: true}

	writer, closeFn, err := openConsoleOutput(testFlags, IO{Stdout: &stdout})
	require.NoError(t, err)

	_, err = writer.Write([]byte("booted\n"))
	require.NoError(t, err)

	closeFn()

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "booted\n", string(content))
	assert.Equal(t, "booted\n", stdout.String())

	writer, closeFn, err = openConsoleOutput(&flags{}, IO{Stdout: &stdout})
	require.NoError(t, err)
	assert.Nil(t, writer)

	closeFn()
}

func TestRunExitCodes(t *testing.T) {
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer

	cfg := IO{Stdout: &stdout, Stderr: &stderr}

	assert.Equal(t, ExitPassed, Run(t.Context(), []string{"--help"}, cfg))
	assert.Equal(t, ExitError, Run(t.Context(), []string{"--arch=amd64"}, cfg))
	assert.Equal(t, ExitError, Run(t.Context(),
		[]string{"--arch=amd64", "--kernel=vmlinuz", "missing.yaml"}, cfg))
}

func TestNewCommandSpec(t *testing.T) {
	testFlags := &flags{
		kernel:   "vmlinuz",
		memory:   256,
		smp:      2,
		graphics: "virtio-gpu-pci",
		devices:  []string{"usb-tablet", "usb-kbd"},
		cmdline:  []string{"quiet"},
	}

	spec := newCommandSpec(testFlags, "initrd.cpio")

	assert.Equal(t, "vmlinuz", spec.Kernel)
	assert.Equal(t, "initrd.cpio", spec.Initramfs)
	assert.Equal(t, "virtio-gpu-pci", spec.GraphicsDevice)
	assert.Equal(t, []string{"quiet"}, spec.KernelCmdline)
	assert.Equal(t, []qemu.Argument{
		qemu.RepeatableArg("device", "usb-tablet"),
		qemu.RepeatableArg("device", "usb-kbd"),
	}, spec.ExtraArgs)
}
