// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"errors"
	"fmt"
)

var (
	// ErrArgumentCollision is returned if two [Argument]s are considered equal.
	ErrArgumentCollision = errors.New("colliding args")

	// ErrMonitorTimeout is returned if QEMU did not connect to the monitor
	// socket in time.
	ErrMonitorTimeout = errors.New("monitor did not connect in time")

	// ErrExited is returned if the QEMU process exited before the
	// [Instance] was ready or while a monitor command was pending.
	ErrExited = errors.New("qemu exited")

	// ErrNoPrompt is returned if the monitor output ended without a prompt.
	ErrNoPrompt = errors.New("no monitor prompt")
)

// ArgumentError indicates an issue with an input argument.
type ArgumentError struct {
	msg string
}

// Error implements the [error] interface.
func (e *ArgumentError) Error() string {
	return "argument error: " + e.msg
}

// Is implements the [errors.Is] interface.
func (*ArgumentError) Is(other error) bool {
	_, ok := other.(*ArgumentError)
	return ok
}

// CommandError wraps any error occurred during the lifetime of the QEMU
// process.
type CommandError struct {
	Err error
}

// Error implements the [error] interface.
func (e *CommandError) Error() string {
	return "qemu: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*CommandError) Is(other error) bool {
	_, ok := other.(*CommandError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// MonitorError is returned if a monitor command failed. Response is the output
// QEMU printed for the command, if any.
type MonitorError struct {
	Command  string
	Response string
	Err      error
}

// Error implements the [error] interface.
func (e *MonitorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("monitor %q: %v", e.Command, e.Err)
	}

	return fmt.Sprintf("monitor %q: %s", e.Command, e.Response)
}

// Is implements the [errors.Is] interface.
func (*MonitorError) Is(other error) bool {
	_, ok := other.(*MonitorError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *MonitorError) Unwrap() error {
	return e.Err
}
