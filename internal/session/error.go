// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
)

var (
	// ErrKernelPanic is the kind of a [FailureError] raised when the guest
	// kernel reported an unrecoverable trap.
	ErrKernelPanic = errors.New("kernel panic")

	// ErrUserPanic is the kind of a [FailureError] raised when a guest user
	// space process aborted fatally.
	ErrUserPanic = errors.New("user panic")

	// ErrStepFailed is the kind of a [FailureError] returned by [Check].
	ErrStepFailed = errors.New("step failed")

	// ErrClosed is returned by any [Session] operation after [Session.Close].
	ErrClosed = errors.New("session closed")
)

// FailureError marks the test run as failed by the guest, as opposed to a
// wait that merely timed out.
type FailureError struct {
	// Human readable reason, e.g. "Kernel panic".
	Reason string
	// Console line that triggered the failure, if any.
	Line string
	// Kind of the failure. One of [ErrKernelPanic], [ErrUserPanic] or
	// [ErrStepFailed].
	Err error
}

// Error implements the [error] interface.
func (e *FailureError) Error() string {
	if e.Line == "" {
		return "test failed: " + e.Reason
	}

	return fmt.Sprintf("test failed: %s: %s", e.Reason, e.Line)
}

// Is implements the [errors.Is] interface.
func (*FailureError) Is(other error) bool {
	_, ok := other.(*FailureError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *FailureError) Unwrap() error {
	return e.Err
}

// UsageError indicates a defect in the calling test, like a character that
// can not be typed or a button number out of range.
type UsageError struct {
	msg string
}

// Error implements the [error] interface.
func (e *UsageError) Error() string {
	return "usage error: " + e.msg
}

// Is implements the [errors.Is] interface.
func (*UsageError) Is(other error) bool {
	_, ok := other.(*UsageError)
	return ok
}
