// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package script

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAction is returned if a step has no action.
	ErrNoAction = errors.New("step has no action")

	// ErrMultipleActions is returned if a step has more than one action.
	ErrMultipleActions = errors.New("step has multiple actions")

	// ErrNoSteps is returned if a script has no steps.
	ErrNoSteps = errors.New("script has no steps")
)

// ParseError is returned if a script can not be parsed.
type ParseError struct {
	Source string
	Err    error
}

// Error implements the [error] interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

// Is implements the [errors.Is] interface.
func (*ParseError) Is(other error) bool {
	_, ok := other.(*ParseError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// StepError is returned if a step of a script failed.
type StepError struct {
	// Zero based index of the step.
	Index int
	// Action of the step, e.g. "wait".
	Action string
	Err    error
}

// Error implements the [error] interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Action, e.Err)
}

// Is implements the [errors.Is] interface.
func (*StepError) Is(other error) bool {
	_, ok := other.(*StepError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *StepError) Unwrap() error {
	return e.Err
}
