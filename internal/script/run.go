// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package script

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aibor/kerntest/internal/session"
)

// Driver is the session a [Script] runs on. It is implemented by
// [session.Session].
type Driver interface {
	WaitForLine(pattern string, timeout time.Duration) (bool, error)
	WaitForIdle(timeout time.Duration) (bool, error)
	TypeString(text string) error
	TypeKey(key string) error
	TypeCombo(keys ...string) error
	MoveTo(x, y int) error
	Press(button int) error
	Release(button int) error
	Snapshot(tag string) error
	LastLog() []string
}

var _ Driver = (*session.Session)(nil)

// Run executes the steps of the script in order. It stops at the first
// failing step and returns its error wrapped in a [StepError].
func Run(driver Driver, script *Script) error {
	for idx := range script.Steps {
		step := &script.Steps[idx]

		slog.Debug("Run step",
			slog.String("test", script.Name),
			slog.Int("index", idx),
			slog.String("action", step.Action()))

		err := runStep(driver, step)
		if err != nil {
			return &StepError{Index: idx, Action: step.Action(), Err: err}
		}
	}

	return nil
}

func runStep(driver Driver, step *Step) error {
	switch {
	case step.Wait != nil:
		timeout := time.Duration(step.Timeout)
		if timeout == 0 {
			timeout = DefaultWaitTimeout
		}

		ok, err := driver.WaitForLine(*step.Wait, timeout)
		if err != nil {
			return err //nolint:wrapcheck
		}

		return evaluate(driver, step, fmt.Sprintf("wait for %q", *step.Wait), ok)
	case step.Idle != nil:
		ok, err := driver.WaitForIdle(time.Duration(*step.Idle))
		if err != nil {
			return err //nolint:wrapcheck
		}

		return evaluate(driver, step, "wait for idle", ok)
	case step.Type != nil:
		return driver.TypeString(*step.Type) //nolint:wrapcheck
	case step.Key != nil:
		return driver.TypeKey(*step.Key) //nolint:wrapcheck
	case step.Combo != nil:
		return driver.TypeCombo(step.Combo...) //nolint:wrapcheck
	case step.Move != nil:
		return driver.MoveTo(step.Move.X, step.Move.Y) //nolint:wrapcheck
	case step.Press != nil:
		return driver.Press(*step.Press) //nolint:wrapcheck
	case step.Release != nil:
		return driver.Release(*step.Release) //nolint:wrapcheck
	case step.Snapshot != nil:
		return driver.Snapshot(*step.Snapshot) //nolint:wrapcheck
	default:
		return ErrNoAction
	}
}

// evaluate turns the result of a wait into the step's result.
func evaluate(driver Driver, step *Step, fallbackLabel string, ok bool) error {
	label := step.Label
	if label == "" {
		label = fallbackLabel
	}

	if ok {
		if step.Label == "" {
			return nil
		}

		return session.Check(label, true) //nolint:wrapcheck
	}

	if step.Optional {
		slog.Info("Optional step timed out", slog.String("step", label))
		return nil
	}

	for _, line := range driver.LastLog() {
		slog.Info("Console", slog.String("line", line))
	}

	return session.Check(label, false) //nolint:wrapcheck
}
