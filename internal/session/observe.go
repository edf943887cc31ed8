// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"time"
)

// DefaultIdleTimeout is the timeout commonly used with [Session.WaitForIdle].
const DefaultIdleTimeout = time.Second

// WaitForLine reads console lines until one matches the given regular
// expression. The pattern may match anywhere in a line.
//
// It returns false if the timeout is exceeded or the emulator terminated
// before a matching line arrived. The timeout bounds the total time spent in
// the call, not each single read.
//
// Each line is checked for fatal signatures of the guest before the pattern is
// tried. On a match a [FailureError] is returned. An invalid pattern results in
// a [UsageError].
//
// All lines that did not match are available via [Session.LastLog] until the
// next wait starts.
func (s *Session) WaitForLine(pattern string, timeout time.Duration) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, &UsageError{fmt.Sprintf("pattern %q: %v", pattern, err)}
	}

	return s.waitFor(re, timeout)
}

// WaitForIdle waits for the guest kernel to report that it has no active
// threads left. See [Session.WaitForLine] for details.
func (s *Session) WaitForIdle(timeout time.Duration) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}

	return s.waitFor(idleRE, timeout)
}

func (s *Session) waitFor(re *regexp.Regexp, timeout time.Duration) (bool, error) {
	s.lastLog = nil

	deadline := s.now().Add(timeout)

	for {
		remaining := max(deadline.Sub(s.now()), 0)

		line, err := s.channel.NextLine(remaining)
		if errors.Is(err, io.EOF) {
			slog.Debug("Console closed while waiting",
				slog.String("pattern", re.String()))

			return false, nil
		}

		if err != nil {
			return false, fmt.Errorf("next line: %w", err)
		}

		if line != "" {
			slog.Debug("Console line", slog.String("line", line))

			err := detectFailure(line)
			if err != nil {
				return false, err
			}

			if re.MatchString(line) {
				return true, nil
			}

			s.lastLog = append(s.lastLog, line)
		}

		if !s.now().Before(deadline) {
			return false, nil
		}
	}
}

// Check returns a [FailureError] with the given reason if ok is false. It is
// intended to turn unmet expectations, like timed out waits, into test
// failures:
//
//	ok, err := sess.WaitForLine(`Login:`, 5*time.Second)
//	if err != nil {
//	    return err
//	}
//
//	err = session.Check("login prompt", ok)
func Check(reason string, ok bool) error {
	if !ok {
		return &FailureError{
			Reason: reason,
			Err:    ErrStepFailed,
		}
	}

	slog.Info("Step passed", slog.String("step", reason))

	return nil
}
