// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session_test

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aibor/kerntest/internal/session"
)

// fakeChannel serves the given lines and records all primitive calls. Once
// all lines are served, it returns [io.EOF], unless idle is set, in which case
// it blocks for the requested timeout and returns an empty line.
type fakeChannel struct {
	lines []string
	idle  bool

	readErr     error
	sendErr     error
	snapshotErr error
	closeErr    error

	calls    []string
	timeouts []time.Duration
}

func (c *fakeChannel) NextLine(timeout time.Duration) (string, error) {
	c.timeouts = append(c.timeouts, timeout)

	if c.readErr != nil {
		return "", c.readErr
	}

	if len(c.lines) == 0 {
		if c.idle {
			time.Sleep(timeout)
			return "", nil
		}

		return "", io.EOF
	}

	line := c.lines[0]
	c.lines = c.lines[1:]

	return line, nil
}

func (c *fakeChannel) record(call string) error {
	c.calls = append(c.calls, call)
	return c.sendErr
}

func (c *fakeChannel) SendKey(key string) error {
	return c.record("key " + key)
}

func (c *fakeChannel) SendCombo(keys []string) error {
	return c.record("combo " + strings.Join(keys, "-"))
}

func (c *fakeChannel) MovePointer(dx, dy int) error {
	return c.record(fmt.Sprintf("move %d %d", dx, dy))
}

func (c *fakeChannel) SetButtons(mask session.ButtonMask) error {
	return c.record("buttons " + mask.String())
}

func (c *fakeChannel) CaptureSnapshot(filename string) error {
	c.calls = append(c.calls, "snapshot "+filename)
	return c.snapshotErr
}

func (c *fakeChannel) Close() error {
	c.calls = append(c.calls, "close")
	return c.closeErr
}

const (
	kernelPanicLine = "1234k 0[kernel::unwind] - Trap at 0xffff8000"
	userPanicLine   = "56d 3[syscalls] - USER> PANIC: index out of bounds"
	idleLine        = "789t 0[kernel::threads] - L123: reschedule() - No active threads, idling"
)
