// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// busyChannel returns a non-matching line on every read and advances the
// clock by step each time.
type busyChannel struct {
	Channel

	clock    *time.Time
	step     time.Duration
	timeouts []time.Duration
}

func (c *busyChannel) NextLine(timeout time.Duration) (string, error) {
	c.timeouts = append(c.timeouts, timeout)
	*c.clock = c.clock.Add(c.step)

	return "noise", nil
}

func TestWaitForLineBudget(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	channel := &busyChannel{clock: &clock, step: time.Millisecond}

	sess := New(channel, "test")
	sess.now = func() time.Time { return clock }

	found, err := sess.WaitForLine("ready", 4*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, found)

	expected := []time.Duration{
		4 * time.Millisecond,
		3 * time.Millisecond,
		2 * time.Millisecond,
		time.Millisecond,
	}
	assert.Equal(t, expected, channel.timeouts)
	assert.Equal(t, []string{"noise", "noise", "noise", "noise"}, sess.LastLog())
}
