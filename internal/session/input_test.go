// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session_test

import (
	"image"
	"testing"

	"github.com/aibor/kerntest/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_TypeString(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		expectedCalls []string
		expectedErr   error
	}{
		{
			name: "empty",
		},
		{
			name: "mixed case with slash",
			text: "Hi/",
			expectedCalls: []string{
				"combo shift-h",
				"key i",
				"key slash",
			},
		},
		{
			name: "space and newline",
			text: "ls /\n",
			expectedCalls: []string{
				"key l",
				"key s",
				"key spc",
				"key slash",
				"key ret",
			},
		},
		{
			name: "unknown character",
			text: "ab1c",
			expectedCalls: []string{
				"key a",
				"key b",
			},
			expectedErr: &session.UsageError{},
		},
		{
			name:        "non ascii letter",
			text:        "ä",
			expectedErr: &session.UsageError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channel := &fakeChannel{}
			sess := session.New(channel, "test")

			err := sess.TypeString(tt.text)
			require.ErrorIs(t, err, tt.expectedErr)

			assert.Equal(t, tt.expectedCalls, channel.calls)
		})
	}
}

func TestSession_TypeString_ChannelError(t *testing.T) {
	channel := &fakeChannel{sendErr: assert.AnError}
	sess := session.New(channel, "test")

	err := sess.TypeString("abc")
	require.ErrorIs(t, err, assert.AnError)

	assert.Equal(t, []string{"key a"}, channel.calls)
}

func TestSession_TypeKeyAndCombo(t *testing.T) {
	channel := &fakeChannel{}
	sess := session.New(channel, "test")

	require.NoError(t, sess.TypeKey("tab"))
	require.NoError(t, sess.TypeCombo("ctrl", "alt", "delete"))

	expected := []string{
		"key tab",
		"combo ctrl-alt-delete",
	}
	assert.Equal(t, expected, channel.calls)
}

func TestSession_MoveTo(t *testing.T) {
	channel := &fakeChannel{}
	sess := session.New(channel, "test")

	assert.Equal(t, image.Point{}, sess.Pointer(), "initial")

	require.NoError(t, sess.MoveTo(10, 5))
	require.NoError(t, sess.MoveTo(3, 5))
	require.NoError(t, sess.MoveTo(3, 5))
	require.NoError(t, sess.MoveTo(0, 20))

	expected := []string{
		"move 10 5",
		"move -7 0",
		"move 0 0",
		"move -3 15",
	}
	assert.Equal(t, expected, channel.calls)
	assert.Equal(t, image.Pt(0, 20), sess.Pointer())
}

func TestSession_MoveTo_ChannelError(t *testing.T) {
	channel := &fakeChannel{}
	sess := session.New(channel, "test")

	require.NoError(t, sess.MoveTo(10, 10))

	channel.sendErr = assert.AnError
	require.ErrorIs(t, sess.MoveTo(20, 20), assert.AnError)
	assert.Equal(t, image.Pt(10, 10), sess.Pointer(), "not updated on error")

	channel.sendErr = nil
	require.NoError(t, sess.MoveTo(20, 20))
	assert.Equal(t, "move 10 10", channel.calls[len(channel.calls)-1])
}

func TestSession_PressRelease(t *testing.T) {
	type action struct {
		press  bool
		button int
	}

	tests := []struct {
		name          string
		actions       []action
		expectedCalls []string
		expectedMask  session.ButtonMask
	}{
		{
			name: "press and release",
			actions: []action{
				{press: true, button: 1},
				{press: false, button: 1},
			},
			expectedCalls: []string{"buttons 1", "buttons 0"},
		},
		{
			name: "multiple held",
			actions: []action{
				{press: true, button: 1},
				{press: true, button: 3},
				{press: true, button: 2},
				{press: false, button: 1},
			},
			expectedCalls: []string{
				"buttons 1",
				"buttons 5",
				"buttons 7",
				"buttons 6",
			},
			expectedMask: 6,
		},
		{
			name: "release not pressed",
			actions: []action{
				{press: true, button: 2},
				{press: false, button: 3},
				{press: false, button: 3},
			},
			expectedCalls: []string{"buttons 2", "buttons 2", "buttons 2"},
			expectedMask:  2,
		},
		{
			name: "press twice",
			actions: []action{
				{press: true, button: 3},
				{press: true, button: 3},
			},
			expectedCalls: []string{"buttons 4", "buttons 4"},
			expectedMask:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channel := &fakeChannel{}
			sess := session.New(channel, "test")

			for _, a := range tt.actions {
				if a.press {
					require.NoError(t, sess.Press(a.button))
				} else {
					require.NoError(t, sess.Release(a.button))
				}
			}

			assert.Equal(t, tt.expectedCalls, channel.calls)
			assert.Equal(t, tt.expectedMask, sess.Buttons())
		})
	}
}

func TestSession_PressRelease_InvalidButton(t *testing.T) {
	for _, button := range []int{-1, 0, 4, 42} {
		channel := &fakeChannel{}
		sess := session.New(channel, "test")

		require.ErrorIs(t, sess.Press(button), &session.UsageError{})
		require.ErrorIs(t, sess.Release(button), &session.UsageError{})

		assert.Empty(t, channel.calls)
		assert.Zero(t, sess.Buttons())
	}
}

func TestButtonMask_Pressed(t *testing.T) {
	mask := session.ButtonMask(5)

	assert.True(t, mask.Pressed(1))
	assert.False(t, mask.Pressed(2))
	assert.True(t, mask.Pressed(3))
	assert.False(t, mask.Pressed(4))
	assert.False(t, mask.Pressed(0))
}
