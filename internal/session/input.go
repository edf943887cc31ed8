// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"fmt"
	"strconv"
	"unicode"
)

// Key names as understood by the emulator.
const (
	KeyShift  = "shift"
	KeyReturn = "ret"
	KeySpace  = "spc"
	KeySlash  = "slash"
)

// Supported pointer buttons.
const (
	MinButton = 1
	MaxButton = 3
)

// ButtonMask is the set of held pointer buttons. Bit b-1 represents button b.
type ButtonMask uint8

// Pressed returns true if the given button is set in the mask.
func (m ButtonMask) Pressed(button int) bool {
	bit, err := buttonBit(button)
	if err != nil {
		return false
	}

	return m&bit != 0
}

// String implements [fmt.Stringer].
func (m ButtonMask) String() string {
	return strconv.FormatUint(uint64(m), 10)
}

func buttonBit(button int) (ButtonMask, error) {
	if button < MinButton || button > MaxButton {
		return 0, &UsageError{fmt.Sprintf(
			"button %d out of range [%d, %d]", button, MinButton, MaxButton,
		)}
	}

	return 1 << (button - 1), nil
}

// TypeString types the given text character by character.
//
// Lowercase and uppercase ASCII letters, newline, space and slash are
// supported. Any other character results in a [UsageError]. Characters
// preceding it have been typed already.
func (s *Session) TypeString(text string) error {
	if s.closed {
		return ErrClosed
	}

	for _, char := range text {
		var err error

		switch {
		case 'a' <= char && char <= 'z':
			err = s.channel.SendKey(string(char))
		case 'A' <= char && char <= 'Z':
			lower := string(unicode.ToLower(char))
			err = s.channel.SendCombo([]string{KeyShift, lower})
		case char == '\n':
			err = s.channel.SendKey(KeyReturn)
		case char == ' ':
			err = s.channel.SendKey(KeySpace)
		case char == '/':
			err = s.channel.SendKey(KeySlash)
		default:
			return &UsageError{fmt.Sprintf("unknown character %q", char)}
		}

		if err != nil {
			return fmt.Errorf("type %q: %w", char, err)
		}
	}

	return nil
}

// TypeKey sends a single key by its emulator name.
func (s *Session) TypeKey(key string) error {
	if s.closed {
		return ErrClosed
	}

	err := s.channel.SendKey(key)
	if err != nil {
		return fmt.Errorf("send key %s: %w", key, err)
	}

	return nil
}

// TypeCombo sends the keys pressed simultaneously.
func (s *Session) TypeCombo(keys ...string) error {
	if s.closed {
		return ErrClosed
	}

	err := s.channel.SendCombo(keys)
	if err != nil {
		return fmt.Errorf("send combo %v: %w", keys, err)
	}

	return nil
}

// MoveTo moves the pointer to the given absolute position.
//
// The relative motion is calculated from the last position sent. The tracked
// position is only updated once the emulator accepted the motion.
func (s *Session) MoveTo(x, y int) error {
	if s.closed {
		return ErrClosed
	}

	dx, dy := x-s.pointer.X, y-s.pointer.Y

	err := s.channel.MovePointer(dx, dy)
	if err != nil {
		return fmt.Errorf("move pointer by (%d, %d): %w", dx, dy, err)
	}

	s.pointer.X, s.pointer.Y = x, y

	return nil
}

// Press presses and holds the given pointer button.
func (s *Session) Press(button int) error {
	if s.closed {
		return ErrClosed
	}

	bit, err := buttonBit(button)
	if err != nil {
		return err
	}

	s.buttons |= bit

	return s.sendButtons()
}

// Release releases the given pointer button. Releasing a button that is not
// held leaves the mask unchanged, but the mask is sent anyway.
func (s *Session) Release(button int) error {
	if s.closed {
		return ErrClosed
	}

	bit, err := buttonBit(button)
	if err != nil {
		return err
	}

	s.buttons &^= bit

	return s.sendButtons()
}

func (s *Session) sendButtons() error {
	err := s.channel.SetButtons(s.buttons)
	if err != nil {
		return fmt.Errorf("set buttons %s: %w", s.buttons, err)
	}

	return nil
}
