// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"slices"
	"time"
)

// Upper bound of idle messages consumed on [Session.Close]. A guest that
// keeps reporting idle would otherwise block the teardown forever.
const maxIdleDrains = 64

// finalSnapshotTag replaces the snapshot index of the snapshot taken on
// [Session.Close]. It sorts after all numbered snapshots of the same test.
const finalSnapshotTag = "z-final"

// Channel is the control and observation connection to a running emulator
// instance.
type Channel interface {
	// NextLine returns the next console line. It returns an empty string if
	// no line arrived within timeout and [io.EOF] once the emulator is gone
	// and no more lines will arrive.
	NextLine(timeout time.Duration) (string, error)

	// SendKey injects a single key press.
	SendKey(key string) error

	// SendCombo injects the keys pressed simultaneously.
	SendCombo(keys []string) error

	// MovePointer moves the pointer relative to its current position.
	MovePointer(dx, dy int) error

	// SetButtons sets the state of all pointer buttons at once.
	SetButtons(mask ButtonMask) error

	// CaptureSnapshot writes the current display content into the given
	// file.
	CaptureSnapshot(filename string) error

	// Close releases the emulator.
	Close() error
}

// Session is a single test run on an emulator instance.
//
// It keeps the driver side model of the guest's pointer and button state, as
// the emulator only accepts relative motion and is never queried.
type Session struct {
	channel     Channel
	name        string
	snapshotDir string
	now         func() time.Time

	lastLog       []string
	snapshotIndex int
	pointer       image.Point
	buttons       ButtonMask
	closed        bool
}

// Option configures a [Session].
type Option func(*Session)

// WithSnapshotDir sets the directory the snapshot files are written to. By
// default, file names are passed as is and are relative to the emulator's
// working directory.
func WithSnapshotDir(dir string) Option {
	return func(s *Session) {
		s.snapshotDir = dir
	}
}

// New creates a new [Session] for the test with the given name. The
// [Session] takes ownership of the channel.
func New(channel Channel, name string, opts ...Option) *Session {
	sess := &Session{
		channel: channel,
		name:    name,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(sess)
	}

	return sess
}

// Name returns the test name.
func (s *Session) Name() string {
	return s.name
}

// LastLog returns the console lines seen by the most recent wait that matched
// neither the wait's pattern nor any fatal signature, in arrival order.
func (s *Session) LastLog() []string {
	return slices.Clone(s.lastLog)
}

// Pointer returns the last absolute pointer position sent to the emulator.
func (s *Session) Pointer() image.Point {
	return s.pointer
}

// Buttons returns the pointer buttons currently held.
func (s *Session) Buttons() ButtonMask {
	return s.buttons
}

// Close tears the session down.
//
// It waits for the guest to become idle, takes a final snapshot and releases
// the channel. It does so even if the session has failed before. Errors of the
// idle wait and the final snapshot are logged only, so they do not mask an
// earlier error of the caller. Only the first call has any effect.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}

	// Keep the diagnostics of the last wait of the test itself.
	lastLog := s.lastLog

	for range maxIdleDrains {
		idle, err := s.waitFor(idleRE, DefaultIdleTimeout)
		if err != nil {
			slog.Warn("Idle wait on teardown failed",
				slog.String("test", s.name),
				slog.Any("error", err))

			break
		}

		if !idle {
			break
		}
	}

	s.lastLog = lastLog

	final := s.snapshotPath(fmt.Sprintf("test-%s-%s.ppm", s.name, finalSnapshotTag))

	err := s.channel.CaptureSnapshot(final)
	if err != nil {
		slog.Warn("Final snapshot failed",
			slog.String("test", s.name),
			slog.String("file", final),
			slog.Any("error", err))
	}

	s.closed = true

	err = s.channel.Close()
	if err != nil {
		return fmt.Errorf("close channel: %w", err)
	}

	return nil
}

func (s *Session) snapshotPath(name string) string {
	if s.snapshotDir == "" {
		return name
	}

	return filepath.Join(s.snapshotDir, name)
}
