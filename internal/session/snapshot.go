// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"fmt"
	"log/slog"
)

// Snapshot captures the emulator display into a file named after the test,
// a running index and the given tag: "test-<name>-<index>-<tag>.ppm".
//
// The index is incremented even if the capture failed, so file names are never
// reused within a session.
func (s *Session) Snapshot(tag string) error {
	if s.closed {
		return ErrClosed
	}

	name := fmt.Sprintf("test-%s-%d-%s.ppm", s.name, s.snapshotIndex, tag)
	path := s.snapshotPath(name)

	s.snapshotIndex++

	err := s.channel.CaptureSnapshot(path)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", tag, err)
	}

	slog.Debug("Captured snapshot", slog.String("file", path))

	return nil
}
