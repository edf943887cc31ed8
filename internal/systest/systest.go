// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package systest runs test scripts on QEMU instances.
package systest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aibor/kerntest/internal/qemu"
	"github.com/aibor/kerntest/internal/script"
	"github.com/aibor/kerntest/internal/session"
)

// channel adapts a [qemu.Instance] to [session.Channel].
type channel struct {
	*qemu.Instance
}

var _ session.Channel = channel{}

// SetButtons implements [session.Channel].
func (c channel) SetButtons(mask session.ButtonMask) error {
	return c.Instance.SetButtons(uint8(mask)) //nolint:wrapcheck
}

// Open starts a new QEMU instance from cmd and returns a [session.Session] for
// the test with the given name on it. The caller must close the session.
func Open(
	ctx context.Context,
	cmd *qemu.Command,
	name string,
	opts ...session.Option,
) (*session.Session, error) {
	instance, err := cmd.Start(ctx)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	return session.New(channel{instance}, name, opts...), nil
}

// Run runs the script on a new QEMU instance. The session is closed on every
// path, including failed steps, so the final snapshot is always taken.
func Run(
	ctx context.Context,
	cmd *qemu.Command,
	testScript *script.Script,
	opts ...session.Option,
) (err error) {
	sess, err := Open(ctx, cmd, testScript.Name, opts...)
	if err != nil {
		return err
	}

	defer func() {
		closeErr := sess.Close()
		if closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close: %w", closeErr))
		}
	}()

	slog.Info("Run test", slog.String("test", testScript.Name))

	err = script.Run(sess, testScript)
	if err != nil {
		for _, line := range sess.LastLog() {
			slog.Debug("Last console line", slog.String("line", line))
		}

		return err //nolint:wrapcheck
	}

	return nil
}
