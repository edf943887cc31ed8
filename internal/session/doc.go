// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session drives a single emulator backed test run.
//
// A [Session] owns a [Channel] to the running emulator. It observes the
// guest's console output with bounded waits, detects crash signatures of the
// guest kernel and its user space, translates typed text and absolute pointer
// positions into the primitive events the emulator understands and captures
// numbered snapshots of the display.
//
// A Session is not safe for concurrent use. It must be released with
// [Session.Close] exactly once, which also takes a final snapshot:
//
//	sess := session.New(channel, "login")
//	defer sess.Close()
//
//	ok, err := sess.WaitForLine(`Login:`, 10*time.Second)
//	if err != nil {
//	    return err // crashed guest or defective test
//	}
//
//	if err := session.Check("reached login prompt", ok); err != nil {
//	    return err
//	}
//
//	err = sess.TypeString("root\n")
package session
