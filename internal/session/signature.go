// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import "regexp"

// idleRE matches the scheduler message printed when the guest has no runnable
// threads left.
var idleRE = regexp.MustCompile(
	`\d+t \d+\[kernel::threads\] - L\d+: reschedule\(\) - No active threads, idling`,
)

type signature struct {
	re     *regexp.Regexp
	reason string
	kind   error
}

// Checked in order, before the caller's pattern.
var fatalSignatures = []signature{
	{
		re:     regexp.MustCompile(`\d+k \d+\[kernel::unwind\] - `),
		reason: "Kernel panic",
		kind:   ErrKernelPanic,
	},
	{
		re:     regexp.MustCompile(`\d+d \d+\[syscalls\] - USER> PANIC: `),
		reason: "User panic",
		kind:   ErrUserPanic,
	},
}

// detectFailure returns a [FailureError] if the line matches any of the fatal
// signatures.
func detectFailure(line string) error {
	for _, sig := range fatalSignatures {
		if sig.re.MatchString(line) {
			return &FailureError{
				Reason: sig.reason,
				Line:   line,
				Err:    sig.kind,
			}
		}
	}

	return nil
}
