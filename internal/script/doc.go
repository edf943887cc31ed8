// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package script provides declarative test scripts in YAML format and runs
// them against a session.
//
// A script is a list of steps, each having exactly one action:
//
//	name: shell-login
//	steps:
//	  - wait: "Login:"
//	    timeout: 10s
//	    step: Reached login prompt
//	  - type: "Root\n"
//	  - key: tab
//	  - combo: [ctrl, alt, delete]
//	  - move: {x: 100, y: 40}
//	  - press: 1
//	  - release: 1
//	  - idle: 2s
//	  - snapshot: desktop
package script
