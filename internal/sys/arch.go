// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Arch is a guest architecture as named by the kernel build.
type Arch string

// Supported guest architectures.
const (
	AMD64 Arch = "amd64"
	ARMv7 Arch = "armv7"
	ARMv8 Arch = "armv8"
)

const kvmDevice = "/dev/kvm"

// Native is the guest architecture matching the host. Using the same
// architecture for the guest allows using KVM, if available. Use
// [Arch.KVMAvailable] to check.
var Native = nativeArch(runtime.GOARCH)

func nativeArch(goarch string) Arch {
	switch goarch {
	case "amd64":
		return AMD64
	case "arm":
		return ARMv7
	case "arm64":
		return ARMv8
	default:
		return ""
	}
}

// String implements [fmt.Stringer].
func (a *Arch) String() string {
	return string(*a)
}

// Set implements the [flag.Value] interface.
func (a *Arch) Set(s string) error {
	switch Arch(s) {
	case AMD64, ARMv7, ARMv8:
		*a = Arch(s)
	default:
		return ErrArchNotSupported
	}

	return nil
}

// Type implements the [pflag.Value] interface.
func (*Arch) Type() string {
	return "arch"
}

// IsNative returns true if the guest architecture matches the host.
func (a *Arch) IsNative() bool {
	return Native != "" && Native == *a
}

// KVMAvailable checks if KVM support is available for the architecture.
func (a *Arch) KVMAvailable() bool {
	if !a.IsNative() {
		return false
	}

	return unix.Access(kvmDevice, unix.R_OK|unix.W_OK) == nil
}
