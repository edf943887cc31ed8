// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"strconv"
	"strings"

	"github.com/aibor/kerntest/internal/sys"
)

const (
	machineTypeMicroVM = "microvm"
	machineTypePC      = "pc"
	machineTypeQ35     = "q35"
	machineTypeVirt    = "virt"
)

const (
	consoleID = "con0"
	monitorID = "mon0"
)

// CommandSpec defines the parameters for a [Command].
type CommandSpec struct {
	// Path to the qemu-system binary.
	Executable string

	// Path to the kernel to boot.
	Kernel string

	// Path to the initramfs to boot with. Optional.
	Initramfs string

	// QEMU machine type to use. Depends on the QEMU binary used.
	Machine string

	// CPU type to use. Depends on machine type and QEMU binary used.
	CPU string

	// Number of CPUs for the guest.
	SMP uint64

	// Memory for the machine in MB.
	Memory uint64

	// Disable KVM support.
	NoKVM bool

	// Graphics device the snapshots are taken from.
	GraphicsDevice string

	// Keyboard and pointer devices. Some machine types, like "pc", have them
	// built in.
	InputDevices []string

	// Kernel command line arguments.
	KernelCmdline []string

	// ExtraArgs are extra arguments that are passed to the QEMU command.
	// They must not interfere with the essential arguments set by the command
	// itself or an error will be returned by [NewCommand].
	ExtraArgs []Argument

	// Log the QEMU command line and keep QEMU's own stderr output.
	Verbose bool
}

// AddDefaultsFor adds architecture specific default values to the given spec
// if the fields are not set yet.
func (s *CommandSpec) AddDefaultsFor(arch sys.Arch) error {
	var (
		executable     string
		machine        string
		cpu            string
		graphicsDevice string
		inputDevices   []string
	)

	switch arch {
	case sys.AMD64:
		executable = "qemu-system-x86_64"
		machine = machineTypePC
		graphicsDevice = "VGA"
	case sys.ARMv7:
		executable = "qemu-system-arm"
		machine = machineTypeVirt
		cpu = "cortex-a15"
		graphicsDevice = "virtio-gpu-device"
		inputDevices = []string{"virtio-keyboard-device", "virtio-mouse-device"}
	case sys.ARMv8:
		executable = "qemu-system-aarch64"
		machine = machineTypeVirt
		cpu = "cortex-a57"
		graphicsDevice = "virtio-gpu-device"
		inputDevices = []string{"virtio-keyboard-device", "virtio-mouse-device"}
	default:
		return sys.ErrArchNotSupported
	}

	if s.Executable == "" {
		s.Executable = executable
	}

	if s.Machine == "" {
		s.Machine = machine
	}

	if s.CPU == "" {
		s.CPU = cpu
	}

	if s.GraphicsDevice == "" {
		s.GraphicsDevice = graphicsDevice
	}

	if s.InputDevices == nil {
		s.InputDevices = inputDevices
	}

	if !s.NoKVM {
		s.NoKVM = !arch.KVMAvailable()
	}

	return nil
}

// Validate checks for missing parameters and known incompatibilities.
func (s *CommandSpec) Validate() error {
	if s.Executable == "" {
		return &ArgumentError{"no qemu executable given"}
	}

	if s.Kernel == "" {
		return &ArgumentError{"no kernel given"}
	}

	if s.GraphicsDevice == "" {
		return &ArgumentError{"no graphics device given, snapshots need one"}
	}

	switch s.Machine {
	case machineTypeMicroVM:
		return &ArgumentError{"microvm does not support graphics devices"}
	case machineTypeVirt:
		if s.GraphicsDevice == "VGA" {
			return &ArgumentError{"virt requires a virtio graphics device"}
		}
	case machineTypeQ35, machineTypePC:
		if strings.HasSuffix(s.GraphicsDevice, "-device") {
			return &ArgumentError{
				s.Machine + " does not work with virtio-mmio devices",
			}
		}
	}

	return nil
}

// arguments compiles the argument list for the QEMU command. The QEMU monitor
// connects to the unix socket at the given path.
func (s *CommandSpec) arguments(monitorSocket string) []Argument {
	args := []Argument{
		UniqueArg("kernel", s.Kernel),
	}

	if s.Initramfs != "" {
		args = append(args, UniqueArg("initrd", s.Initramfs))
	}

	if s.Machine != "" {
		args = append(args, UniqueArg("machine", s.Machine))
	}

	if s.CPU != "" {
		args = append(args, UniqueArg("cpu", s.CPU))
	}

	if s.SMP != 0 {
		args = append(args, UniqueArg("smp", strconv.FormatUint(s.SMP, 10)))
	}

	if s.Memory != 0 {
		args = append(args, UniqueArg("m", strconv.FormatUint(s.Memory, 10)))
	}

	if !s.NoKVM {
		args = append(args, UniqueArg("enable-kvm"))
	}

	args = append(args,
		// Kernel console on the process' stdout.
		RepeatableArg("chardev", "stdio", "id="+consoleID, "signal=off"),
		RepeatableArg("serial", "chardev:"+consoleID),
		// Human monitor. QEMU connects to our socket as client.
		RepeatableArg("chardev", "socket", "id="+monitorID, "path="+monitorSocket),
		RepeatableArg("mon", "chardev="+monitorID, "mode=readline"),
		RepeatableArg("device", s.GraphicsDevice),
	)

	for _, device := range s.InputDevices {
		args = append(args, RepeatableArg("device", device))
	}

	args = append(args,
		// Render into the graphics device only, no window.
		UniqueArg("display", "none"),
		// Guest must not reboot.
		UniqueArg("no-reboot"),
		// Disable all default devices.
		UniqueArg("nodefaults"),
		// Do not load any user config files.
		UniqueArg("no-user-config"),
	)

	args = append(args, s.ExtraArgs...)

	if len(s.KernelCmdline) > 0 {
		cmdline := strings.Join(s.KernelCmdline, " ")
		args = append(args, UniqueArg("append", cmdline))
	}

	return args
}
