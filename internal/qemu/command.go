// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

const (
	// DefaultStartTimeout is the time QEMU may take until it connects to the
	// monitor socket.
	DefaultStartTimeout = 10 * time.Second

	// DefaultQuitTimeout is the time QEMU may take to exit after the quit
	// command, before it is killed.
	DefaultQuitTimeout = 5 * time.Second
)

const monitorSocketName = "monitor.sock"

// Command is a QEMU command that can be started as [Instance].
type Command struct {
	spec CommandSpec

	// ConsoleOutput receives a copy of all console lines, if set.
	ConsoleOutput io.Writer

	// Stderr receives the QEMU process' stderr, if set.
	Stderr io.Writer

	// Timeouts, see [DefaultStartTimeout], [DefaultMonitorTimeout] and
	// [DefaultQuitTimeout].
	StartTimeout   time.Duration
	MonitorTimeout time.Duration
	QuitTimeout    time.Duration
}

// NewCommand validates the given spec and creates a new [Command] from it.
func NewCommand(spec CommandSpec) (*Command, error) {
	err := spec.Validate()
	if err != nil {
		return nil, err
	}

	// Check argument collisions early. The socket path does not matter here.
	_, err = BuildArgumentStrings(spec.arguments(monitorSocketName))
	if err != nil {
		return nil, &ArgumentError{err.Error()}
	}

	return &Command{
		spec:           spec,
		StartTimeout:   DefaultStartTimeout,
		MonitorTimeout: DefaultMonitorTimeout,
		QuitTimeout:    DefaultQuitTimeout,
	}, nil
}

// String returns the command line with a placeholder monitor socket path.
func (c *Command) String() string {
	args, _ := BuildArgumentStrings(c.spec.arguments(monitorSocketName))
	return c.spec.Executable + " " + strings.Join(args, " ")
}

// Start starts the QEMU process and waits for its monitor to connect.
//
// The process is killed when the context is cancelled. The returned
// [Instance] must be closed by the caller.
func (c *Command) Start(ctx context.Context) (*Instance, error) {
	tempDir, err := os.MkdirTemp("", "kerntest-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}

	instance, err := c.start(ctx, tempDir)
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, err
	}

	return instance, nil
}

func (c *Command) start(ctx context.Context, tempDir string) (*Instance, error) {
	socketPath := filepath.Join(tempDir, monitorSocketName)

	listener, err := net.ListenUnix("unix", &net.UnixAddr{Name: socketPath, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("listen on monitor socket: %w", err)
	}
	defer listener.Close()

	// Built before, so it does not fail.
	args, _ := BuildArgumentStrings(c.spec.arguments(socketPath))

	cmd := exec.CommandContext(ctx, c.spec.Executable, args...)
	cmd.Stderr = c.Stderr
	// Do not leave the emulator behind if we die.
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: unix.SIGKILL}

	if c.spec.Verbose {
		slog.Info("Starting QEMU", slog.String("command", cmd.String()))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	err = cmd.Start()
	if err != nil {
		return nil, &CommandError{fmt.Errorf("start: %w", err)}
	}

	instance := &Instance{
		cmd:         cmd,
		console:     NewConsole(),
		exited:      make(chan struct{}),
		tempDir:     tempDir,
		quitTimeout: c.QuitTimeout,
	}

	instance.group.Go(func() error {
		defer close(instance.exited)
		return instance.run(c.ConsoleOutput, stdout)
	})

	conn, err := instance.acceptMonitor(listener, c.StartTimeout)
	if err != nil {
		_ = instance.kill()
		return nil, errors.Join(err, instance.group.Wait())
	}

	instance.monitor, err = NewMonitor(conn, c.MonitorTimeout)
	if err != nil {
		_ = conn.Close()
		_ = instance.kill()

		return nil, errors.Join(err, instance.group.Wait())
	}

	slog.Debug("QEMU started", slog.Int("pid", cmd.Process.Pid))

	return instance, nil
}

// Instance is a running QEMU process. It provides access to the guest's
// serial console and to the QEMU monitor.
type Instance struct {
	cmd         *exec.Cmd
	console     *Console
	monitor     *Monitor
	group       errgroup.Group
	exited      chan struct{}
	tempDir     string
	quitTimeout time.Duration
}

// run processes the console output until the process' stdout is closed and
// then waits for the process.
func (i *Instance) run(consoleOutput io.Writer, stdout io.Reader) error {
	consoleErr := i.console.Run(consoleOutput, stdout)
	if consoleErr != nil {
		// Keep the pipe drained, so the process does not block on output.
		_, _ = io.Copy(io.Discard, stdout)
		consoleErr = fmt.Errorf("console: %w", consoleErr)
	}

	err := i.cmd.Wait()
	if err != nil {
		err = &CommandError{fmt.Errorf("wait: %w", err)}
	}

	return errors.Join(consoleErr, err)
}

func (i *Instance) acceptMonitor(
	listener *net.UnixListener,
	timeout time.Duration,
) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}

	accepted := make(chan result, 1)

	go func() {
		conn, err := listener.Accept()
		accepted <- result{conn, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var err error

	select {
	case res := <-accepted:
		if res.err != nil {
			return nil, fmt.Errorf("accept monitor: %w", res.err)
		}

		return res.conn, nil
	case <-i.exited:
		err = &CommandError{ErrExited}
	case <-timer.C:
		err = &CommandError{ErrMonitorTimeout}
	}

	// Unblock the accepting goroutine.
	_ = listener.Close()

	if res := <-accepted; res.conn != nil {
		_ = res.conn.Close()
	}

	return nil, err
}

// NextLine returns the next console line. See [Console.NextLine].
func (i *Instance) NextLine(timeout time.Duration) (string, error) {
	return i.console.NextLine(timeout)
}

// SendKey sends a single key press.
func (i *Instance) SendKey(key string) error {
	return i.monitor.SendKey(key)
}

// SendCombo sends the keys pressed simultaneously.
func (i *Instance) SendCombo(keys []string) error {
	return i.monitor.SendKey(keys...)
}

// MovePointer moves the pointer relative to its current position.
func (i *Instance) MovePointer(dx, dy int) error {
	return i.monitor.MouseMove(dx, dy)
}

// SetButtons sets the state of all pointer buttons.
func (i *Instance) SetButtons(mask uint8) error {
	return i.monitor.MouseButton(mask)
}

// CaptureSnapshot writes the display content into the given file. Relative
// paths are relative to the working directory of the process.
func (i *Instance) CaptureSnapshot(filename string) error {
	return i.monitor.Screendump(filename)
}

// Close quits QEMU, waits for the process to exit and releases all resources.
// If QEMU does not exit in time, it is killed.
func (i *Instance) Close() error {
	defer os.RemoveAll(i.tempDir)

	select {
	case <-i.exited:
	default:
		err := i.monitor.Quit()
		if err != nil {
			slog.Debug("Quit failed", slog.Any("error", err))
		}
	}

	_ = i.monitor.Close()

	timer := time.NewTimer(i.quitTimeout)
	defer timer.Stop()

	select {
	case <-i.exited:
	case <-timer.C:
		slog.Warn("QEMU did not quit in time, killing it",
			slog.Int("pid", i.cmd.Process.Pid))

		_ = i.kill()
	}

	return i.group.Wait() //nolint:wrapcheck
}

func (i *Instance) kill() error {
	err := i.cmd.Process.Signal(unix.SIGKILL)
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill: %w", err)
	}

	return nil
}
