// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"
)

const monitorPrompt = "(qemu) "

// DefaultMonitorTimeout is the time a monitor command may take until QEMU
// prints the next prompt.
const DefaultMonitorTimeout = 10 * time.Second

// Monitor is a client for the QEMU human monitor in readline mode.
//
// Each command is sent and the response is read up to the next prompt, so
// commands are strictly sequential. A Monitor is not safe for concurrent use.
type Monitor struct {
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// NewMonitor creates a new [Monitor] on the given connection. It consumes the
// greeting QEMU prints on connect.
func NewMonitor(conn net.Conn, timeout time.Duration) (*Monitor, error) {
	monitor := &Monitor{
		conn:    conn,
		reader:  bufio.NewReader(conn),
		timeout: timeout,
	}

	err := conn.SetReadDeadline(time.Now().Add(timeout))
	if err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	_, err = monitor.readPrompt()
	if err != nil {
		return nil, &MonitorError{Command: "connect", Err: err}
	}

	return monitor, nil
}

// Execute sends the command and returns the response QEMU printed for it,
// without the echoed command line and the prompt.
func (m *Monitor) Execute(command string) (string, error) {
	err := m.conn.SetDeadline(time.Now().Add(m.timeout))
	if err != nil {
		return "", &MonitorError{Command: command, Err: err}
	}

	_, err = io.WriteString(m.conn, command+"\n")
	if err != nil {
		return "", &MonitorError{Command: command, Err: err}
	}

	raw, err := m.readPrompt()
	if err != nil {
		return "", &MonitorError{Command: command, Err: err}
	}

	response := parseResponse(command, raw)

	slog.Debug("Monitor command",
		slog.String("command", command),
		slog.String("response", response))

	return response, nil
}

// run executes a command that is expected to print nothing on success.
func (m *Monitor) run(command string) error {
	response, err := m.Execute(command)
	if err != nil {
		return err
	}

	if response != "" {
		return &MonitorError{Command: command, Response: response}
	}

	return nil
}

// SendKey presses the given keys simultaneously.
func (m *Monitor) SendKey(keys ...string) error {
	return m.run("sendkey " + strings.Join(keys, "-"))
}

// MouseMove moves the pointer relative to its current position.
func (m *Monitor) MouseMove(dx, dy int) error {
	return m.run(fmt.Sprintf("mouse_move %d %d", dx, dy))
}

// MouseButton sets the state of all pointer buttons.
func (m *Monitor) MouseButton(mask uint8) error {
	return m.run("mouse_button " + strconv.Itoa(int(mask)))
}

// Screendump writes the display content into the given file. The file name is
// quoted, so it may contain spaces.
func (m *Monitor) Screendump(filename string) error {
	return m.run("screendump " + quoteArg(filename))
}

// Quit terminates QEMU. There is no response to wait for.
func (m *Monitor) Quit() error {
	err := m.conn.SetWriteDeadline(time.Now().Add(m.timeout))
	if err != nil {
		return &MonitorError{Command: "quit", Err: err}
	}

	_, err = io.WriteString(m.conn, "quit\n")
	if err != nil {
		return &MonitorError{Command: "quit", Err: err}
	}

	return nil
}

// Close closes the connection.
func (m *Monitor) Close() error {
	return m.conn.Close() //nolint:wrapcheck
}

// readPrompt reads until the next prompt and returns all data before it.
func (m *Monitor) readPrompt() (string, error) {
	var buf bytes.Buffer

	for {
		b, err := m.reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf.String(), fmt.Errorf("%w: %w", ErrNoPrompt, ErrExited)
			}

			return buf.String(), fmt.Errorf("read: %w", err)
		}

		buf.WriteByte(b)

		if bytes.HasSuffix(buf.Bytes(), []byte(monitorPrompt)) {
			buf.Truncate(buf.Len() - len(monitorPrompt))
			return buf.String(), nil
		}
	}
}

// parseResponse strips terminal control sequences and the line echoing the
// command from the raw monitor output.
func parseResponse(command, raw string) string {
	text := strings.ReplaceAll(ansi.Strip(raw), "\r", "")

	lines := make([]string, 0, 1)

	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, command) {
			continue
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

var argQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quoteArg quotes a string argument the way the monitor's argument parser
// unquotes it.
func quoteArg(arg string) string {
	return `"` + argQuoter.Replace(arg) + `"`
}
