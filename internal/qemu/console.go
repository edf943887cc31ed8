// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"time"
)

// MaxLineSize is the maximum length of a console line. Longer lines end the
// console with [bufio.ErrTooLong].
const MaxLineSize = 1 << 20

// Console queues the lines of the guest's serial console until they are
// consumed with [Console.NextLine].
//
// The queue is unbounded, so a slow consumer never stalls the guest.
type Console struct {
	mu     sync.Mutex
	lines  []string
	notify chan struct{}
	done   chan struct{}
}

// NewConsole creates a new empty [Console].
func NewConsole() *Console {
	return &Console{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Run reads lines from src until it is exhausted and queues them. If dst is
// not nil, each line is written to it as well. Carriage returns are removed.
//
// Once Run returns, [Console.NextLine] returns [io.EOF] after all queued lines
// are consumed. Run must be called only once.
func (c *Console) Run(dst io.Writer, src io.Reader) error {
	defer close(c.done)

	// Carriage returns are removed by [bufio.ScanLines].
	scanner := bufio.NewScanner(src)
	scanner.Buffer(nil, MaxLineSize)

	for scanner.Scan() {
		line := scanner.Text()

		c.mu.Lock()
		c.lines = append(c.lines, line)
		c.mu.Unlock()

		select {
		case c.notify <- struct{}{}:
		default:
		}

		err := writeLn(dst, scanner.Bytes())
		if err != nil {
			return err
		}
	}

	err := scanner.Err()
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	return nil
}

// NextLine returns the next queued line.
//
// It waits up to timeout for a line to arrive and returns an empty string if
// none did. It returns [io.EOF] if the source is exhausted and all lines have
// been consumed.
func (c *Console) NextLine(timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		line, ok := c.pop()
		if ok {
			return line, nil
		}

		select {
		case <-c.done:
			// Lines might have been queued right before the end.
			line, ok := c.pop()
			if ok {
				return line, nil
			}

			return "", io.EOF
		case <-c.notify:
		case <-timer.C:
			return "", nil
		}
	}
}

func (c *Console) pop() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.lines) == 0 {
		return "", false
	}

	line := c.lines[0]
	c.lines = c.lines[1:]

	return line, true
}

func writeLn(dst io.Writer, data []byte) error {
	// If the caller did not pass any output writer, discard it.
	if dst == nil {
		return nil
	}

	_, err := dst.Write(data)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	_, err = dst.Write([]byte("\n"))
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}

	return nil
}
