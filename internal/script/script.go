// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultWaitTimeout is used for wait steps without timeout.
const DefaultWaitTimeout = 10 * time.Second

// Action names.
const (
	ActionWait     = "wait"
	ActionIdle     = "idle"
	ActionType     = "type"
	ActionKey      = "key"
	ActionCombo    = "combo"
	ActionMove     = "move"
	ActionPress    = "press"
	ActionRelease  = "release"
	ActionSnapshot = "snapshot"
)

// Script is a named list of steps.
type Script struct {
	// Name of the test. Used for snapshot file names.
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Position is an absolute pointer position.
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Step is a single step of a [Script]. Exactly one of the action fields must
// be set.
type Step struct {
	// Wait for a console line matching the regular expression.
	Wait *string `yaml:"wait"`
	// Wait for the guest to become idle within the duration.
	Idle *Duration `yaml:"idle"`
	// Type the text.
	Type *string `yaml:"type"`
	// Press the named key.
	Key *string `yaml:"key"`
	// Press the named keys simultaneously.
	Combo []string `yaml:"combo"`
	// Move the pointer to the absolute position.
	Move *Position `yaml:"move"`
	// Press the pointer button.
	Press *int `yaml:"press"`
	// Release the pointer button.
	Release *int `yaml:"release"`
	// Take a snapshot with the tag.
	Snapshot *string `yaml:"snapshot"`

	// Timeout for wait. Defaults to [DefaultWaitTimeout].
	Timeout Duration `yaml:"timeout"`
	// Label of the step. A wait or idle step with label is logged as passed
	// step.
	Label string `yaml:"step"`
	// Do not fail if a wait or idle step times out.
	Optional bool `yaml:"optional"`
}

// Action returns the name of the step's action. If more than one action is
// set, the first one is returned.
func (s *Step) Action() string {
	actions := s.actions()
	if len(actions) == 0 {
		return ""
	}

	return actions[0]
}

func (s *Step) actions() []string {
	var actions []string

	add := func(set bool, name string) {
		if set {
			actions = append(actions, name)
		}
	}

	add(s.Wait != nil, ActionWait)
	add(s.Idle != nil, ActionIdle)
	add(s.Type != nil, ActionType)
	add(s.Key != nil, ActionKey)
	add(s.Combo != nil, ActionCombo)
	add(s.Move != nil, ActionMove)
	add(s.Press != nil, ActionPress)
	add(s.Release != nil, ActionRelease)
	add(s.Snapshot != nil, ActionSnapshot)

	return actions
}

func (s *Step) validate() error {
	actions := s.actions()

	switch len(actions) {
	case 0:
		return ErrNoAction
	case 1:
	default:
		return fmt.Errorf("%w: %s", ErrMultipleActions, strings.Join(actions, ", "))
	}

	if s.Combo != nil && len(s.Combo) == 0 {
		return errors.New("combo has no keys")
	}

	return nil
}

// Parse reads a [Script] from r. If the script has no name, defaultName is
// used.
func Parse(r io.Reader, defaultName string) (*Script, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var script Script

	err := decoder.Decode(&script)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrNoSteps
		}

		return nil, &ParseError{Source: defaultName, Err: err}
	}

	if script.Name == "" {
		script.Name = defaultName
	}

	if len(script.Steps) == 0 {
		return nil, &ParseError{Source: script.Name, Err: ErrNoSteps}
	}

	for idx := range script.Steps {
		err := script.Steps[idx].validate()
		if err != nil {
			return nil, &ParseError{
				Source: script.Name,
				Err:    fmt.Errorf("step %d: %w", idx+1, err),
			}
		}
	}

	return &script, nil
}

// ParseFile reads the [Script] from the file at path. The default name is the
// file's base name without extension.
func ParseFile(path string) (*Script, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return Parse(file, name)
}
