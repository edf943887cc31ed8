// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package script

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a [time.Duration] that is written as duration string in YAML,
// like "1.5s" or "2m".
type Duration time.Duration

// UnmarshalYAML implements [yaml.Unmarshaler].
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var str string

	err := value.Decode(&str)
	if err != nil {
		return err //nolint:wrapcheck
	}

	parsed, err := time.ParseDuration(str)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	if parsed < 0 {
		return fmt.Errorf("line %d: negative duration %s", value.Line, str)
	}

	*d = Duration(parsed)

	return nil
}
