// SPDX-FileCopyrightText: 2024 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "github.com/stretchr/testify/assert"

// ArgumentValuesAssertionFunc returns an [assert.ComparisonAssertionFunc] that
// can be used to assert the values of all Arguments with the given name, in
// the order they appear in the list.
func ArgumentValuesAssertionFunc(
	name string,
	assertion assert.ComparisonAssertionFunc,
) assert.ComparisonAssertionFunc {
	return func(t assert.TestingT, arg1, arg2 any, arg3 ...any) bool {
		args, ok := arg1.([]Argument)
		if !assert.True(t, ok, "first argument should be []Argument") {
			return false
		}

		var values []string

		for _, arg := range args {
			if name == arg.name {
				values = append(values, arg.value)
			}
		}

		return assertion(t, values, arg2, arg3...)
	}
}
