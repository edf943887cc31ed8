// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aibor/kerntest/internal/sys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsolutePath(t *testing.T) {
	_, err := sys.AbsolutePath("")
	require.ErrorIs(t, err, sys.ErrEmptyPath)

	wd, err := os.Getwd()
	require.NoError(t, err)

	path, err := sys.AbsolutePath("kernel.elf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "kernel.elf"), path)
}

func TestValidatePaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kernel.elf")
	require.NoError(t, os.WriteFile(file, []byte("elf"), 0o600))

	require.NoError(t, sys.ValidateFilePath(file))
	require.ErrorIs(t, sys.ValidateFilePath(dir), sys.ErrNotRegularFile)
	require.ErrorIs(t, sys.ValidateFilePath(filepath.Join(dir, "missing")),
		os.ErrNotExist)

	require.NoError(t, sys.ValidateDirPath(dir))
	require.ErrorIs(t, sys.ValidateDirPath(file), sys.ErrNotDirectory)
}
