// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package initramfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

// Archive writes the whole tree of fsys as CPIO archive into dst.
//
// Symbolic links are archived as links if fsys implements [ReadLinkFS].
// Other special files, like devices and sockets, are skipped.
func Archive(dst io.Writer, fsys fs.FS) error {
	writer := NewCPIOWriter(dst)

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path == "." {
			return nil
		}

		return writeEntry(writer, fsys, path, entry)
	})
	if err != nil {
		return errors.Join(fmt.Errorf("archive: %w", err), writer.Close())
	}

	return writer.Close()
}

func writeEntry(writer *CPIOWriter, fsys fs.FS, path string, entry fs.DirEntry) error {
	switch entry.Type() {
	case fs.ModeDir:
		info, err := entry.Info()
		if err != nil {
			return err //nolint:wrapcheck
		}

		return writer.WriteDirectory(path, info.Mode())
	case fs.ModeSymlink:
		target, err := ReadLink(fsys, path)
		if err != nil {
			return err
		}

		return writer.WriteLink(path, target)
	case 0:
		file, err := fsys.Open(path)
		if err != nil {
			return err //nolint:wrapcheck
		}
		defer file.Close()

		return writer.WriteRegular(path, file)
	default:
		slog.Debug("Skip special file",
			slog.String("path", path),
			slog.String("type", entry.Type().String()))

		return nil
	}
}

// WriteToTempFile writes the archive of fsys into a new file in dir. If dir is
// empty, [os.TempDir] is used. It is the caller's responsibility to remove the
// file when it is no longer needed.
func WriteToTempFile(dir string, fsys fs.FS) (string, error) {
	file, err := os.CreateTemp(dir, "kerntest-initramfs-*.cpio")
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	err = Archive(file, fsys)
	if err == nil {
		err = file.Close()
	} else {
		_ = file.Close()
	}

	if err != nil {
		_ = os.Remove(file.Name())
		return "", err
	}

	return file.Name(), nil
}
