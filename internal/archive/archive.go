// SPDX-License-Identifier: MPL-2.0

// Package archive packages a module directory into a single zip file.
//
// The archive mirrors the tree relative to its root with forward-slash
// paths, carries an explicit entry for every directory, stores file data
// uncompressed and marks every entry with Permission so the device's unzip
// produces executable scripts and traversable directories.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Permission is applied to every entry written by Write.
const Permission fs.FileMode = 0o755

// EntryWriter is the capability the builder needs from an archive codec.
type EntryWriter interface {
	// WriteDir adds a directory entry. name ends with "/".
	WriteDir(name string, mode fs.FileMode) error
	// WriteFile adds a file entry with the full content of r.
	WriteFile(name string, mode fs.FileMode, r io.Reader) error
	// Close finalizes the archive. No entries may be written afterwards.
	Close() error
}

// Write walks srcDir and adds every directory and regular file below it to
// ew. The root itself is not added. Any walk, read or write failure aborts
// the whole operation.
func Write(ew EntryWriter, srcDir string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		if relPath == "." {
			return nil
		}
		name := filepath.ToSlash(relPath)

		if d.IsDir() {
			if err := ew.WriteDir(name+"/", Permission); err != nil {
				return fmt.Errorf("failed to create directory entry %s: %w", name, err)
			}
			return nil
		}

		// Symlinks to regular files are archived by content.
		if !d.Type().IsRegular() {
			info, statErr := os.Stat(path)
			if statErr != nil || !info.Mode().IsRegular() {
				return fmt.Errorf("unsupported file type at %s: %s", name, d.Type())
			}
		}

		return writeFile(ew, name, path)
	})
}

func writeFile(ew EntryWriter, name, path string) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := ew.WriteFile(name, Permission, f); err != nil {
		return fmt.Errorf("failed to write entry %s: %w", name, err)
	}
	return nil
}

// Build archives srcDir into a new zip file at dstPath. The file is fully
// written and closed before Build returns. On failure the partial file is
// removed and the error returned.
func Build(srcDir, dstPath string) (err error) {
	info, err := os.Stat(srcDir)
	if err != nil {
		return fmt.Errorf("failed to access source directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source %s is not a directory", srcDir)
	}

	f, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dstPath) // Best-effort cleanup of the partial archive
		}
	}()

	ew := NewZipWriter(f)
	if err := Write(ew, srcDir); err != nil {
		return errors.Join(err, ew.Close(), f.Close())
	}
	if err := ew.Close(); err != nil {
		return errors.Join(fmt.Errorf("failed to finalize archive: %w", err), f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}
