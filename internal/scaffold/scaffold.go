// SPDX-License-Identifier: MPL-2.0

// Package scaffold creates new module projects and reads their descriptor.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ScriptHeader is the content of every generated shell script.
const ScriptHeader = "#!/system/bin/sh\n"

var (
	// ErrProjectExists is returned when the target directory already exists
	// and CreateOptions.Force is not set.
	ErrProjectExists = errors.New("project directory already exists")

	// Scripts are the lifecycle hooks run by the module manager.
	Scripts = []string{"customize.sh", "post-fs-data.sh", "service.sh", "uninstall.sh"}

	// EmptyFiles are created with no content.
	EmptyFiles = []string{"sepolicy.rule", "system.prop"}

	// Dirs are the overlay and hook directories of a project.
	Dirs = []string{"post-fs-data.d", "service.d", "system", "vendor", "product", "system_ext"}
)

type (
	// CreateOptions configures Create.
	CreateOptions struct {
		// Name is the module id and the project directory name.
		Name string
		// ParentDir holds the new project. Empty means the current directory;
		// otherwise it must already exist.
		ParentDir string
		// Force allows writing into an existing project directory.
		Force bool
		// Progress, if set, is called with the path of each created entry.
		Progress func(path string)
	}

	projectFile struct {
		name    string
		content []byte
		mode    fs.FileMode
	}
)

// Create lays out a new module project and returns its path. If creation
// fails, a directory created by this call is removed again.
func Create(opts CreateOptions) (string, error) {
	if err := ValidateID(opts.Name); err != nil {
		return "", err
	}

	parentDir := opts.ParentDir
	if parentDir == "" {
		var err error
		if parentDir, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	info, err := os.Stat(parentDir)
	if err != nil {
		return "", fmt.Errorf("parent directory %s: %w", parentDir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("parent directory %s is not a directory", parentDir)
	}

	projectDir := filepath.Join(parentDir, opts.Name)
	created := false
	switch _, err := os.Stat(projectDir); {
	case err == nil:
		if !opts.Force {
			return "", fmt.Errorf("%w: %s", ErrProjectExists, projectDir)
		}
	case errors.Is(err, fs.ErrNotExist):
		created = true
	default:
		return "", fmt.Errorf("failed to check %s: %w", projectDir, err)
	}

	progress := opts.Progress
	if progress == nil {
		progress = func(string) {}
	}

	if err := populate(projectDir, opts.Name, progress); err != nil {
		if created {
			_ = os.RemoveAll(projectDir) // best-effort cleanup on error path
		}
		return "", err
	}
	return projectDir, nil
}

func populate(projectDir, id string, progress func(string)) error {
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	var prop bytes.Buffer
	mp := DefaultModuleProp(id)
	if _, err := mp.WriteTo(&prop); err != nil {
		return err
	}

	files := []projectFile{{PropFile, prop.Bytes(), 0o644}}
	for _, s := range Scripts {
		files = append(files, projectFile{s, []byte(ScriptHeader), 0o755})
	}
	for _, f := range EmptyFiles {
		files = append(files, projectFile{f, nil, 0o644})
	}

	for _, f := range files {
		path := filepath.Join(projectDir, f.name)
		progress(path)
		if err := os.WriteFile(path, f.content, f.mode); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.name, err)
		}
		// WriteFile leaves the mode of an existing file alone.
		if err := os.Chmod(path, f.mode); err != nil {
			return fmt.Errorf("failed to set mode of %s: %w", f.name, err)
		}
	}

	for _, d := range Dirs {
		path := filepath.Join(projectDir, d)
		progress(path)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", d, err)
		}
	}
	return nil
}
