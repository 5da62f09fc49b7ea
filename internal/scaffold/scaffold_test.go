// SPDX-License-Identifier: MPL-2.0

package scaffold

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/magimod/magimod/internal/testutil"
)

func TestCreate(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	var progress []string

	projectDir, err := Create(CreateOptions{
		Name:      "demo",
		ParentDir: parent,
		Progress:  func(p string) { progress = append(progress, p) },
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if projectDir != filepath.Join(parent, "demo") {
		t.Errorf("Create() = %q", projectDir)
	}

	wantProp := "id=demo\nname=Put module name here\nversion=1.0\nversionCode=1\n" +
		"author=Your name\ndescription=Put module description here\nminMagisk=26000\n"
	if got := testutil.MustReadFile(t, filepath.Join(projectDir, PropFile)); got != wantProp {
		t.Errorf("module.prop =\n%s\nwant\n%s", got, wantProp)
	}

	for _, s := range Scripts {
		path := filepath.Join(projectDir, s)
		if got := testutil.MustReadFile(t, path); got != ScriptHeader {
			t.Errorf("%s = %q, want %q", s, got, ScriptHeader)
		}
		if runtime.GOOS != "windows" {
			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if info.Mode().Perm() != 0o755 {
				t.Errorf("%s mode = %o, want 755", s, info.Mode().Perm())
			}
		}
	}

	for _, f := range EmptyFiles {
		if got := testutil.MustReadFile(t, filepath.Join(projectDir, f)); got != "" {
			t.Errorf("%s should be empty, got %q", f, got)
		}
	}

	for _, d := range Dirs {
		info, err := os.Stat(filepath.Join(projectDir, d))
		if err != nil || !info.IsDir() {
			t.Errorf("%s should be a directory (err=%v)", d, err)
		}
	}

	if want := 1 + len(Scripts) + len(EmptyFiles) + len(Dirs); len(progress) != want {
		t.Errorf("progress reported %d entries, want %d", len(progress), want)
	}
}

func TestCreate_DefaultsToWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	defer testutil.MustChdir(t, dir)()

	projectDir, err := Create(CreateOptions{Name: "here"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "here", PropFile)); err != nil {
		t.Errorf("module.prop not created in working directory: %v (project %s)", err, projectDir)
	}
}

func TestCreate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, parent string) CreateOptions
		wantErr error
	}{
		{
			name: "invalid id",
			setup: func(t *testing.T, parent string) CreateOptions {
				return CreateOptions{Name: "1bad", ParentDir: parent}
			},
			wantErr: ErrInvalidID,
		},
		{
			name: "missing parent",
			setup: func(t *testing.T, parent string) CreateOptions {
				return CreateOptions{Name: "demo", ParentDir: filepath.Join(parent, "nope")}
			},
			wantErr: fs.ErrNotExist,
		},
		{
			name: "existing project",
			setup: func(t *testing.T, parent string) CreateOptions {
				testutil.MustMkdirAll(t, filepath.Join(parent, "demo"), 0o755)
				return CreateOptions{Name: "demo", ParentDir: parent}
			},
			wantErr: ErrProjectExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			parent := t.TempDir()
			_, err := Create(tt.setup(t, parent))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreate_ParentIsFile(t *testing.T) {
	t.Parallel()

	parent := filepath.Join(t.TempDir(), "file")
	testutil.MustWriteFile(t, parent, "x")

	if _, err := Create(CreateOptions{Name: "demo", ParentDir: parent}); err == nil {
		t.Error("Create() expected error when parent is a file")
	}
}

func TestCreate_ForceKeepsExistingFiles(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	projectDir := filepath.Join(parent, "demo")
	testutil.MustWriteFile(t, filepath.Join(projectDir, "system", "bin", "tool"), "keep")

	if _, err := Create(CreateOptions{Name: "demo", ParentDir: parent, Force: true}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if got := testutil.MustReadFile(t, filepath.Join(projectDir, "system", "bin", "tool")); got != "keep" {
		t.Errorf("existing file changed to %q", got)
	}
	if _, err := os.Stat(filepath.Join(projectDir, PropFile)); err != nil {
		t.Errorf("module.prop not written: %v", err)
	}
}

func TestCreate_FailureRemovesNewDirectory(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()
	projectDir := filepath.Join(parent, "demo")

	// A directory in place of a script makes WriteFile fail half way through.
	_, err := Create(CreateOptions{
		Name:      "demo",
		ParentDir: parent,
		Progress: func(p string) {
			if filepath.Base(p) == "service.sh" {
				_ = os.MkdirAll(p, 0o755)
			}
		},
	})
	if err == nil {
		t.Fatal("Create() expected error")
	}
	if _, err := os.Stat(projectDir); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("project directory should be removed after a failure, stat err = %v", err)
	}
}
