// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// SkipWithoutPOSIXShell skips tests that rely on fake tools written as
// /bin/sh scripts.
func SkipWithoutPOSIXShell(t testing.TB) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools are POSIX shell scripts")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
}

// WriteFakeTool writes an executable /bin/sh script named name into dir and
// returns its path. body is the script without the shebang line.
func WriteFakeTool(t testing.TB, dir, name, body string) string {
	t.Helper()
	SkipWithoutPOSIXShell(t)

	MustMkdirAll(t, dir, 0o755)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("failed to write fake tool %s: %v", path, err)
	}
	return path
}
