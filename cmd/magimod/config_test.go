// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/magimod/magimod/internal/config"
	"github.com/magimod/magimod/internal/issue"
)

func TestConfigShow(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Remote.PushDir = "/data/local/tmp"

	res := runCLI(t, &fakeChannel{}, cfg, "config", "show")
	if res.err != nil {
		t.Fatalf("config show failed: %v", res.err)
	}
	for _, want := range []string{"push_dir", "/data/local/tmp", "staging_base", "color_scheme"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout = %q, missing %q", res.stdout, want)
		}
	}
}

func TestConfigShow_LoadFailure(t *testing.T) {
	t.Parallel()

	loadErr := issue.NewErrorContext().
		WithOperation("load configuration").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(errors.New("bad syntax")).
		BuildError()

	res := runWithProvider(t, &fakeChannel{}, staticProvider{err: loadErr}, "config", "show")
	if res.err == nil {
		t.Fatal("config show should fail")
	}
	if got := issueOf(t, res.err); got != issue.ConfigLoadFailedId {
		t.Errorf("issue = %d, want %d", got, issue.ConfigLoadFailedId)
	}
}

func TestConfigDump(t *testing.T) {
	t.Parallel()

	res := runCLI(t, &fakeChannel{}, nil, "config", "dump")
	if res.err != nil {
		t.Fatalf("config dump failed: %v", res.err)
	}
	if res.stdout != config.GenerateCUE(config.DefaultConfig()) {
		t.Errorf("dump output differs from GenerateCUE:\n%s", res.stdout)
	}
}

func TestConfigInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.cue")

	res := runCLI(t, &fakeChannel{}, nil, "--config", path, "config", "init")
	if res.err != nil {
		t.Fatalf("config init failed: %v", res.err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if string(data) != config.GenerateCUE(config.DefaultConfig()) {
		t.Errorf("unexpected config content:\n%s", data)
	}

	if err := os.WriteFile(path, []byte("// edited\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res = runCLI(t, &fakeChannel{}, nil, "--config", path, "config", "init")
	if res.err != nil {
		t.Fatalf("config init on existing file failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "already exists") {
		t.Errorf("stdout = %q, want already-exists notice", res.stdout)
	}
	if got, _ := os.ReadFile(path); string(got) != "// edited\n" {
		t.Error("existing config was overwritten without --force")
	}

	res = runCLI(t, &fakeChannel{}, nil, "--config", path, "config", "init", "--force")
	if res.err != nil {
		t.Fatalf("config init --force failed: %v", res.err)
	}
	if got, _ := os.ReadFile(path); string(got) == "// edited\n" {
		t.Error("--force did not overwrite the config")
	}
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.cue")
	if err := os.WriteFile(path, []byte("ui: verbose: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := runCLI(t, &fakeChannel{}, nil, "--config", path, "config", "path")
	if res.err != nil {
		t.Fatalf("config path failed: %v", res.err)
	}
	if strings.TrimSpace(res.stdout) != path {
		t.Errorf("stdout = %q, want %q", res.stdout, path)
	}

	res = runCLI(t, &fakeChannel{}, nil, "--config", path+".missing", "config", "path")
	if res.err == nil {
		t.Fatal("config path should fail for a missing explicit file")
	}
}
