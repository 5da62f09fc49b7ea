// SPDX-License-Identifier: MPL-2.0

package remotefs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/magimod/magimod/internal/device"
	"github.com/magimod/magimod/internal/pathtrie"
)

type listingChannel struct {
	device.Channel // unused operations panic

	out      string
	code     int
	err      error
	commands []string
}

func (c *listingChannel) CapturePrivileged(_ context.Context, command string) ([]byte, int, error) {
	c.commands = append(c.commands, command)
	return []byte(c.out), c.code, c.err
}

func TestScope_Command(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scope Scope
		cmd   string
		name  string
	}{
		{ScopeAll, "find / -xdev", "all"},
		{ScopeDirectories, "find / -type d -xdev", "directories"},
	}

	for _, tt := range tests {
		if got := tt.scope.Command(); got != tt.cmd {
			t.Errorf("%v.Command() = %q, want %q", tt.scope, got, tt.cmd)
		}
		if got := tt.scope.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
	}
}

func TestIndex(t *testing.T) {
	t.Parallel()

	ch := &listingChannel{out: "/\n/system\n/system/bin\n/system/bin/sh\n/data\n"}
	root, err := Index(context.Background(), ch, ScopeAll)
	if err != nil {
		t.Fatalf("Index() failed: %v", err)
	}

	if len(ch.commands) != 1 || ch.commands[0] != "find / -xdev" {
		t.Errorf("commands = %q", ch.commands)
	}

	var buf bytes.Buffer
	if err := pathtrie.RenderAll(&buf, root); err != nil {
		t.Fatal(err)
	}
	if want := "data\nsystem\n  bin\n    sh\n"; buf.String() != want {
		t.Errorf("rendered =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestIndex_NonZeroExitKeepsListing(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})
	ch := &listingChannel{out: "/system\n/vendor\n", code: 1}

	root, err := Index(context.Background(), ch, ScopeDirectories, WithLogger(logger))
	if err != nil {
		t.Fatalf("Index() failed: %v", err)
	}
	if _, ok := root.Lookup("/vendor"); !ok {
		t.Error("partial listing should still be indexed")
	}
	if ch.commands[0] != "find / -type d -xdev" {
		t.Errorf("command = %q", ch.commands[0])
	}
	if !strings.Contains(logs.String(), "exit=1") {
		t.Errorf("non-zero exit not logged:\n%s", logs.String())
	}
}

func TestIndex_LaunchFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("adb not found")
	ch := &listingChannel{code: -1, err: boom}

	if _, err := Index(context.Background(), ch, ScopeAll); !errors.Is(err, boom) {
		t.Errorf("Index() error = %v, want %v", err, boom)
	}
}

func TestIndex_EmptyListing(t *testing.T) {
	t.Parallel()

	root, err := Index(context.Background(), &listingChannel{}, ScopeAll)
	if err != nil {
		t.Fatalf("Index() failed: %v", err)
	}
	if !root.IsLeaf() {
		t.Errorf("empty listing should produce an empty trie, got %d nodes", root.Count())
	}
}
