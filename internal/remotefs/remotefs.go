// SPDX-License-Identifier: MPL-2.0

// Package remotefs indexes the device's filesystem layout into a path trie.
package remotefs

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/magimod/magimod/internal/device"
	"github.com/magimod/magimod/internal/pathtrie"
)

const (
	// ScopeAll lists every entry on the root filesystem.
	ScopeAll Scope = iota
	// ScopeDirectories lists directories only.
	ScopeDirectories
)

type (
	// Scope selects which entries are indexed.
	Scope int

	// Option configures Index.
	Option func(*indexOptions)

	indexOptions struct {
		logger *log.Logger
	}
)

// WithLogger sets the logger that reports non-zero exits of the listing.
func WithLogger(l *log.Logger) Option {
	return func(o *indexOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Command is the remote listing command for the scope. -xdev keeps the
// walk on the root filesystem so /proc and /sys are not descended into.
func (s Scope) Command() string {
	if s == ScopeDirectories {
		return "find / -type d -xdev"
	}
	return "find / -xdev"
}

func (s Scope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeDirectories:
		return "directories"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Index runs the listing for scope on the device and builds a trie from its
// output. find exits non-zero when some entries are unreadable, which is
// normal on a device, so only a failure to run the command is an error.
func Index(ctx context.Context, ch device.Channel, scope Scope, opts ...Option) (*pathtrie.Node, error) {
	o := indexOptions{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}

	cmd := scope.Command()
	o.logger.Debug("indexing remote filesystem", "scope", scope, "cmd", cmd)

	out, code, err := ch.CapturePrivileged(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote files: %w", err)
	}
	if code != 0 {
		o.logger.Debug("remote listing incomplete", "exit", code)
	}

	root, err := pathtrie.Build(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to index remote files: %w", err)
	}
	o.logger.Debug("remote filesystem indexed", "entries", root.Count())
	return root, nil
}
