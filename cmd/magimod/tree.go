// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magimod/magimod/internal/device"
	"github.com/magimod/magimod/internal/issue"
	"github.com/magimod/magimod/internal/pathtrie"
	"github.com/magimod/magimod/internal/remotefs"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

var errInvalidOutput = errors.New("invalid output format")

type treeOptions struct {
	scope   remotefs.Scope
	subPath string
	output  string
}

func newListDirectoriesCommand(app *App) *cobra.Command {
	opts := treeOptions{scope: remotefs.ScopeDirectories}

	cmd := &cobra.Command{
		Use:   "list-directories",
		Short: "Print the directory tree of the device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTree(cmd.Context(), app, opts)
		},
	}
	addOutputFlag(cmd, &opts.output)

	return cmd
}

func newGetAndroidTreeCommand(app *App) *cobra.Command {
	opts := treeOptions{scope: remotefs.ScopeAll}

	cmd := &cobra.Command{
		Use:   "get-android-tree [directory]",
		Short: "Print the file tree of the device",
		Long: `Print every file and directory on the device's root filesystem, or only
those below [directory]. When [directory] does not exist on the device the
whole tree is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.subPath = args[0]
			}
			return runTree(cmd.Context(), app, opts)
		},
	}
	addOutputFlag(cmd, &opts.output)

	return cmd
}

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", outputText, "output format (text, yaml)")
}

func runTree(ctx context.Context, app *App, opts treeOptions) error {
	if opts.output != outputText && opts.output != outputYAML {
		return fmt.Errorf("%w: %q (want %s or %s)", errInvalidOutput, opts.output, outputText, outputYAML)
	}

	ch := app.channel()
	warnIfNoDevice(ctx, app, ch)

	root, err := remotefs.Index(ctx, ch, opts.scope, remotefs.WithLogger(app.log()))
	if err != nil {
		return newServiceError(
			issue.NewErrorContext().
				WithOperation("list remote files").
				WithSuggestion("Check that the device is connected and rooted").
				WithIssue(issue.RemoteCommandFailedId).
				Wrap(err).
				BuildError(),
			issue.RemoteCommandFailedId,
			"",
		)
	}

	found := true
	switch {
	case opts.output == outputYAML:
		var node *pathtrie.Node
		node, found = pathtrie.Resolve(root, opts.subPath)
		err = pathtrie.WriteYAML(app.stdout, node)
	case opts.subPath != "":
		found, err = pathtrie.RenderSubtree(app.stdout, root, opts.subPath)
	default:
		err = pathtrie.RenderAll(app.stdout, root)
	}
	if err != nil {
		return fmt.Errorf("failed to write tree: %w", err)
	}

	if !found {
		fmt.Fprintf(app.stderr, "%s %s not found on the device, printed the whole tree\n",
			WarningStyle.Render("Warning:"), opts.subPath)
	}
	return nil
}

// warnIfNoDevice only warns: the listing is still attempted.
func warnIfNoDevice(ctx context.Context, app *App, ch device.Channel) {
	devices, err := ch.ListDevices(ctx)
	if err != nil {
		app.log().Debug("device listing failed", "error", err)
	}
	if !device.AnyReady(devices) {
		fmt.Fprintln(app.stderr, WarningStyle.Render("No device found."))
	}
}
