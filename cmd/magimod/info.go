// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/magimod/magimod/internal/issue"
	"github.com/magimod/magimod/internal/scaffold"
)

func newInfoCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "info [path]",
		Short: "Show the module.prop of a project",
		Long: `Show the module.prop of the project at [path] (default: the current
directory) and report problems with it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInfo(app, dir)
		},
	}
}

func runInfo(app *App, projectDir string) error {
	propPath := filepath.Join(projectDir, scaffold.PropFile)
	prop, err := scaffold.LoadModuleProp(propPath)
	if err != nil {
		ec := issue.NewErrorContext().
			WithOperation("read module descriptor").
			WithResource(propPath).
			Wrap(err)
		if errors.Is(err, fs.ErrNotExist) {
			ec.WithSuggestion("Run this inside a module project, or pass its path").
				WithIssue(issue.ProjectNotFoundId)
			return newServiceError(ec.BuildError(), issue.ProjectNotFoundId, "")
		}
		return ec.BuildError()
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render(prop.Name))
	fields := []struct{ key, value string }{
		{"id", prop.ID},
		{"version", prop.Version},
		{"versionCode", strconv.Itoa(prop.VersionCode)},
		{"author", prop.Author},
		{"description", prop.Description},
		{"minMagisk", strconv.Itoa(prop.MinMagisk)},
	}
	for _, f := range fields {
		fmt.Fprintf(app.stdout, "%s: %s\n", CmdStyle.Render(f.key), f.value)
	}

	if err := prop.Validate(); err != nil {
		fmt.Fprintln(app.stderr)
		for _, e := range unwrapJoined(err) {
			fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+e.Error())
		}
		return &ExitError{Code: 1}
	}
	return nil
}

// unwrapJoined splits an errors.Join result into its parts.
func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
