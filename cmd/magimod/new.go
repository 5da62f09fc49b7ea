// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/magimod/magimod/internal/issue"
	"github.com/magimod/magimod/internal/scaffold"
)

func newNewCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "new <name> [path]",
		Short: "Create a new module project",
		Long: `Create a new module project named <name> inside [path].

[path] defaults to the current directory and must already exist. The project
gets a module.prop, the lifecycle scripts, sepolicy.rule, system.prop and the
overlay directories.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := scaffold.CreateOptions{Name: args[0], Force: force}
			if len(args) > 1 {
				opts.ParentDir = args[1]
			}
			return runNew(app, opts)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "write into an existing project directory")

	return cmd
}

func runNew(app *App, opts scaffold.CreateOptions) error {
	fmt.Fprintln(app.stdout, TitleStyle.Render("Creating module "+opts.Name))

	var projectDir string
	opts.Progress = func(path string) {
		if projectDir == "" {
			projectDir = filepath.Dir(path)
		}
		rel, err := filepath.Rel(projectDir, path)
		if err != nil {
			rel = path
		}
		fmt.Fprintf(app.stdout, "  %s %s\n", SuccessStyle.Render("+"), rel)
	}

	dir, err := scaffold.Create(opts)
	if err != nil {
		return newScaffoldError(opts, err)
	}

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s Module created at %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(dir))
	fmt.Fprintf(app.stdout, "  Deploy it with: %s\n", CmdStyle.Render(buildHint(opts)))
	return nil
}

func buildHint(opts scaffold.CreateOptions) string {
	if opts.ParentDir == "" {
		return "magimod build " + opts.Name
	}
	return "magimod build " + opts.Name + " " + opts.ParentDir
}

func newScaffoldError(opts scaffold.CreateOptions, err error) error {
	ec := issue.NewErrorContext().
		WithOperation("create module").
		WithResource(opts.Name).
		Wrap(err)

	switch {
	case errors.Is(err, scaffold.ErrInvalidID):
		ec.WithIssue(issue.InvalidModuleIdId).
			WithSuggestion("Start with a letter and use only letters, digits, '.', '_' and '-'")
		return newServiceError(ec.BuildError(), issue.InvalidModuleIdId,
			ErrorStyle.Render("✗ Invalid module id "+opts.Name)+"\n")
	case errors.Is(err, scaffold.ErrProjectExists):
		ec.WithSuggestion("Pick another name, or pass --force to write into the existing directory")
	case errors.Is(err, fs.ErrNotExist):
		ec.WithIssue(issue.ProjectNotFoundId).
			WithSuggestion("Create the parent directory first")
		return newServiceError(ec.BuildError(), issue.ProjectNotFoundId, "")
	}
	return ec.BuildError()
}
