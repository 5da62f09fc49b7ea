// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/magimod/magimod/internal/config"
	"github.com/magimod/magimod/internal/deploy"
	"github.com/magimod/magimod/internal/device"
	"github.com/magimod/magimod/internal/issue"
	"github.com/magimod/magimod/internal/scaffold"
)

type buildOptions struct {
	name      string
	parentDir string
	noClear   bool
	noPush    bool
	noReboot  bool
	ignoreADB bool
}

func newBuildCommand(app *App) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build <name> [path]",
		Short: "Package a module and deploy it to the device",
		Long: `Package the project <name> found inside [path] into <name>.zip, push it to
the device, stage it for install and reboot.

[path] is the directory that contains the project and defaults to the
current directory. The archive is written next to the project. Flags that
are not given take their defaults from the build section of the config.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.name = args[0]
			opts.parentDir = "."
			if len(args) > 1 {
				opts.parentDir = args[1]
			}
			applyBuildDefaults(cmd, app.settings().Build, &opts)
			return runBuild(cmd.Context(), app, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noClear, "no-clear", false, "keep the local archive after deploying")
	cmd.Flags().BoolVar(&opts.noPush, "no-push", false, "only build the archive")
	cmd.Flags().BoolVar(&opts.noReboot, "no-reboot", false, "stage the module without rebooting the device")
	cmd.Flags().BoolVar(&opts.ignoreADB, "ignore-adb", false, "continue when no device is connected")

	return cmd
}

// applyBuildDefaults fills flags the user did not set from the config.
func applyBuildDefaults(cmd *cobra.Command, defaults config.BuildConfig, opts *buildOptions) {
	flags := cmd.Flags()
	if !flags.Changed("no-clear") {
		opts.noClear = defaults.NoClear
	}
	if !flags.Changed("no-push") {
		opts.noPush = defaults.NoPush
	}
	if !flags.Changed("no-reboot") {
		opts.noReboot = defaults.NoReboot
	}
	if !flags.Changed("ignore-adb") {
		opts.ignoreADB = defaults.IgnoreADB
	}
}

func runBuild(ctx context.Context, app *App, opts buildOptions) error {
	job := deploy.Job{
		Name:         opts.name,
		ProjectDir:   filepath.Join(opts.parentDir, opts.name),
		ArchiveDir:   opts.parentDir,
		NoClear:      opts.noClear,
		NoPush:       opts.noPush,
		NoReboot:     opts.noReboot,
		IgnoreDevice: opts.ignoreADB,
	}

	if err := job.Validate(); err != nil {
		return newServiceError(
			issue.NewErrorContext().
				WithOperation("build module").
				WithResource(opts.name).
				WithSuggestion("The module name must not contain path separators or whitespace").
				WithIssue(issue.InvalidModuleIdId).
				Wrap(err).
				BuildError(),
			issue.InvalidModuleIdId,
			ErrorStyle.Render("✗ Invalid module name "+opts.name)+"\n",
		)
	}

	if err := checkProjectDir(opts.parentDir, job.ProjectDir); err != nil {
		return err
	}
	checkModuleProp(app, job)

	fmt.Fprintln(app.stdout, TitleStyle.Render("Building module "+opts.name))

	pipeline := deploy.New(app.channel(),
		deploy.WithLayout(app.settings().Remote.Layout()),
		deploy.WithLogger(app.log()),
	)

	result, err := pipeline.Run(ctx, job)
	if err != nil {
		return newDeployError(job, err)
	}

	switch {
	case job.NoPush:
		fmt.Fprintf(app.stdout, "%s Archive written to %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(result.ArchivePath))
	case job.NoReboot:
		fmt.Fprintf(app.stdout, "%s Module staged in %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(result.StagingDir))
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("  Reboot the device to install it."))
	default:
		fmt.Fprintf(app.stdout, "%s Module %s deployed, device is rebooting\n", SuccessStyle.Render("✓"), CmdStyle.Render(job.Name))
	}
	if result.CleanupErr != nil {
		fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+"could not remove "+result.ArchivePath)
	}
	return nil
}

// checkProjectDir verifies that both the containing directory and the
// project directory exist.
func checkProjectDir(parentDir, projectDir string) error {
	for _, dir := range []string{parentDir, projectDir} {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			continue
		}
		if err == nil {
			err = fmt.Errorf("%s is not a directory", dir)
		}
		return newServiceError(
			issue.NewErrorContext().
				WithOperation("find module project").
				WithResource(dir).
				WithSuggestion("Pass the directory that contains the project as [path]").
				WithSuggestion("Create a project with 'magimod new <name>'").
				WithIssue(issue.ProjectNotFoundId).
				Wrap(err).
				BuildError(),
			issue.ProjectNotFoundId,
			ErrorStyle.Render("✗ Module project not found: "+projectDir)+"\n",
		)
	}
	return nil
}

// checkModuleProp warns about a module.prop that is unreadable or whose id
// differs from the name being built. A missing file is not an error.
func checkModuleProp(app *App, job deploy.Job) {
	propPath := filepath.Join(job.ProjectDir, scaffold.PropFile)
	prop, err := scaffold.LoadModuleProp(propPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		app.log().Debug("no module.prop", "path", propPath)
	case err != nil:
		fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+err.Error())
	case prop.ID != job.Name:
		fmt.Fprintf(app.stderr, "%s module.prop id %q does not match module name %q\n",
			WarningStyle.Render("Warning:"), prop.ID, job.Name)
	}
}

// newDeployError maps a failed stage to its catalog entry.
func newDeployError(job deploy.Job, err error) error {
	var stageErr *deploy.StageError
	if !errors.As(err, &stageErr) {
		return err
	}

	ec := issue.NewErrorContext().
		WithOperation("deploy module").
		WithResource(job.Name).
		Wrap(err)

	var id issue.Id
	switch {
	case errors.Is(err, context.Canceled):
	case errors.Is(err, device.ErrToolNotFound):
		id = issue.ADBNotFoundId
		ec.WithSuggestion("Install the Android platform tools and make sure adb is on PATH").
			WithSuggestion("Or set adb.binary in the config")
	case stageErr.Stage == deploy.StageConnectivity:
		id = issue.NoDeviceFoundId
		ec.WithSuggestion("Connect a device with USB debugging enabled").
			WithSuggestion("Pass --ignore-adb to build the archive anyway")
	case stageErr.Stage == deploy.StageArchive:
		id = issue.ArchiveFailedId
		ec.WithSuggestion("Check that the project directory is readable and the disk is not full")
	default:
		id = issue.RemoteCommandFailedId
		ec.WithSuggestion("Check that the device is rooted and grants su to the shell").
			WithSuggestion("Run again with --verbose to see the remote commands")
	}
	if id != 0 {
		ec.WithIssue(id)
	}

	styled := ErrorStyle.Render(fmt.Sprintf("✗ Deployment failed at the %s stage", stageErr.Stage)) + "\n"
	return newServiceError(ec.BuildError(), id, styled)
}
