// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for magimod.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(app.handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "magimod",
		Short: "Scaffold, package and deploy Magisk modules",
		Long: TitleStyle.Render("magimod") + SubtitleStyle.Render(" - Scaffold, package and deploy Magisk modules") + `

magimod creates module projects, zips them, pushes the archive to a
rooted Android device over adb and stages it for install on the next boot.

` + SubtitleStyle.Render("Examples:") + `
  magimod new my_module            Create ./my_module
  magimod build my_module          Package ./my_module, deploy it and reboot
  magimod build my_module --no-push
                                   Only write ./my_module.zip
  magimod get-android-tree /system List files under /system on the device`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app.initialize(cmd.Context())
			return nil
		},
	}

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/magimod/config.cue)")

	rootCmd.AddCommand(
		newNewCommand(app),
		newBuildCommand(app),
		newDevicesCommand(app),
		newInfoCommand(app),
		newListDirectoriesCommand(app),
		newGetAndroidTreeCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}
