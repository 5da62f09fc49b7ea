// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/magimod/magimod/internal/config"
	"github.com/magimod/magimod/internal/issue"
)

// newConfigCommand creates the `magimod config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage magimod configuration",
		Long: `Manage magimod configuration.

Configuration is read from the --config file, else from:
  - Linux: ~/.config/magimod/config.cue
  - macOS: ~/Library/Application Support/magimod/config.cue
  - Windows: %APPDATA%\magimod\config.cue
else from ./config.cue. Every key can be overridden with a MAGIMOD_
environment variable, e.g. MAGIMOD_ADB_BINARY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(app, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Config.Load(cmd.Context(), app.loadOptions())
			if err != nil {
				return newConfigError(err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: a.configPath}
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, app.loadOptions())
	if err != nil {
		return newConfigError(err)
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	w := app.stdout

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	path, err := config.ResolvePath(app.loadOptions())
	if err != nil || path == "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	}

	sections := []struct {
		name   string
		values [][2]string
	}{
		{"adb", [][2]string{
			{"binary", cfg.ADB.Binary},
			{"fastboot_binary", cfg.ADB.FastbootBinary},
			{"su_command", cfg.ADB.SuCommand},
		}},
		{"remote", [][2]string{
			{"push_dir", cfg.Remote.PushDir},
			{"staging_base", cfg.Remote.StagingBase},
			{"marker_name", cfg.Remote.MarkerName},
		}},
		{"build", [][2]string{
			{"no_clear", strconv.FormatBool(cfg.Build.NoClear)},
			{"no_push", strconv.FormatBool(cfg.Build.NoPush)},
			{"no_reboot", strconv.FormatBool(cfg.Build.NoReboot)},
			{"ignore_adb", strconv.FormatBool(cfg.Build.IgnoreADB)},
		}},
		{"ui", [][2]string{
			{"verbose", strconv.FormatBool(cfg.UI.Verbose)},
			{"color_scheme", cfg.UI.ColorScheme.String()},
		}},
	}
	for _, s := range sections {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s:\n", keyStyle.Render(s.name))
		for _, kv := range s.values {
			fmt.Fprintf(w, "  %s: %s\n", kv[0], valueStyle.Render(kv[1]))
		}
	}
	return nil
}

func initConfig(app *App, force bool) error {
	path := app.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(""); err != nil {
			return fmt.Errorf("failed to locate config directory: %w", err)
		}
	}

	if err := config.Init(path, config.DefaultConfig(), force); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			fmt.Fprintf(app.stdout, "Config file already exists at: %s\n", path)
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("Pass --force to overwrite it."))
			return nil
		}
		return err
	}

	fmt.Fprintf(app.stdout, "%s Created config file: %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath(app *App) error {
	path, err := config.ResolvePath(app.loadOptions())
	if err != nil {
		return newConfigError(err)
	}
	if path == "" {
		if path, err = config.DefaultPath(""); err != nil {
			return fmt.Errorf("failed to locate config directory: %w", err)
		}
		fmt.Fprintf(app.stdout, "%s %s\n", path, SubtitleStyle.Render("(not found, using defaults)"))
		return nil
	}
	fmt.Fprintln(app.stdout, path)
	return nil
}

func newConfigError(err error) error {
	return newServiceError(err, issue.ConfigLoadFailedId, "")
}
