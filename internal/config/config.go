// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/magimod/magimod/internal/cueutil"
	"github.com/magimod/magimod/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "magimod"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. MAGIMOD_ADB_BINARY.
	EnvPrefix = "MAGIMOD"
)

// ErrConfigExists is returned by Init when the file exists and force is off.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the magimod configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, AppName), nil
}

// DefaultPath is the config file inside dir, or inside ConfigDir when dir
// is empty.
func DefaultPath(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

// ResolvePath returns the file Load would read, or "" when only defaults
// apply.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", configNotFound(opts.ConfigFilePath)
		}
		return opts.ConfigFilePath, nil
	}

	cuePath, err := DefaultPath(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if fileExists(cuePath) {
		return cuePath, nil
	}

	local := ConfigFileName + "." + ConfigFileExt
	if fileExists(local) {
		return local, nil
	}
	return "", nil
}

// loadWithOptions resolves, validates and decodes the configuration. It
// returns the file it read, or "" when only defaults and environment
// overrides apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'magimod config show' to see the effective configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Remote paths must be absolute, e.g. /sdcard").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, path, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("adb.binary", d.ADB.Binary)
	v.SetDefault("adb.fastboot_binary", d.ADB.FastbootBinary)
	v.SetDefault("adb.su_command", d.ADB.SuCommand)
	v.SetDefault("remote.push_dir", d.Remote.PushDir)
	v.SetDefault("remote.staging_base", d.Remote.StagingBase)
	v.SetDefault("remote.marker_name", d.Remote.MarkerName)
	v.SetDefault("build.no_clear", d.Build.NoClear)
	v.SetDefault("build.no_push", d.Build.NoPush)
	v.SetDefault("build.no_reboot", d.Build.NoReboot)
	v.SetDefault("build.ignore_adb", d.Build.IgnoreADB)
	v.SetDefault("ui.verbose", d.UI.Verbose)
	v.SetDefault("ui.color_scheme", string(d.UI.ColorScheme))
}

// loadCUEIntoViper validates the file against #Config and merges its values
// over the defaults already set on v.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var values map[string]any
	if err := cueutil.Decode(configSchema, "#Config", data, &values,
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	); err != nil {
		return err
	}

	if err := v.MergeConfigMap(values); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func configNotFound(path string) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Verify the file path is correct").
		WithSuggestion("Create one with 'magimod config init'").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(fmt.Errorf("config file not found: %w", fs.ErrNotExist)).
		BuildError()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Init writes cfg to path, creating parent directories. An existing file
// is only replaced when force is set.
func Init(path string, cfg *Config, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateCUE renders cfg as a config.cue document accepted by the schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// magimod configuration\n")
	sb.WriteString("// Unset fields fall back to built-in defaults.\n\n")

	sb.WriteString("adb: {\n")
	fmt.Fprintf(&sb, "\tbinary:          %q\n", cfg.ADB.Binary)
	fmt.Fprintf(&sb, "\tfastboot_binary: %q\n", cfg.ADB.FastbootBinary)
	fmt.Fprintf(&sb, "\tsu_command:      %q\n", cfg.ADB.SuCommand)
	sb.WriteString("}\n\n")

	sb.WriteString("remote: {\n")
	fmt.Fprintf(&sb, "\tpush_dir:     %q\n", cfg.Remote.PushDir)
	fmt.Fprintf(&sb, "\tstaging_base: %q\n", cfg.Remote.StagingBase)
	fmt.Fprintf(&sb, "\tmarker_name:  %q\n", cfg.Remote.MarkerName)
	sb.WriteString("}\n\n")

	sb.WriteString("build: {\n")
	fmt.Fprintf(&sb, "\tno_clear:   %v\n", cfg.Build.NoClear)
	fmt.Fprintf(&sb, "\tno_push:    %v\n", cfg.Build.NoPush)
	fmt.Fprintf(&sb, "\tno_reboot:  %v\n", cfg.Build.NoReboot)
	fmt.Fprintf(&sb, "\tignore_adb: %v\n", cfg.Build.IgnoreADB)
	sb.WriteString("}\n\n")

	sb.WriteString("ui: {\n")
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	scheme := cfg.UI.ColorScheme
	if scheme == "" {
		scheme = ColorSchemeAuto
	}
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", scheme)
	sb.WriteString("}\n")

	return sb.String()
}
