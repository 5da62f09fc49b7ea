// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/magimod/magimod/internal/deploy"
	"github.com/magimod/magimod/internal/device"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidRemotePath is returned for remote paths that are not absolute.
	ErrInvalidRemotePath = errors.New("invalid remote path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidRemotePathError is returned when a remote path is not absolute.
	InvalidRemotePathError struct {
		Field string
		Value string
	}

	// InvalidConfigError collects every field-level problem of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		ADB    ADBConfig    `json:"adb" mapstructure:"adb"`
		Remote RemoteConfig `json:"remote" mapstructure:"remote"`
		Build  BuildConfig  `json:"build" mapstructure:"build"`
		UI     UIConfig     `json:"ui" mapstructure:"ui"`
	}

	// ADBConfig locates the host tools and the root wrapper on the device.
	ADBConfig struct {
		Binary         string `json:"binary" mapstructure:"binary"`
		FastbootBinary string `json:"fastboot_binary" mapstructure:"fastboot_binary"`
		SuCommand      string `json:"su_command" mapstructure:"su_command"`
	}

	// RemoteConfig holds the paths used on the device.
	RemoteConfig struct {
		PushDir     string `json:"push_dir" mapstructure:"push_dir"`
		StagingBase string `json:"staging_base" mapstructure:"staging_base"`
		MarkerName  string `json:"marker_name" mapstructure:"marker_name"`
	}

	// BuildConfig holds the defaults of the build command's flags.
	BuildConfig struct {
		NoClear   bool `json:"no_clear" mapstructure:"no_clear"`
		NoPush    bool `json:"no_push" mapstructure:"no_push"`
		NoReboot  bool `json:"no_reboot" mapstructure:"no_reboot"`
		IgnoreADB bool `json:"ignore_adb" mapstructure:"ignore_adb"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		Verbose     bool        `json:"verbose" mapstructure:"verbose"`
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
	}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ADB: ADBConfig{
			Binary:         device.DefaultADBBinary,
			FastbootBinary: device.DefaultFastbootBinary,
			SuCommand:      device.DefaultSuCommand,
		},
		Remote: RemoteConfig{
			PushDir:     deploy.DefaultPushDir,
			StagingBase: deploy.DefaultStagingBase,
			MarkerName:  deploy.DefaultMarkerName,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
		},
	}
}

// Layout converts the remote settings for the deploy pipeline.
func (c RemoteConfig) Layout() deploy.Layout {
	return deploy.Layout{
		PushDir:     c.PushDir,
		StagingBase: c.StagingBase,
		MarkerName:  c.MarkerName,
	}
}

// DeviceOptions converts the adb settings for the device channel.
func (c ADBConfig) DeviceOptions() device.Options {
	return device.Options{
		ADBBinary:      c.Binary,
		FastbootBinary: c.FastbootBinary,
		SuCommand:      c.SuCommand,
	}
}

// IsValid returns whether the Config is valid, and all field errors if not.
// It catches values set programmatically or through SetDefault that the
// CUE schema never saw.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if c.Remote.PushDir != "" && !strings.HasPrefix(c.Remote.PushDir, "/") {
		errs = append(errs, &InvalidRemotePathError{Field: "remote.push_dir", Value: c.Remote.PushDir})
	}
	if c.Remote.StagingBase != "" && !strings.HasPrefix(c.Remote.StagingBase, "/") {
		errs = append(errs, &InvalidRemotePathError{Field: "remote.staging_base", Value: c.Remote.StagingBase})
	}
	if strings.Contains(c.Remote.MarkerName, "/") {
		errs = append(errs, &InvalidRemotePathError{Field: "remote.marker_name", Value: c.Remote.MarkerName})
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("%d invalid field(s): %v", len(e.FieldErrors), errors.Join(e.FieldErrors...))
}

func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

func (e *InvalidRemotePathError) Error() string {
	if e.Field == "remote.marker_name" {
		return fmt.Sprintf("%s %q must be a plain file name", e.Field, e.Value)
	}
	return fmt.Sprintf("%s %q must be an absolute path", e.Field, e.Value)
}

func (e *InvalidRemotePathError) Unwrap() error { return ErrInvalidRemotePath }

func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined schemes.
// The empty value is accepted and behaves like ColorSchemeAuto.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case "", ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }
