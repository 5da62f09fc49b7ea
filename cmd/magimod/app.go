// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"

	"github.com/magimod/magimod/internal/config"
	"github.com/magimod/magimod/internal/device"
	"github.com/magimod/magimod/internal/issue"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root
	// for the CLI layer: every Cobra handler receives an App and reaches the
	// configuration and the device through it.
	App struct {
		Config     ConfigProvider
		NewChannel ChannelFactory
		stdout     io.Writer
		stderr     io.Writer

		// Set from global flags and the loaded configuration before a
		// subcommand runs.
		verbose    bool
		configPath string
		cfg        *config.Config
		logger     *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		NewChannel ChannelFactory
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// ChannelFactory opens the channel to the connected device.
	ChannelFactory func(opts device.Options) device.Channel
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.NewChannel == nil {
		deps.NewChannel = func(opts device.Options) device.Channel {
			return device.NewADB(opts)
		}
	}

	return &App{
		Config:     deps.Config,
		NewChannel: deps.NewChannel,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
}

// initialize loads the configuration and builds the logger. A configuration
// that fails to load is reported and replaced by the defaults so commands
// that do not depend on it keep working.
func (a *App) initialize(ctx context.Context) {
	cfg, err := a.Config.Load(ctx, a.loadOptions())
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.verbose))
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg

	if !a.verbose {
		a.verbose = cfg.UI.Verbose
	}
	a.logger = newLogger(a.stderr, a.verbose)
}

// settings returns the loaded configuration, or the defaults before
// initialize has run.
func (a *App) settings() *config.Config {
	if a.cfg == nil {
		return config.DefaultConfig()
	}
	return a.cfg
}

func (a *App) log() *log.Logger {
	if a.logger == nil {
		a.logger = newLogger(a.stderr, a.verbose)
	}
	return a.logger
}

// channel opens the device channel configured by the adb settings.
func (a *App) channel() device.Channel {
	opts := a.settings().ADB.DeviceOptions()
	opts.Stdout = a.stdout
	opts.Stderr = a.stderr
	opts.Logger = a.log()
	return a.NewChannel(opts)
}

// glamourStyle maps the configured color scheme onto a glamour style name.
func (a *App) glamourStyle() string {
	switch a.settings().UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// handleError is the fang error handler. Errors already reported by a
// command arrive as an ExitError without a cause and print nothing.
func (a *App) handleError(w io.Writer, _ fang.Styles, err error) {
	a.renderError(w, err)
}

func (a *App) renderError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(w, svcErr, a.glamourStyle(), a.logger)
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: config.AppName})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// show their suggestions, and the full error chain in verbose mode.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
