// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magimod/magimod/internal/device"
	"github.com/magimod/magimod/internal/issue"
)

func newDevicesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List connected adb and fastboot devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDevices(cmd.Context(), app)
		},
	}
}

func runDevices(ctx context.Context, app *App) error {
	devices, err := app.channel().ListDevices(ctx)
	if err != nil {
		return newToolNotFoundError(err)
	}

	if len(devices) == 0 {
		fmt.Fprintln(app.stdout, WarningStyle.Render("No device found."))
		return nil
	}

	for _, d := range devices {
		state := d.State
		if d.Ready() {
			state = SuccessStyle.Render(state)
		} else {
			state = WarningStyle.Render(state)
		}
		fmt.Fprintf(app.stdout, "%-24s %-9s %s\n", d.Serial, d.Transport, state)
	}
	return nil
}

func newToolNotFoundError(err error) error {
	if !errors.Is(err, device.ErrToolNotFound) {
		return err
	}
	return newServiceError(
		issue.NewErrorContext().
			WithOperation("list devices").
			WithSuggestion("Install the Android platform tools and make sure adb is on PATH").
			WithSuggestion("Or set adb.binary in the config").
			WithIssue(issue.ADBNotFoundId).
			Wrap(err).
			BuildError(),
		issue.ADBNotFoundId,
		ErrorStyle.Render("✗ adb and fastboot could not be started")+"\n",
	)
}
