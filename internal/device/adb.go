// SPDX-License-Identifier: MPL-2.0

package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/charmbracelet/log"
)

const (
	// DefaultADBBinary is looked up in PATH when no binary is configured.
	DefaultADBBinary = "adb"
	// DefaultFastbootBinary is looked up in PATH when no binary is configured.
	DefaultFastbootBinary = "fastboot"
	// DefaultSuCommand wraps remote commands to run them as root.
	DefaultSuCommand = "su -c"
)

// ErrToolNotFound is returned when neither adb nor fastboot can be launched.
var ErrToolNotFound = errors.New("no device tool could be started")

type (
	// Options configures an ADB channel. Zero values fall back to defaults.
	Options struct {
		ADBBinary      string
		FastbootBinary string
		SuCommand      string
		// Stdout and Stderr receive the output of non-captured commands.
		Stdout io.Writer
		Stderr io.Writer
		Logger *log.Logger
	}

	// ADB is a Channel backed by the adb and fastboot command-line tools.
	ADB struct {
		adb      string
		fastboot string
		su       string
		stdout   io.Writer
		stderr   io.Writer
		logger   *log.Logger
	}
)

// NewADB creates an ADB channel.
func NewADB(opts Options) *ADB {
	if opts.ADBBinary == "" {
		opts.ADBBinary = DefaultADBBinary
	}
	if opts.FastbootBinary == "" {
		opts.FastbootBinary = DefaultFastbootBinary
	}
	if opts.SuCommand == "" {
		opts.SuCommand = DefaultSuCommand
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &ADB{
		adb:      opts.ADBBinary,
		fastboot: opts.FastbootBinary,
		su:       opts.SuCommand,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
		logger:   opts.Logger,
	}
}

// ListDevices queries both `adb devices` and `fastboot devices`. A tool that
// cannot be started contributes no devices; only when both fail is an error
// returned.
func (a *ADB) ListDevices(ctx context.Context) ([]Descriptor, error) {
	var devices []Descriptor

	adbOut, _, adbErr := a.capture(ctx, a.adb, "devices")
	if adbErr != nil {
		a.logger.Debug("adb device listing unavailable", "error", adbErr)
	} else {
		devices = append(devices, ParseADBDevices(adbOut)...)
	}

	fbOut, _, fbErr := a.capture(ctx, a.fastboot, "devices")
	if fbErr != nil {
		a.logger.Debug("fastboot device listing unavailable", "error", fbErr)
	} else {
		devices = append(devices, ParseFastbootDevices(fbOut)...)
	}

	if adbErr != nil && fbErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrToolNotFound, errors.Join(adbErr, fbErr))
	}

	return devices, nil
}

// RunPrivileged runs command through the su wrapper in an adb shell.
func (a *ADB) RunPrivileged(ctx context.Context, command string) (int, error) {
	return a.run(ctx, a.adb, a.privilegedArgs(command)...)
}

// CapturePrivileged runs command through the su wrapper and returns stdout.
// Stderr is forwarded to the configured sink.
func (a *ADB) CapturePrivileged(ctx context.Context, command string) ([]byte, int, error) {
	return a.capture(ctx, a.adb, a.privilegedArgs(command)...)
}

// Push copies localPath to remotePath with `adb push`.
func (a *ADB) Push(ctx context.Context, localPath, remotePath string) (int, error) {
	return a.run(ctx, a.adb, "push", localPath, remotePath)
}

// Reboot issues `adb reboot`.
func (a *ADB) Reboot(ctx context.Context) (int, error) {
	return a.run(ctx, a.adb, "reboot")
}

// privilegedArgs builds `shell "<su> '<command>'"`. adb joins its shell
// arguments with spaces, so the command is quoted as one word for su.
func (a *ADB) privilegedArgs(command string) []string {
	return []string{"shell", a.su + " " + Quote(command)}
}

func (a *ADB) run(ctx context.Context, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = a.stdout
	cmd.Stderr = a.stderr

	a.logger.Debug("exec", "cmd", name, "args", args)
	return exitCode(cmd.Run(), name)
}

func (a *ADB) capture(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = a.stderr

	a.logger.Debug("exec", "cmd", name, "args", args)
	code, err := exitCode(cmd.Run(), name)
	return stdout.Bytes(), code, err
}

// exitCode converts the result of cmd.Run into an exit code. Only failures
// to launch the process are returned as errors.
func exitCode(runErr error, name string) (int, error) {
	if runErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("failed to execute %s: %w", name, runErr)
}
