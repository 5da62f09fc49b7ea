// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/magimod/magimod/internal/config"
	"github.com/magimod/magimod/internal/device"
)

type (
	// fakeChannel records every call as a single string.
	fakeChannel struct {
		devices []device.Descriptor
		listErr error
		listing string
		// exitCodes maps a command prefix to the exit code it reports.
		exitCodes map[string]int
		calls     []string
	}

	staticProvider struct {
		cfg *config.Config
		err error
	}
)

func readyDevice() []device.Descriptor {
	return []device.Descriptor{{Serial: "emulator-5554", State: device.StateReady, Transport: device.TransportADB}}
}

func (f *fakeChannel) exitFor(command string) int {
	for prefix, code := range f.exitCodes {
		if strings.HasPrefix(command, prefix) {
			return code
		}
	}
	return 0
}

func (f *fakeChannel) ListDevices(context.Context) ([]device.Descriptor, error) {
	f.calls = append(f.calls, "devices")
	return f.devices, f.listErr
}

func (f *fakeChannel) RunPrivileged(_ context.Context, command string) (int, error) {
	f.calls = append(f.calls, "su "+command)
	return f.exitFor(command), nil
}

func (f *fakeChannel) CapturePrivileged(_ context.Context, command string) ([]byte, int, error) {
	f.calls = append(f.calls, "capture "+command)
	return []byte(f.listing), f.exitFor(command), nil
}

func (f *fakeChannel) Push(_ context.Context, localPath, remotePath string) (int, error) {
	f.calls = append(f.calls, "push "+localPath+" "+remotePath)
	return f.exitFor("push"), nil
}

func (f *fakeChannel) Reboot(context.Context) (int, error) {
	f.calls = append(f.calls, "reboot")
	return f.exitFor("reboot"), nil
}

func (f *fakeChannel) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

func (p staticProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.cfg, nil
}

type cliResult struct {
	stdout string
	stderr string
	err    error
	opts   device.Options
}

// runCLI executes the command tree against ch and cfg the way Execute does,
// rendering a returned error to the captured stderr.
func runCLI(t *testing.T, ch device.Channel, cfg *config.Config, args ...string) cliResult {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return runWithProvider(t, ch, staticProvider{cfg: cfg}, args...)
}

func runWithProvider(t *testing.T, ch device.Channel, provider ConfigProvider, args ...string) cliResult {
	t.Helper()

	var res cliResult
	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Config: provider,
		NewChannel: func(opts device.Options) device.Channel {
			res.opts = opts
			return ch
		},
		Stdout: &stdout,
		Stderr: &stderr,
	})

	root := newRootCommand(app)
	root.SetArgs(args)
	res.err = root.ExecuteContext(context.Background())
	if res.err != nil {
		app.renderError(&stderr, res.err)
	}

	res.stdout = stdout.String()
	res.stderr = stderr.String()
	return res
}
