// SPDX-License-Identifier: MPL-2.0

// Package device is the boundary to the target device: listing connected
// devices, running privileged shell commands and transferring files.
//
// Every operation blocks until the underlying process exits. There is no
// timeout; the only way to abort a hung transfer is cancelling the context.
package device

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// StateReady is the adb state of a device that accepts commands.
const StateReady = "device"

const (
	// TransportADB is a device reported by `adb devices`.
	TransportADB Transport = "adb"
	// TransportFastboot is a device reported by `fastboot devices`.
	TransportFastboot Transport = "fastboot"
)

type (
	// Transport identifies which listing reported a device.
	Transport string

	// Descriptor is one connected device.
	Descriptor struct {
		Serial    string
		State     string
		Transport Transport
	}

	// Channel runs operations on the connected device.
	Channel interface {
		// ListDevices returns every device reported by either transport.
		ListDevices(ctx context.Context) ([]Descriptor, error)
		// RunPrivileged runs command as root on the device and returns its exit code.
		RunPrivileged(ctx context.Context, command string) (int, error)
		// CapturePrivileged is RunPrivileged with stdout captured.
		CapturePrivileged(ctx context.Context, command string) ([]byte, int, error)
		// Push copies a local file to remotePath on the device.
		Push(ctx context.Context, localPath, remotePath string) (int, error)
		// Reboot restarts the device. The session ends with it.
		Reboot(ctx context.Context) (int, error)
	}
)

// Ready reports whether the device can take a deployment. Any fastboot
// device counts; adb devices must be in StateReady.
func (d Descriptor) Ready() bool {
	switch d.Transport {
	case TransportFastboot:
		return true
	case TransportADB:
		return d.State == StateReady
	default:
		return false
	}
}

// AnyReady reports whether at least one descriptor is Ready.
func AnyReady(devices []Descriptor) bool {
	for _, d := range devices {
		if d.Ready() {
			return true
		}
	}
	return false
}

// ParseADBDevices parses `adb devices` output. The first line is a header;
// every following line with exactly two fields is a device and its state.
func ParseADBDevices(out []byte) []Descriptor {
	var devices []Descriptor
	scanner := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		devices = append(devices, Descriptor{
			Serial:    fields[0],
			State:     fields[1],
			Transport: TransportADB,
		})
	}
	return devices
}

// ParseFastbootDevices parses `fastboot devices` output. Any non-blank line
// is a device.
func ParseFastbootDevices(out []byte) []Descriptor {
	var devices []Descriptor
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		devices = append(devices, Descriptor{
			Serial:    fields[0],
			State:     strings.Join(fields[1:], " "),
			Transport: TransportFastboot,
		})
	}
	return devices
}

// Quote returns s quoted for a POSIX shell on the device.
func Quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangPOSIX)
	if err != nil {
		// Only strings with NUL bytes fail to quote; those can't be sent anyway.
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return q
}
