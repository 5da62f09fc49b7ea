// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"
	"testing"

	"github.com/magimod/magimod/internal/device"
	"github.com/magimod/magimod/internal/issue"
)

func TestDevices(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		ch        *fakeChannel
		want      []string
		wantIssue issue.Id
	}{
		{
			name: "lists every transport",
			ch: &fakeChannel{devices: []device.Descriptor{
				{Serial: "emulator-5554", State: device.StateReady, Transport: device.TransportADB},
				{Serial: "R58M", State: "unauthorized", Transport: device.TransportADB},
				{Serial: "fb01", State: "fastboot", Transport: device.TransportFastboot},
			}},
			want: []string{"emulator-5554", "unauthorized", "fb01", "fastboot"},
		},
		{
			name: "none connected",
			ch:   &fakeChannel{},
			want: []string{"No device found."},
		},
		{
			name:      "tools missing",
			ch:        &fakeChannel{listErr: fmt.Errorf("%w: both failed", device.ErrToolNotFound)},
			wantIssue: issue.ADBNotFoundId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res := runCLI(t, tt.ch, nil, "devices")

			if tt.wantIssue != 0 {
				if res.err == nil {
					t.Fatal("devices should fail")
				}
				if got := issueOf(t, res.err); got != tt.wantIssue {
					t.Errorf("issue = %d, want %d", got, tt.wantIssue)
				}
				return
			}

			if res.err != nil {
				t.Fatalf("devices failed: %v", res.err)
			}
			for _, w := range tt.want {
				if !strings.Contains(res.stdout, w) {
					t.Errorf("stdout = %q, missing %q", res.stdout, w)
				}
			}
		})
	}
}
