// SPDX-License-Identifier: MPL-2.0

package deploy

import (
	"fmt"
)

// Stage is one step of a deployment, in execution order.
type Stage int

const (
	StageConnectivity Stage = iota
	StageArchive
	StageTransfer
	StageStaging
	StageUnpack
	StageMarker
	StageRestart
	StageCleanup
)

var stageNames = [...]string{
	StageConnectivity: "connectivity",
	StageArchive:      "archive",
	StageTransfer:     "transfer",
	StageStaging:      "staging",
	StageUnpack:       "unpack",
	StageMarker:       "marker",
	StageRestart:      "restart",
	StageCleanup:      "cleanup",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// StageError reports the stage a deployment aborted in. ExitCode is set
// when a remote command exited non-zero, and is 0 otherwise.
type StageError struct {
	Stage    Stage
	ExitCode int
	Err      error
}

func (e *StageError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s stage failed (exit code %d): %v", e.Stage, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
