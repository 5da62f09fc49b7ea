// SPDX-License-Identifier: MPL-2.0

package deploy

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// DefaultPushDir is where the archive lands on the device.
	DefaultPushDir = "/sdcard"
	// DefaultStagingBase is the directory the module manager installs from on boot.
	DefaultStagingBase = "/data/adb/modules_update"
	// DefaultMarkerName is the file that flags a staged module for install.
	DefaultMarkerName = "update"
)

var (
	// ErrInvalidJob is returned by Job.Validate.
	ErrInvalidJob = errors.New("invalid deploy job")

	// ErrNoDevice is returned when no ready device is connected and the job
	// does not ignore that.
	ErrNoDevice = errors.New("no device found")

	// ErrRemoteCommand is returned when a command on the device exits non-zero.
	ErrRemoteCommand = errors.New("remote command failed")
)

type (
	// Job describes one build-and-deploy request.
	Job struct {
		Name         string // module id, also the archive base name
		ProjectDir   string // module source root
		ArchiveDir   string // where <Name>.zip is written
		NoClear      bool   // keep the local archive after a reboot
		NoPush       bool   // stop after building the archive
		NoReboot     bool   // stage the module but do not restart the device
		IgnoreDevice bool   // continue when no ready device is found
	}

	// Layout holds the remote paths used by a deployment. Remote paths
	// always use '/' regardless of the host platform.
	Layout struct {
		PushDir     string
		StagingBase string
		MarkerName  string
	}
)

// DefaultLayout returns the standard module manager layout.
func DefaultLayout() Layout {
	return Layout{
		PushDir:     DefaultPushDir,
		StagingBase: DefaultStagingBase,
		MarkerName:  DefaultMarkerName,
	}
}

// ArchiveName is the file name of the module archive.
func (j Job) ArchiveName() string {
	return j.Name + ".zip"
}

// ArchivePath is the local path the archive is written to and removed from.
func (j Job) ArchivePath() string {
	return filepath.Join(j.ArchiveDir, j.ArchiveName())
}

// Validate checks that the job can produce well-formed local and remote paths.
func (j Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("%w: module name is empty", ErrInvalidJob)
	}
	if strings.ContainsAny(j.Name, `/\`) || strings.IndexFunc(j.Name, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: module name %q must not contain path separators or whitespace", ErrInvalidJob, j.Name)
	}
	if j.Name == "." || j.Name == ".." {
		return fmt.Errorf("%w: module name %q is not a valid name", ErrInvalidJob, j.Name)
	}
	if j.ProjectDir == "" {
		return fmt.Errorf("%w: project directory is empty", ErrInvalidJob)
	}
	return nil
}

// RemoteArchive is where the archive is pushed on the device.
func (l Layout) RemoteArchive(j Job) string {
	return path.Join(l.PushDir, j.ArchiveName())
}

// StagingDir is the per-module staging directory on the device.
func (l Layout) StagingDir(j Job) string {
	return path.Join(l.StagingBase, j.Name)
}

// MarkerPath is the install marker inside the staging directory.
func (l Layout) MarkerPath(j Job) string {
	return path.Join(l.StagingDir(j), l.MarkerName)
}

// withDefaults fills empty fields from DefaultLayout.
func (l Layout) withDefaults() Layout {
	d := DefaultLayout()
	if l.PushDir == "" {
		l.PushDir = d.PushDir
	}
	if l.StagingBase == "" {
		l.StagingBase = d.StagingBase
	}
	if l.MarkerName == "" {
		l.MarkerName = d.MarkerName
	}
	return l
}
