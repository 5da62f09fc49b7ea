// SPDX-License-Identifier: MPL-2.0

package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/magimod/magimod/internal/archive"
	"github.com/magimod/magimod/internal/device"
)

const (
	// outcomeNext records the stage as completed and moves on.
	outcomeNext outcome = iota
	// outcomeDone ends the run successfully. The returning stage is not
	// recorded as completed.
	outcomeDone
)

type (
	// Archiver packages srcDir into an archive file at dstPath.
	Archiver func(srcDir, dstPath string) error

	// Remover deletes a local file.
	Remover func(path string) error

	// Option configures a Pipeline.
	Option func(*Pipeline)

	// Pipeline deploys module projects to the device behind a Channel.
	// A Pipeline holds no per-run state and may be reused.
	Pipeline struct {
		ch      device.Channel
		layout  Layout
		logger  *log.Logger
		archive Archiver
		remove  Remover
		runID   string
	}

	// Result describes what a run did, including runs that failed.
	Result struct {
		RunID         string
		ArchivePath   string
		RemoteArchive string
		StagingDir    string
		DeviceFound   bool
		Completed     []Stage
		// CleanupErr is the ignored failure to remove the local archive.
		CleanupErr error
	}

	outcome int

	run struct {
		job    Job
		result *Result
		logger *log.Logger
	}

	step struct {
		stage Stage
		fn    func(context.Context, *run) (outcome, error)
	}

	// exitStatus is a remote command that ran and exited non-zero.
	exitStatus struct {
		command string
		code    int
	}
)

// WithLayout sets the remote paths. Empty fields keep their defaults.
func WithLayout(l Layout) Option {
	return func(p *Pipeline) {
		p.layout = l.withDefaults()
	}
}

// WithLogger sets the logger used to narrate each stage.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithArchiver replaces archive.Build.
func WithArchiver(a Archiver) Option {
	return func(p *Pipeline) {
		if a != nil {
			p.archive = a
		}
	}
}

// WithRemover replaces os.Remove for the cleanup stage.
func WithRemover(r Remover) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.remove = r
		}
	}
}

// WithRunID fixes the run id instead of generating one per run.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		p.runID = id
	}
}

// New creates a Pipeline that talks to the device through ch.
func New(ch device.Channel, opts ...Option) *Pipeline {
	p := &Pipeline{
		ch:      ch,
		layout:  DefaultLayout(),
		logger:  log.New(io.Discard),
		archive: archive.Build,
		remove:  os.Remove,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Layout returns the remote paths used by the pipeline.
func (p *Pipeline) Layout() Layout {
	return p.layout
}

// Run executes the stages for job in order and stops at the first failure.
// Remote side effects of earlier stages are not rolled back. The returned
// Result is non-nil whenever the job was valid.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	id := p.runID
	if id == "" {
		id = uuid.NewString()
	}

	r := &run{
		job: job,
		result: &Result{
			RunID:         id,
			ArchivePath:   job.ArchivePath(),
			RemoteArchive: p.layout.RemoteArchive(job),
			StagingDir:    p.layout.StagingDir(job),
		},
		logger: p.logger.With("run", id),
	}

	steps := []step{
		{StageConnectivity, p.checkConnectivity},
		{StageArchive, p.buildArchive},
		{StageTransfer, p.transfer},
		{StageStaging, p.createStaging},
		{StageUnpack, p.unpack},
		{StageMarker, p.mark},
		{StageRestart, p.restart},
		{StageCleanup, p.cleanup},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return r.result, &StageError{Stage: s.stage, Err: err}
		}

		out, err := s.fn(ctx, r)
		if err != nil {
			se := &StageError{Stage: s.stage, Err: err}
			var es *exitStatus
			if errors.As(err, &es) {
				se.ExitCode = es.code
			}
			r.logger.Debug("deployment aborted", "stage", s.stage, "error", err)
			return r.result, se
		}
		if out == outcomeDone {
			break
		}
		r.result.Completed = append(r.result.Completed, s.stage)
	}

	return r.result, nil
}

func (p *Pipeline) checkConnectivity(ctx context.Context, r *run) (outcome, error) {
	r.logger.Info("Checking for connected devices")
	devices, err := p.ch.ListDevices(ctx)
	if err != nil {
		r.logger.Debug("device listing failed", "error", err)
	}
	r.result.DeviceFound = device.AnyReady(devices)

	if r.result.DeviceFound {
		return outcomeNext, nil
	}
	r.logger.Warn("No device found.")
	if !r.job.IgnoreDevice {
		if err != nil {
			return outcomeNext, fmt.Errorf("%w: %w", ErrNoDevice, err)
		}
		return outcomeNext, ErrNoDevice
	}
	return outcomeNext, nil
}

func (p *Pipeline) buildArchive(_ context.Context, r *run) (outcome, error) {
	r.logger.Info("Creating archive", "path", r.result.ArchivePath)
	if err := p.archive(r.job.ProjectDir, r.result.ArchivePath); err != nil {
		return outcomeNext, err
	}
	return outcomeNext, nil
}

func (p *Pipeline) transfer(ctx context.Context, r *run) (outcome, error) {
	if r.job.NoPush {
		r.logger.Info("Skipping transfer", "path", r.result.ArchivePath)
		return outcomeDone, nil
	}
	r.logger.Info("Pushing archive", "path", r.result.RemoteArchive)
	code, err := p.ch.Push(ctx, r.result.ArchivePath, r.result.RemoteArchive)
	return outcomeNext, checkExit("push "+r.result.RemoteArchive, code, err)
}

func (p *Pipeline) createStaging(ctx context.Context, r *run) (outcome, error) {
	r.logger.Info("Creating staging directory", "path", r.result.StagingDir)
	return outcomeNext, p.privileged(ctx, r, "mkdir -p "+device.Quote(r.result.StagingDir))
}

func (p *Pipeline) unpack(ctx context.Context, r *run) (outcome, error) {
	r.logger.Info("Unpacking module", "path", r.result.StagingDir)
	cmd := "unzip -o " + device.Quote(r.result.RemoteArchive) + " -d " + device.Quote(r.result.StagingDir)
	return outcomeNext, p.privileged(ctx, r, cmd)
}

func (p *Pipeline) mark(ctx context.Context, r *run) (outcome, error) {
	marker := p.layout.MarkerPath(r.job)
	r.logger.Info("Marking module for install", "path", marker)
	return outcomeNext, p.privileged(ctx, r, "touch "+device.Quote(marker))
}

func (p *Pipeline) restart(ctx context.Context, r *run) (outcome, error) {
	if r.job.NoReboot {
		r.logger.Info("Skipping reboot")
		return outcomeDone, nil
	}
	r.logger.Info("Rebooting device")
	code, err := p.ch.Reboot(ctx)
	return outcomeNext, checkExit("reboot", code, err)
}

func (p *Pipeline) cleanup(_ context.Context, r *run) (outcome, error) {
	if r.job.NoClear {
		r.logger.Debug("keeping local archive", "path", r.result.ArchivePath)
		return outcomeDone, nil
	}
	r.logger.Info("Removing local archive", "path", r.result.ArchivePath)
	if err := p.remove(r.result.ArchivePath); err != nil {
		r.result.CleanupErr = err
		r.logger.Debug("failed to remove local archive", "path", r.result.ArchivePath, "error", err)
		return outcomeDone, nil
	}
	return outcomeNext, nil
}

func (p *Pipeline) privileged(ctx context.Context, r *run, command string) error {
	r.logger.Debug("remote", "cmd", command)
	code, err := p.ch.RunPrivileged(ctx, command)
	return checkExit(command, code, err)
}

// checkExit turns a channel result into a stage error. Launch failures are
// returned unchanged.
func checkExit(command string, code int, err error) error {
	if err != nil {
		return err
	}
	if code != 0 {
		return &exitStatus{command: command, code: code}
	}
	return nil
}

func (e *exitStatus) Error() string {
	return fmt.Sprintf("%v: %s exited with code %d", ErrRemoteCommand, e.command, e.code)
}

func (e *exitStatus) Unwrap() error {
	return ErrRemoteCommand
}
