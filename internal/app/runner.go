package app

import (
	"context"
	"errors"
	"fmt"

	"phofile/internal/domain"
	appErrors "phofile/internal/errors"
	"phofile/internal/logging"
)

// JobLog buffers outcomes of logged jobs and persists them.
type JobLog interface {
	OutcomeSink
	Flush(path string) error
}

// JobResult describes how one job ended.
type JobResult struct {
	Section  string
	Disabled bool
	Summary  Summary
	Warnings []string
	Outcomes []domain.Outcome
	Err      error
}

// Hooks lets a front end follow a run. Every field is optional.
type Hooks struct {
	OnJobStart func(job domain.Job)
	OnScan     ProgressFunc
	OnTransfer TransferFunc
	OnJobDone  func(result JobResult)
}

// Runner processes jobs one after another.
type Runner struct {
	FS       FileSystem
	Decoders map[domain.Decoder]MetadataDecoder
	Log      JobLog
	LogPath  string
	Logger   logging.Logger
	Hooks    Hooks
}

// Run attempts every job in order; a failing job never prevents the next one
// from running.
func (r *Runner) Run(ctx context.Context, jobs []domain.Job) []JobResult {
	results := make([]JobResult, 0, len(jobs))
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		results = append(results, r.RunJob(ctx, job))
	}
	return results
}

func (r *Runner) RunJob(ctx context.Context, job domain.Job) JobResult {
	result := JobResult{Section: job.Section}
	if !job.Enabled {
		r.Logger.Verbosef("Job %s is disabled", job.Section)
		result.Disabled = true
		r.done(result)
		return result
	}

	if r.Hooks.OnJobStart != nil {
		r.Hooks.OnJobStart(job)
	}

	result.Err = r.runJob(ctx, job, &result)
	r.done(result)
	return result
}

func (r *Runner) runJob(ctx context.Context, job domain.Job, result *JobResult) error {
	if _, err := r.FS.Stat(job.Source); err != nil {
		return appErrors.Wrap(appErrors.NotFound, "stat", job.Source, err)
	}

	decoder, ok := r.Decoders[job.Decoder]
	if !ok {
		return appErrors.Wrap(appErrors.InvalidConfig, "decoder", job.Section, fmt.Errorf("decoder %q is not available", job.Decoder))
	}
	if starter, ok := decoder.(Starter); ok {
		if err := starter.Start(); err != nil {
			return appErrors.Wrap(appErrors.InvalidConfig, "decoder", job.Section, err)
		}
	}

	sink := &recorder{}
	if job.Log && r.Log != nil {
		sink.next = r.Log
	}
	defer func() {
		result.Outcomes = sink.outcomes
		if sink.next == nil {
			return
		}
		if err := r.Log.Flush(r.LogPath); err != nil {
			r.Logger.Verbosef("Writing log %s failed: %v", r.LogPath, err)
		}
	}()

	planner := Planner{
		FS:         r.FS,
		Decoder:    decoder,
		Logger:     r.Logger,
		OnProgress: r.Hooks.OnScan,
	}
	plan, err := planner.Plan(ctx, job)
	if errors.Is(err, domain.ErrDecoderUnavailable) {
		return appErrors.Wrap(appErrors.InvalidConfig, "decoder", job.Section, err)
	}
	if err != nil {
		return appErrors.Wrap(appErrors.Internal, "plan", job.Source, err)
	}
	result.Warnings = plan.Warnings

	for _, outcome := range plan.Unresolved {
		sink.Append(outcome)
		result.Summary.Add(outcome.State)
	}

	executor := Executor{
		FS:         r.FS,
		Logger:     r.Logger,
		OnProgress: r.Hooks.OnTransfer,
	}
	summary, err := executor.Execute(ctx, job, plan.Items, sink)
	result.Summary.Succeeded += summary.Succeeded
	result.Summary.Skipped += summary.Skipped
	result.Summary.Failed += summary.Failed
	if err != nil {
		return appErrors.Wrap(appErrors.Internal, "transfer", job.Destination, err)
	}
	return nil
}

func (r *Runner) done(result JobResult) {
	if r.Hooks.OnJobDone != nil {
		r.Hooks.OnJobDone(result)
	}
}

// recorder keeps a job's outcomes for reporting and forwards them to the
// job log when logging is enabled.
type recorder struct {
	outcomes []domain.Outcome
	next     OutcomeSink
}

func (r *recorder) Append(outcome domain.Outcome) {
	r.outcomes = append(r.outcomes, outcome)
	if r.next != nil {
		r.next.Append(outcome)
	}
}
