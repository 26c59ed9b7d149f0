package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"phofile/internal/domain"
	"phofile/internal/logging"
)

// TransferFunc is called after each transfer attempt.
type TransferFunc func(current, total int, outcome domain.Outcome)

// Summary counts the outcomes of one job.
type Summary struct {
	Succeeded  int
	Skipped    int
	Failed     int
	Unresolved int
}

func (s *Summary) Add(state domain.State) {
	switch state {
	case domain.Succeeded:
		s.Succeeded++
	case domain.SkippedExists:
		s.Skipped++
	case domain.Failed:
		s.Failed++
	case domain.Unresolved:
		s.Unresolved++
	}
}

func (s Summary) Total() int {
	return s.Succeeded + s.Skipped + s.Failed + s.Unresolved
}

type Executor struct {
	FS         FileSystem
	Logger     logging.Logger
	OnProgress TransferFunc
}

// Execute transfers every item in order and hands exactly one outcome per
// item to sink. A failing item never stops the batch; only cancellation of
// ctx does.
func (e *Executor) Execute(ctx context.Context, job domain.Job, items []domain.TransferItem, sink OutcomeSink) (Summary, error) {
	var summary Summary
	if e.FS == nil {
		return summary, errors.New("executor requires FS")
	}

	stop := e.Logger.Measure("Transferring " + job.Section)
	defer stop()

	for i, item := range items {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		outcome := e.transfer(job, item)
		sink.Append(outcome)
		summary.Add(outcome.State)
		e.Logger.Verbosef("%s %s -> %s: %s", outcome.State, outcome.Source, outcome.Destination, outcome.Text)

		if e.OnProgress != nil {
			e.OnProgress(i+1, len(items), outcome)
		}
	}
	return summary, nil
}

func (e *Executor) transfer(job domain.Job, item domain.TransferItem) domain.Outcome {
	src := item.Image.Path
	dst := item.Destination
	outcome := domain.Outcome{
		Section:     job.Section,
		Source:      src,
		Destination: dst,
	}

	if filepath.Clean(src) == filepath.Clean(dst) {
		outcome.State = domain.SkippedExists
		outcome.Text = "warning: source is already at its destination"
		return outcome
	}

	if !job.Overwrite {
		exists, err := e.FS.Exists(dst)
		if err != nil {
			return failed(outcome, fmt.Errorf("check destination: %w", err))
		}
		if exists {
			outcome.State = domain.SkippedExists
			outcome.Text = "warning: destination exists, not overwritten"
			return outcome
		}
	}

	dir := filepath.Dir(dst)
	if err := e.FS.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return failed(outcome, fmt.Errorf("create directory %s: %w", dir, err))
	}

	var err error
	switch job.Mode {
	case domain.ModeMove:
		err = e.FS.MoveFile(src, dst)
	default:
		err = e.FS.CopyFile(src, dst)
	}
	if err != nil {
		return failed(outcome, fmt.Errorf("%s: %w", job.Mode, err))
	}

	outcome.State = domain.Succeeded
	outcome.Text = "success: " + pastTense(job.Mode)
	return outcome
}

func failed(outcome domain.Outcome, err error) domain.Outcome {
	outcome.State = domain.Failed
	outcome.Text = "error: " + err.Error()
	return outcome
}

func pastTense(mode domain.Mode) string {
	if mode == domain.ModeMove {
		return "moved"
	}
	return "copied"
}
