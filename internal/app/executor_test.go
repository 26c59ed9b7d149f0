package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"phofile/internal/domain"
	osfs "phofile/internal/infra/fs"
)

type sliceSink struct {
	outcomes []domain.Outcome
}

func (s *sliceSink) Append(outcome domain.Outcome) {
	s.outcomes = append(s.outcomes, outcome)
}

func item(src, dst string) domain.TransferItem {
	return domain.TransferItem{Image: domain.Image{Path: src}, Destination: dst}
}

func TestExecutorSkipsExistingWithoutOverwrite(t *testing.T) {
	mock := &mockFS{exists: map[string]bool{"/target/2020/a.jpg": true}}
	executor := Executor{FS: mock}
	sink := &sliceSink{}

	summary, err := executor.Execute(context.Background(), testJob(t, "{Name}"), []domain.TransferItem{
		item("/source/a.jpg", "/target/2020/a.jpg"),
		item("/source/b.jpg", "/target/2020/b.jpg"),
	}, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Skipped != 1 || summary.Succeeded != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(sink.outcomes) != 2 || sink.outcomes[0].State != domain.SkippedExists {
		t.Fatalf("unexpected outcomes %+v", sink.outcomes)
	}
	if !strings.HasPrefix(sink.outcomes[0].Text, "warning:") {
		t.Fatalf("expected warning text, got %q", sink.outcomes[0].Text)
	}
	if len(mock.transfers) != 1 || mock.transfers[0] != "copy /source/b.jpg /target/2020/b.jpg" {
		t.Fatalf("unexpected transfers %v", mock.transfers)
	}
}

func TestExecutorOverwritesWhenAllowed(t *testing.T) {
	mock := &mockFS{exists: map[string]bool{"/target/a.jpg": true}}
	job := testJob(t, "{Name}")
	job.Overwrite = true
	job.Mode = domain.ModeMove
	sink := &sliceSink{}

	summary, err := (&Executor{FS: mock}).Execute(context.Background(), job, []domain.TransferItem{item("/source/a.jpg", "/target/a.jpg")}, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if sink.outcomes[0].Text != "success: moved" {
		t.Fatalf("unexpected text %q", sink.outcomes[0].Text)
	}
}

func TestExecutorContinuesAfterFailures(t *testing.T) {
	mock := &mockFS{
		mkdirErr: map[string]error{filepath.Dir("/target/locked/b.jpg"): errors.New("permission denied")},
		copyErr:  map[string]error{"/target/c.jpg": errors.New("disk full")},
	}
	items := []domain.TransferItem{
		item("/source/a.jpg", "/target/a.jpg"),
		item("/source/b.jpg", "/target/locked/b.jpg"),
		item("/source/c.jpg", "/target/c.jpg"),
		item("/source/d.jpg", "/target/d.jpg"),
	}
	sink := &sliceSink{}

	summary, err := (&Executor{FS: mock}).Execute(context.Background(), testJob(t, "{Name}"), items, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Succeeded != len(items)-2 || summary.Failed != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(sink.outcomes) != len(items) {
		t.Fatalf("expected one outcome per item, got %d", len(sink.outcomes))
	}
	if !strings.Contains(sink.outcomes[1].Text, "permission denied") || !strings.Contains(sink.outcomes[2].Text, "disk full") {
		t.Fatalf("expected error texts, got %+v", sink.outcomes)
	}
}

func TestExecutorIgnoresExistingDirectoryError(t *testing.T) {
	mock := &mockFS{mkdirErr: map[string]error{"/target": errAlreadyExists{}}}
	sink := &sliceSink{}

	summary, _ := (&Executor{FS: mock}).Execute(context.Background(), testJob(t, "{Name}"), []domain.TransferItem{item("/source/a.jpg", "/target/a.jpg")}, sink)
	if summary.Succeeded != 1 {
		t.Fatalf("expected success, got %+v", sink.outcomes)
	}
}

type errAlreadyExists struct{}

func (errAlreadyExists) Error() string { return "file exists" }
func (errAlreadyExists) Is(target error) bool {
	return target == fs.ErrExist
}

func TestExecutorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &sliceSink{}

	_, err := (&Executor{FS: &mockFS{}}).Execute(ctx, testJob(t, "{Name}"), []domain.TransferItem{item("/source/a.jpg", "/target/a.jpg")}, sink)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(sink.outcomes) != 0 {
		t.Fatalf("expected no outcomes")
	}
}

func TestExecutorSkipsSelfTransfer(t *testing.T) {
	job := testJob(t, "{Name}")
	job.Overwrite = true
	sink := &sliceSink{}
	mock := &mockFS{}

	summary, _ := (&Executor{FS: mock}).Execute(context.Background(), job, []domain.TransferItem{item("/target/a.jpg", "/target/a.jpg")}, sink)
	if summary.Skipped != 1 || len(mock.transfers) != 0 {
		t.Fatalf("expected self transfer to be skipped, got %+v", sink.outcomes)
	}
}

func TestExecutorRetriesFailedCopyOnRerun(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "in", "a.jpg")
	dst := filepath.Join(root, "out", "a.jpg")
	// a directory at the source path opens but cannot be read
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	executor := Executor{FS: osfs.OSFS{}}
	job := testJob(t, "{Name}")
	items := []domain.TransferItem{item(src, dst)}

	sink := &sliceSink{}
	summary, err := executor.Execute(context.Background(), job, items, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("expected failed copy, got %+v", sink.outcomes)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatalf("expected no destination after failed copy, got %v", err)
	}

	if err := os.Remove(src); err != nil {
		t.Fatalf("remove: %v", err)
	}
	writeFile(t, src, time.Now())

	sink = &sliceSink{}
	summary, err = executor.Execute(context.Background(), job, items, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("expected rerun to copy the file, got %+v", sink.outcomes)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "a.jpg" {
		t.Fatalf("unexpected content %q (%v)", data, err)
	}
}
