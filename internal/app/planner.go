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

// ProgressFunc is called during scanning to report progress
type ProgressFunc func(current, total int)

type Planner struct {
	FS         FileSystem
	Decoder    MetadataDecoder
	Logger     logging.Logger
	OnProgress ProgressFunc
}

// Plan scans the job's source tree and pairs every file whose destination
// can be resolved with that destination. Files whose template cannot be
// bound are returned as unresolved outcomes instead.
func (p *Planner) Plan(ctx context.Context, job domain.Job) (domain.TransferPlan, error) {
	if p.FS == nil || p.Decoder == nil {
		return domain.TransferPlan{}, errors.New("planner requires FS and Decoder")
	}

	stop := p.Logger.Measure("Planning " + job.Section)
	defer stop()

	paths, warnings, err := p.scan(job.Source, job.Destination)
	if err != nil {
		return domain.TransferPlan{}, err
	}
	p.Logger.Verbosef("Found %d candidate files in %s", len(paths), job.Source)

	plan := domain.TransferPlan{Warnings: warnings}
	total := len(paths)
	for i, path := range paths {
		select {
		case <-ctx.Done():
			return domain.TransferPlan{}, ctx.Err()
		default:
		}

		image, err := p.ParseImage(ctx, path, job.Rules)
		switch {
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded),
			errors.Is(err, domain.ErrDecoderUnavailable):
			return domain.TransferPlan{}, err
		case err != nil:
			plan.Unresolved = append(plan.Unresolved, unresolved(job, path, err))
		default:
			if image.TimestampSource == domain.TimestampSourceModTime {
				plan.Warnings = append(plan.Warnings, fmt.Sprintf("No metadata timestamp for %s, using filesystem time", filepath.Base(path)))
			}
			destination, err := job.Template.Resolve(job.Destination, image.Attributes)
			if err != nil {
				plan.Unresolved = append(plan.Unresolved, unresolved(job, path, err))
				break
			}
			plan.Items = append(plan.Items, domain.TransferItem{Image: image, Destination: destination})
		}

		if p.OnProgress != nil {
			p.OnProgress(i+1, total)
		}
	}

	p.Logger.Verbosef("Planned %d transfers, %d unresolved, %d warnings", len(plan.Items), len(plan.Unresolved), len(plan.Warnings))
	return plan, nil
}

// ParseImage builds the fully attributed image record for path: metadata
// tags, the resolved timestamp and the calendar attributes derived from it.
func (p *Planner) ParseImage(ctx context.Context, path string, rules domain.TimestampRules) (domain.Image, error) {
	raw, err := p.Decoder.Decode(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
			errors.Is(err, domain.ErrDecoderUnavailable) {
			return domain.Image{}, err
		}
		if errors.Is(err, domain.ErrNoMetadata) {
			p.Logger.Debugf("No metadata in %s", path)
		} else {
			p.Logger.Verbosef("Reading metadata of %s failed: %v", path, err)
		}
		raw = nil
	}

	attrs, issues := domain.Normalize(path, raw)
	for _, issue := range issues {
		p.Logger.Debugf("Skipped tag %s in %s", issue, path)
	}

	image := domain.Image{Path: path, Attributes: attrs}

	ts, source, ok, failures := rules.ResolveVerbose(attrs)
	for _, f := range failures {
		p.Logger.Debugf("Invalid %s %q for layout %q in %s", f.Attribute, f.Value, f.Layout, path)
	}
	if !ok {
		modTime, err := p.FS.ModTime(path)
		if err != nil {
			return domain.Image{}, fmt.Errorf("read modification time: %w", err)
		}
		ts, source = modTime, domain.TimestampSourceModTime
	}
	image.Timestamp = ts
	image.TimestampSource = source

	domain.ExpandCalendar(image.Attributes, ts)
	return image, nil
}

func (p *Planner) scan(sourceDir, targetDir string) ([]string, []string, error) {
	stop := p.Logger.Measure("Scanning " + sourceDir)
	defer stop()

	var paths []string
	var warnings []string
	root := filepath.Clean(sourceDir)
	target := filepath.Clean(targetDir)

	err := p.FS.WalkDir(sourceDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if filepath.Clean(path) == root {
				return walkErr
			}
			warnings = append(warnings, fmt.Sprintf("Skipping %s: %v", path, walkErr))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			// destination nested inside the source is not rescanned
			if filepath.Clean(path) == target && target != root {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return paths, warnings, nil
}

func unresolved(job domain.Job, path string, err error) domain.Outcome {
	return domain.Outcome{
		Section: job.Section,
		State:   domain.Unresolved,
		Text:    "error: " + err.Error(),
		Source:  path,
	}
}
