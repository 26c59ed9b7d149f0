package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"phofile/internal/domain"
)

type mockFS struct {
	entries   []mockEntry
	exists    map[string]bool
	mkdirErr  map[string]error
	copyErr   map[string]error
	transfers []string
}

type mockEntry struct {
	path    string
	isDir   bool
	modTime time.Time
}

func (m *mockFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	var skipped []string
	for _, entry := range m.entries {
		if underAny(entry.path, skipped) {
			continue
		}
		dirEntry := mockDirEntry{name: filepath.Base(entry.path), isDir: entry.isDir}
		if err := fn(entry.path, dirEntry, nil); err != nil {
			if errors.Is(err, fs.SkipDir) {
				skipped = append(skipped, entry.path)
				continue
			}
			return err
		}
	}
	return nil
}

func underAny(path string, dirs []string) bool {
	for _, dir := range dirs {
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (m *mockFS) Stat(path string) (fs.FileInfo, error) {
	for _, entry := range m.entries {
		if entry.path == path {
			return mockFileInfo{name: filepath.Base(path), modTime: entry.modTime, isDir: entry.isDir}, nil
		}
	}
	return nil, fs.ErrNotExist
}

func (m *mockFS) Exists(path string) (bool, error) {
	return m.exists[path], nil
}

func (m *mockFS) ModTime(path string) (time.Time, error) {
	info, err := m.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (m *mockFS) MkdirAll(path string, perm fs.FileMode) error {
	return m.mkdirErr[path]
}

func (m *mockFS) CopyFile(src, dst string) error {
	return m.record("copy", src, dst)
}

func (m *mockFS) MoveFile(src, dst string) error {
	return m.record("move", src, dst)
}

func (m *mockFS) record(op, src, dst string) error {
	if err := m.copyErr[dst]; err != nil {
		return err
	}
	if m.exists == nil {
		m.exists = map[string]bool{}
	}
	m.exists[dst] = true
	m.transfers = append(m.transfers, op+" "+src+" "+dst)
	return nil
}

type mockDecoder struct {
	tags map[string]map[string]any
	err  error
}

func (m mockDecoder) Decode(ctx context.Context, path string) (map[string]any, error) {
	if m.err != nil {
		return nil, m.err
	}
	if tags, ok := m.tags[path]; ok {
		return tags, nil
	}
	return nil, domain.ErrNoMetadata
}

type mockDirEntry struct {
	name  string
	isDir bool
}

func (m mockDirEntry) Name() string { return m.name }
func (m mockDirEntry) IsDir() bool  { return m.isDir }
func (m mockDirEntry) Type() fs.FileMode {
	if m.isDir {
		return fs.ModeDir
	}
	return 0
}
func (m mockDirEntry) Info() (fs.FileInfo, error) { return nil, nil }

type mockFileInfo struct {
	name    string
	modTime time.Time
	isDir   bool
}

func (m mockFileInfo) Name() string       { return m.name }
func (m mockFileInfo) Size() int64        { return 0 }
func (m mockFileInfo) Mode() fs.FileMode  { return 0 }
func (m mockFileInfo) ModTime() time.Time { return m.modTime }
func (m mockFileInfo) IsDir() bool        { return m.isDir }
func (m mockFileInfo) Sys() interface{}   { return nil }

func testJob(t *testing.T, template string) domain.Job {
	t.Helper()
	tmpl, err := domain.ParseTemplate(template)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	return domain.Job{
		Section:     "test",
		Source:      "/source",
		Destination: "/target",
		Template:    tmpl,
		Mode:        domain.ModeCopy,
		Enabled:     true,
		Decoder:     domain.DecoderGoExif,
		Rules:       domain.DefaultTimestampRules(),
	}
}

func TestPlannerResolvesDestinations(t *testing.T) {
	aPath := filepath.Join("/source", "a.jpg")
	bPath := filepath.Join("/source", "sub", "b.png")
	mtime := time.Date(2019, 1, 1, 12, 0, 0, 0, time.Local)

	mock := &mockFS{entries: []mockEntry{
		{path: "/source", isDir: true},
		{path: aPath, modTime: time.Now()},
		{path: filepath.Join("/source", "sub"), isDir: true},
		{path: bPath, modTime: mtime},
	}}
	planner := Planner{
		FS: mock,
		Decoder: mockDecoder{tags: map[string]map[string]any{
			aPath: {"EXIF DateTimeOriginal": "2020:05:01 10:00:00"},
		}},
	}

	plan, err := planner.Plan(context.Background(), testJob(t, "{Year}/{Name}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(plan.Items))
	}
	if got := plan.Items[0].Destination; got != filepath.Join("/target", "2020", "a.jpg") {
		t.Fatalf("unexpected destination %q", got)
	}
	if got := plan.Items[1].Destination; got != filepath.Join("/target", "2019", "b.png") {
		t.Fatalf("unexpected destination %q", got)
	}
	if plan.Items[1].Image.TimestampSource != domain.TimestampSourceModTime {
		t.Fatalf("expected filesystem fallback, got %q", plan.Items[1].Image.TimestampSource)
	}
	if len(plan.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", plan.Warnings)
	}
}

func TestPlannerCalendarOverridesMetadata(t *testing.T) {
	path := filepath.Join("/source", "a.jpg")
	mock := &mockFS{entries: []mockEntry{{path: path}}}
	planner := Planner{
		FS: mock,
		Decoder: mockDecoder{tags: map[string]map[string]any{
			path: {
				"EXIF DateTimeOriginal": "2020:05:01 10:00:00",
				"Custom Year":           "1066",
			},
		}},
	}

	image, err := planner.ParseImage(context.Background(), path, domain.DefaultTimestampRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if image.Attributes["Year"] != "2020" {
		t.Fatalf("expected calendar year, got %q", image.Attributes["Year"])
	}
}

func TestPlannerDigitizedWinsWhenOriginalAbsent(t *testing.T) {
	path := filepath.Join("/source", "a.jpg")
	mock := &mockFS{entries: []mockEntry{{path: path, modTime: time.Now()}}}
	planner := Planner{
		FS: mock,
		Decoder: mockDecoder{tags: map[string]map[string]any{
			path: {
				"EXIF DateTimeDigitized": "2015:06:07 08:09:10",
				"Image DateTime":         "2016:01:01 00:00:00",
			},
		}},
	}

	image, err := planner.ParseImage(context.Background(), path, domain.DefaultTimestampRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if image.TimestampSource != "DateTimeDigitized" || image.Timestamp.Year() != 2015 {
		t.Fatalf("unexpected timestamp %v from %q", image.Timestamp, image.TimestampSource)
	}
}

func TestPlannerDecoderFailureFallsBack(t *testing.T) {
	path := filepath.Join("/source", "broken.jpg")
	mtime := time.Date(2018, 8, 8, 8, 8, 8, 0, time.Local)
	mock := &mockFS{entries: []mockEntry{{path: path, modTime: mtime}}}
	planner := Planner{FS: mock, Decoder: mockDecoder{err: errors.New("truncated")}}

	image, err := planner.ParseImage(context.Background(), path, domain.DefaultTimestampRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !image.Timestamp.Equal(mtime) {
		t.Fatalf("expected mtime fallback, got %v", image.Timestamp)
	}
}

func TestPlannerStopsWhenDecoderUnavailable(t *testing.T) {
	path := filepath.Join("/source", "a.jpg")
	mock := &mockFS{entries: []mockEntry{{path: path, modTime: time.Now()}}}
	unavailable := fmt.Errorf("%w: start exiftool: not found", domain.ErrDecoderUnavailable)
	planner := Planner{FS: mock, Decoder: mockDecoder{err: unavailable}}

	if _, err := planner.ParseImage(context.Background(), path, domain.DefaultTimestampRules()); !errors.Is(err, domain.ErrDecoderUnavailable) {
		t.Fatalf("expected unavailable decoder error, got %v", err)
	}
	if _, err := planner.Plan(context.Background(), testJob(t, "{Year}/{Name}")); !errors.Is(err, domain.ErrDecoderUnavailable) {
		t.Fatalf("expected plan to fail, got %v", err)
	}
}

func TestPlannerReportsMissingAttributes(t *testing.T) {
	path := filepath.Join("/source", "a.jpg")
	mock := &mockFS{entries: []mockEntry{{path: path, modTime: time.Now()}}}
	planner := Planner{FS: mock, Decoder: mockDecoder{}}

	plan, err := planner.Plan(context.Background(), testJob(t, "{Model}/{Name}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Items) != 0 || len(plan.Unresolved) != 1 {
		t.Fatalf("expected one unresolved image, got %d items %d unresolved", len(plan.Items), len(plan.Unresolved))
	}
	if plan.Unresolved[0].State != domain.Unresolved || plan.Unresolved[0].Source != path {
		t.Fatalf("unexpected outcome %+v", plan.Unresolved[0])
	}
}

func TestPlannerSkipsNestedDestination(t *testing.T) {
	job := testJob(t, "{Name}")
	job.Destination = filepath.Join("/source", "sorted")
	mock := &mockFS{entries: []mockEntry{
		{path: "/source", isDir: true},
		{path: filepath.Join("/source", "a.jpg"), modTime: time.Now()},
		{path: filepath.Join("/source", "sorted"), isDir: true},
		{path: filepath.Join("/source", "sorted", "a.jpg"), modTime: time.Now()},
	}}
	planner := Planner{FS: mock, Decoder: mockDecoder{}}

	plan, err := planner.Plan(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(plan.Items))
	}
}

func TestPlannerReportsProgress(t *testing.T) {
	mock := &mockFS{entries: []mockEntry{
		{path: filepath.Join("/source", "a.jpg"), modTime: time.Now()},
		{path: filepath.Join("/source", "b.jpg"), modTime: time.Now()},
	}}
	var calls []int
	planner := Planner{
		FS:         mock,
		Decoder:    mockDecoder{},
		OnProgress: func(current, total int) { calls = append(calls, current*10+total) },
	}

	if _, err := planner.Plan(context.Background(), testJob(t, "{Name}")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 2 || calls[0] != 12 || calls[1] != 22 {
		t.Fatalf("unexpected progress calls %v", calls)
	}
}
