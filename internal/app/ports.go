package app

import (
	"context"
	"io/fs"
	"time"

	"phofile/internal/domain"
)

type FileSystem interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	ModTime(path string) (time.Time, error)
	MkdirAll(path string, perm fs.FileMode) error
	CopyFile(src, dst string) error
	MoveFile(src, dst string) error
}

// MetadataDecoder returns the raw embedded tags of a file keyed by
// "<group> <name>". An empty result or domain.ErrNoMetadata means the file
// has no metadata block.
type MetadataDecoder interface {
	Decode(ctx context.Context, path string) (map[string]any, error)
}

// Starter is implemented by decoders that need a backend running before the
// first Decode. A Start error means the decoder cannot be used at all.
type Starter interface {
	Start() error
}

// OutcomeSink receives one outcome per processed image.
type OutcomeSink interface {
	Append(outcome domain.Outcome)
}
