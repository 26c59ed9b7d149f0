package exiftool

import (
	"context"
	"fmt"

	"github.com/barasher/go-exiftool"

	"phofile/internal/domain"
)

// Group prefixes every field reported by exiftool, which prints flat names.
const Group = "ExifTool"

// Reader decodes metadata through a long-running exiftool process. The
// process starts on first use and must be released with Close.
type Reader struct {
	et       *exiftool.Exiftool
	startErr error
}

func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) Decode(ctx context.Context, path string) (map[string]any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := r.Start(); err != nil {
		return nil, err
	}

	infos := r.et.ExtractMetadata(path)
	if len(infos) != 1 {
		return nil, fmt.Errorf("exiftool returned %d results for %s", len(infos), path)
	}
	if infos[0].Err != nil {
		return nil, infos[0].Err
	}

	tags := groupFields(infos[0].Fields)
	if len(tags) == 0 {
		return nil, domain.ErrNoMetadata
	}
	return tags, nil
}

// Start launches the exiftool process unless it is already running. A failed
// start is remembered and returned by every later call.
func (r *Reader) Start() error {
	if r.et != nil {
		return nil
	}
	if r.startErr != nil {
		return r.startErr
	}
	et, err := exiftool.NewExiftool()
	if err != nil {
		r.startErr = fmt.Errorf("%w: start exiftool: %v", domain.ErrDecoderUnavailable, err)
		return r.startErr
	}
	r.et = et
	return nil
}

func (r *Reader) Close() error {
	if r.et == nil {
		return nil
	}
	err := r.et.Close()
	r.et = nil
	return err
}

func groupFields(fields map[string]interface{}) map[string]any {
	tags := make(map[string]any, len(fields))
	for name, value := range fields {
		tags[Group+" "+name] = value
	}
	return tags
}
