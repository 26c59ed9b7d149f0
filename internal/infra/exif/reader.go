package exif

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"

	"phofile/internal/domain"
)

var registerMakerNotes sync.Once

// Reader decodes EXIF blocks with goexif and reports every tag under a
// "<group> <name>" identifier.
type Reader struct{}

func NewReader() Reader {
	registerMakerNotes.Do(func() {
		goexif.RegisterParsers(mknote.All...)
	})
	return Reader{}
}

func (Reader) Decode(ctx context.Context, path string) (map[string]any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	x, err := goexif.Decode(file)
	if err != nil && (x == nil || goexif.IsCriticalError(err)) {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoMetadata, err)
	}

	collector := tagCollector{tags: map[string]any{}}
	if err := x.Walk(&collector); err != nil {
		return nil, err
	}
	if len(collector.tags) == 0 {
		return nil, domain.ErrNoMetadata
	}
	return collector.tags, nil
}

type tagCollector struct {
	tags map[string]any
}

func (c *tagCollector) Walk(name goexif.FieldName, tag *tiff.Tag) error {
	field := string(name)
	c.tags[groupOf(field)+" "+field] = tagValue(tag)
	return nil
}

// imageFields are the IFD0 fields goexif reports alongside the EXIF
// sub-IFD ones.
var imageFields = map[string]bool{
	"ImageWidth":                 true,
	"ImageLength":                true,
	"BitsPerSample":              true,
	"Compression":                true,
	"PhotometricInterpretation":  true,
	"Orientation":                true,
	"SamplesPerPixel":            true,
	"PlanarConfiguration":        true,
	"YCbCrSubSampling":           true,
	"YCbCrPositioning":           true,
	"XResolution":                true,
	"YResolution":                true,
	"ResolutionUnit":             true,
	"DateTime":                   true,
	"ImageDescription":           true,
	"Make":                       true,
	"Model":                      true,
	"Software":                   true,
	"Artist":                     true,
	"Copyright":                  true,
	"ExifIFDPointer":             true,
	"GPSInfoIFDPointer":          true,
	"InteroperabilityIFDPointer": true,
}

func groupOf(field string) string {
	switch {
	case strings.HasPrefix(field, "Thumb"):
		return "Thumbnail"
	case strings.HasPrefix(field, "GPS") && !imageFields[field]:
		return "GPS"
	case field == "InteroperabilityIndex":
		return "Interoperability"
	case strings.Contains(field, "."):
		return "MakerNote"
	case imageFields[field]:
		return "Image"
	default:
		return "EXIF"
	}
}

func tagValue(tag *tiff.Tag) any {
	switch tag.Format() {
	case tiff.StringVal:
		s, err := tag.StringVal()
		if err != nil {
			return nil
		}
		return strings.TrimRight(s, "\x00")
	case tiff.UndefVal:
		if printable(tag.Val) {
			return strings.TrimRight(string(tag.Val), "\x00")
		}
		return tag.Val
	case tiff.IntVal:
		return collect(tag, func(i int) (any, error) { return tag.Int64(i) })
	case tiff.RatVal:
		return collect(tag, func(i int) (any, error) {
			num, den, err := tag.Rat2(i)
			if err != nil {
				return nil, err
			}
			if den == 1 {
				return num, nil
			}
			return fmt.Sprintf("%d/%d", num, den), nil
		})
	case tiff.FloatVal:
		return collect(tag, func(i int) (any, error) { return tag.Float(i) })
	default:
		return tag.String()
	}
}

func collect(tag *tiff.Tag, at func(i int) (any, error)) any {
	values := make([]any, 0, tag.Count)
	for i := 0; i < int(tag.Count); i++ {
		v, err := at(i)
		if err != nil {
			return nil
		}
		values = append(values, v)
	}
	if len(values) == 1 {
		return values[0]
	}
	return values
}

func printable(b []byte) bool {
	trimmed := strings.TrimRight(string(b), "\x00")
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
