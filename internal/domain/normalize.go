package domain

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrNoMetadata is returned by decoders when a file carries no embedded
// metadata block.
var ErrNoMetadata = errors.New("no metadata")

// ErrDecoderUnavailable is returned by decoders whose backend cannot run at
// all, such as a missing external program.
var ErrDecoderUnavailable = errors.New("metadata decoder unavailable")

// TagIssueKind classifies a tag that Normalize could not use.
type TagIssueKind int

const (
	MalformedIdentifier TagIssueKind = iota + 1
	UnstringableValue
)

func (k TagIssueKind) String() string {
	switch k {
	case MalformedIdentifier:
		return "malformed identifier"
	case UnstringableValue:
		return "unstringable value"
	default:
		return "unknown"
	}
}

// TagIssue records a raw tag that was skipped during normalization.
type TagIssue struct {
	Tag  string
	Kind TagIssueKind
}

func (i TagIssue) String() string {
	return fmt.Sprintf("%s: %s", i.Tag, i.Kind)
}

// Normalize builds the attribute map for path from raw decoder output. Raw
// identifiers have the form "<group> <name>"; they are visited in sorted
// order and the first value seen for a name wins. Thumbnail tags are dropped.
func Normalize(path string, raw map[string]any) (Attributes, []TagIssue) {
	attrs := newAttributes(path)
	if len(raw) == 0 {
		return attrs, nil
	}

	tags := make([]string, 0, len(raw))
	for tag := range raw {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var issues []TagIssue
	for _, tag := range tags {
		if isThumbnail(tag) {
			continue
		}
		fields := strings.Fields(tag)
		if len(fields) < 2 {
			issues = append(issues, TagIssue{Tag: tag, Kind: MalformedIdentifier})
			continue
		}
		name := fields[1]
		if _, ok := attrs[name]; ok {
			continue
		}
		value, ok := stringify(raw[tag])
		if !ok {
			issues = append(issues, TagIssue{Tag: tag, Kind: UnstringableValue})
			continue
		}
		attrs.SetIfAbsent(name, value)
	}
	return attrs, issues
}

func isThumbnail(s string) bool {
	return strings.Contains(strings.ToLower(s), "thumbnail")
}

func stringify(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(strings.TrimRight(val, "\x00")), true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case time.Time:
		return val.Format(exifLayout), true
	case []byte:
		return "", false
	case []string:
		return strings.Join(val, ", "), true
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := stringify(item)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ", "), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return "", false
	}
}
