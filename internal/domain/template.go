package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrMissingAttribute  = errors.New("missing attribute")
	ErrMalformedTemplate = errors.New("malformed template")
	ErrOutsideRoot       = errors.New("destination outside root")
)

// MissingAttributeError lists the template keys absent from an image's
// attributes.
type MissingAttributeError struct {
	Keys []string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("missing attribute %s", strings.Join(quoteAll(e.Keys), ", "))
}

func (e *MissingAttributeError) Is(target error) bool {
	return target == ErrMissingAttribute
}

type segment struct {
	text        string
	placeholder bool
}

// Template is a parsed destination pattern such as "{Year}/{Month}/{Name}".
// "{{" and "}}" stand for literal braces.
type Template struct {
	raw      string
	segments []segment
}

func ParseTemplate(s string) (Template, error) {
	var (
		segments []segment
		literal  strings.Builder
	)
	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, segment{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '{':
			if i+1 < len(s) && s[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(s[i+1:], "{}")
			if end < 0 || s[i+1+end] != '}' {
				return Template{}, fmt.Errorf("%w: unclosed placeholder at offset %d in %q", ErrMalformedTemplate, i, s)
			}
			name := s[i+1 : i+1+end]
			if name == "" {
				return Template{}, fmt.Errorf("%w: empty placeholder at offset %d in %q", ErrMalformedTemplate, i, s)
			}
			flush()
			segments = append(segments, segment{text: name, placeholder: true})
			i += end + 1
		case '}':
			if i+1 < len(s) && s[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return Template{}, fmt.Errorf("%w: unmatched '}' at offset %d in %q", ErrMalformedTemplate, i, s)
		default:
			literal.WriteByte(c)
		}
	}
	flush()

	return Template{raw: s, segments: segments}, nil
}

func (t Template) String() string {
	return t.raw
}

// Keys returns the placeholder names in order of appearance, duplicates
// included.
func (t Template) Keys() []string {
	var keys []string
	for _, seg := range t.segments {
		if seg.placeholder {
			keys = append(keys, seg.text)
		}
	}
	return keys
}

// Expand substitutes every placeholder. Path separators inside attribute
// values become underscores. It fails without producing output if any
// referenced key is absent.
func (t Template) Expand(attrs Attributes) (string, error) {
	var missing []string
	seen := map[string]bool{}
	for _, seg := range t.segments {
		if !seg.placeholder || seen[seg.text] {
			continue
		}
		seen[seg.text] = true
		if _, ok := attrs[seg.text]; !ok {
			missing = append(missing, seg.text)
		}
	}
	if len(missing) > 0 {
		return "", &MissingAttributeError{Keys: missing}
	}

	var b strings.Builder
	for _, seg := range t.segments {
		if seg.placeholder {
			b.WriteString(separatorReplacer.Replace(attrs[seg.text]))
		} else {
			b.WriteString(seg.text)
		}
	}
	return b.String(), nil
}

// Resolve expands the template and joins it onto root. The result must stay
// inside root.
func (t Template) Resolve(root string, attrs Attributes) (string, error) {
	expanded, err := t.Expand(attrs)
	if err != nil {
		return "", err
	}
	path := filepath.Join(root, expanded)
	rel, err := filepath.Rel(filepath.Clean(root), path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q resolves to %s", ErrOutsideRoot, t.raw, path)
	}
	return path, nil
}

// ResolvePath parses tmpl and resolves it against attrs under root.
func ResolvePath(root, tmpl string, attrs Attributes) (string, error) {
	t, err := ParseTemplate(tmpl)
	if err != nil {
		return "", err
	}
	return t.Resolve(root, attrs)
}

var separatorReplacer = strings.NewReplacer("/", "_", "\\", "_")

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
