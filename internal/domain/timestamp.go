package domain

import "time"

const exifLayout = "2006:01:02 15:04:05"

// TimestampRules lists the attributes and layouts tried, in order, when
// resolving an image's capture time.
type TimestampRules struct {
	Attributes []string
	Layouts    []string
}

// DefaultTimestampRules prefers the original capture time over the
// digitization time over the generic modification tag.
func DefaultTimestampRules() TimestampRules {
	return TimestampRules{
		Attributes: []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"},
		Layouts: []string{
			exifLayout,
			"2006:01:02 15:04:05-07:00",
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05",
		},
	}
}

// ParseFailure is one attribute/layout pair that did not parse.
type ParseFailure struct {
	Attribute string
	Value     string
	Layout    string
	Err       error
}

// Resolve returns the first timestamp that parses, trying every layout for an
// attribute before moving to the next attribute. The returned string names
// the attribute that produced it. ok is false when nothing parsed.
func (r TimestampRules) Resolve(attrs Attributes) (t time.Time, source string, ok bool) {
	t, source, ok, _ = r.resolve(attrs)
	return t, source, ok
}

// ResolveVerbose is Resolve but also reports each failed attempt.
func (r TimestampRules) ResolveVerbose(attrs Attributes) (time.Time, string, bool, []ParseFailure) {
	return r.resolve(attrs)
}

func (r TimestampRules) resolve(attrs Attributes) (time.Time, string, bool, []ParseFailure) {
	var failures []ParseFailure
	for _, name := range r.Attributes {
		value, present := attrs[name]
		if !present {
			continue
		}
		for _, layout := range r.Layouts {
			parsed, err := time.ParseInLocation(layout, value, time.Local)
			if err == nil {
				return parsed, name, true, failures
			}
			failures = append(failures, ParseFailure{Attribute: name, Value: value, Layout: layout, Err: err})
		}
	}
	return time.Time{}, "", false, failures
}
