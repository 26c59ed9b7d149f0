package domain

import (
	"path/filepath"
	"time"
)

// Attributes maps attribute names to their string form. Keys are only ever
// added during image construction.
type Attributes map[string]string

const (
	AttrName      = "Name"
	AttrExtension = "Extension"
)

// SetIfAbsent stores value under key unless the key is already present and
// reports whether it stored anything.
func (a Attributes) SetIfAbsent(key, value string) bool {
	if _, ok := a[key]; ok {
		return false
	}
	a[key] = value
	return true
}

// Set stores value under key, replacing any previous value.
func (a Attributes) Set(key, value string) {
	a[key] = value
}

func (a Attributes) Get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

// TimestampSourceModTime marks a timestamp taken from the filesystem.
const TimestampSourceModTime = "mtime"

// Image is one source file together with the attributes used to file it.
type Image struct {
	Path            string
	Attributes      Attributes
	Timestamp       time.Time
	TimestampSource string
}

func newAttributes(path string) Attributes {
	name := filepath.Base(path)
	return Attributes{
		AttrName:      name,
		AttrExtension: filepath.Ext(name),
	}
}
