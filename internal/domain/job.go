package domain

import "fmt"

// Mode selects how a file reaches its destination.
type Mode string

const (
	ModeCopy Mode = "copy"
	ModeMove Mode = "move"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCopy, ModeMove:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown method %q, use copy or move", s)
	}
}

// Decoder names a metadata backend.
type Decoder string

const (
	DecoderGoExif   Decoder = "goexif"
	DecoderExifTool Decoder = "exiftool"
)

func ParseDecoder(s string) (Decoder, error) {
	switch Decoder(s) {
	case DecoderGoExif, DecoderExifTool:
		return Decoder(s), nil
	default:
		return "", fmt.Errorf("unknown decoder %q, use goexif or exiftool", s)
	}
}

// Job is one configured source to destination transfer.
type Job struct {
	Section     string
	Source      string
	Destination string
	Template    Template
	Mode        Mode
	Overwrite   bool
	Log         bool
	Enabled     bool
	Decoder     Decoder
	Rules       TimestampRules
}
