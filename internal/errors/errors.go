package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	InvalidConfig       Kind = "invalid_config"
	NotFound            Kind = "not_found"
	NoMetadata          Kind = "no_metadata"
	UnparsableTimestamp Kind = "unparsable_timestamp"
	MissingAttribute    Kind = "missing_attribute"
	DestinationExists   Kind = "destination_exists"
	IOFailure           Kind = "io_failure"
	Internal            Kind = "internal"
)

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// KindOf returns the kind of the outermost AppError in err's chain, or
// Internal when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

func UserMessage(err error) string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case InvalidConfig:
		if appErr.Path != "" {
			return fmt.Sprintf("Invalid configuration [%s]: %v", appErr.Path, appErr.Err)
		}
		return fmt.Sprintf("Invalid configuration: %v", appErr.Err)
	case NotFound:
		return fmt.Sprintf("Path not found: %s", appErr.Path)
	case NoMetadata:
		return fmt.Sprintf("No metadata: %s", appErr.Path)
	case UnparsableTimestamp:
		return fmt.Sprintf("Unparsable timestamp in %s: %v", appErr.Path, appErr.Err)
	case MissingAttribute:
		return fmt.Sprintf("Cannot file %s: %v", appErr.Path, appErr.Err)
	case DestinationExists:
		return fmt.Sprintf("Destination exists: %s", appErr.Path)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s: %v", appErr.Path, appErr.Err)
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}
