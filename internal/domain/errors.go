package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat matches every FormatError.
	ErrFormat = errors.New("malformed GHCN record")

	// ErrTransfer matches every TransferError.
	ErrTransfer = errors.New("remote transfer failed")

	// ErrUnsupportedCriterion is returned when a filter dimension has no
	// corresponding column in the store being filtered.
	ErrUnsupportedCriterion = errors.New("unsupported filter criterion")
)

// FormatError identifies the file and line that could not be decoded.
// Err is the decoder error, usually a *fixedwidth.TruncatedLineError or a
// *fixedwidth.FieldError.
type FormatError struct {
	Path string
	Line int
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// TransferError reports a failed remote fetch. StatusCode is zero when the
// request never produced a response.
type TransferError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransferError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

func (e *TransferError) Is(target error) bool { return target == ErrTransfer }
