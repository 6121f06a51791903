package pipeline

import (
	"errors"
	"fmt"
)

var (
	errNULByte  = errors.New("NUL byte found, file is not single-byte encoded text")
	errNoHeader = errors.New("file has no header row")
)

// DecodingError is returned when a file cannot be decoded as ISO-8859-1 text.
type DecodingError struct {
	Path string
	Err  error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("unable to decode %s as ISO-8859-1: %v", e.Path, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// MalformedRowError is returned when a file is not a consistent delimited table.
type MalformedRowError struct {
	Path string
	Line int
	Err  error
}

func (e *MalformedRowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed row in %s at line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed file %s: %v", e.Path, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }
