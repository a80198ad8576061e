package waveform

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned by New for unusable durations.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUnknownNote is returned when a note name is not in the note table.
	ErrUnknownNote = errors.New("unknown note")
	// ErrInvalidArgument is returned for malformed call arguments, e.g. an
	// empty waveform list passed to Normalize.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIO wraps failures reading or writing waveform files.
	ErrIO = errors.New("waveform i/o")
	// ErrParse is matched by every decoding failure, including *ParseError.
	ErrParse = errors.New("waveform parse")
)

// ParseError reports a non-numeric token in a text waveform.
type ParseError struct {
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid sample %q: %v", e.Line, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match a *ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }
