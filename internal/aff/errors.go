package aff

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSyntax               = errors.New("malformed field")
	ErrMissingHeader        = errors.New("missing chart header")
	ErrDensityFactor        = errors.New("timing point density factor must be positive")
	ErrTrackRange           = errors.New("track out of range")
	ErrNegativeDuration     = errors.New("end tick before start tick")
	ErrNegativeBeatsPerLine = errors.New("beats per line below zero")
	ErrZeroBaseBPM          = errors.New("timing at tick 0 has zero bpm")
	ErrUnmatchedGroup       = errors.New("timinggroup(){ and }; are not balanced")
)

// FormatError reports a chart line that could not be parsed or failed
// validation. Line is 1-based; it is 0 for errors that belong to the whole
// document.
type FormatError struct {
	Line int
	Raw  string
	Kind EventKind
	// Reason is set when a validation rule rejected the event.
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("chart format error")
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Kind != KindUnknown {
		fmt.Fprintf(&b, " in %s event", e.Kind)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Raw != "" {
		fmt.Fprintf(&b, " (%q)", e.Raw)
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

// validationError marks failures raised by a validation rule, as opposed to
// a field that could not be read at all.
type validationError struct{ err error }

func (v validationError) Error() string { return v.err.Error() }
func (v validationError) Unwrap() error { return v.err }

func invalid(err error) error { return validationError{err: err} }

func wrapLine(kind EventKind, raw string, line int, err error) *FormatError {
	fe := &FormatError{Line: line, Raw: raw, Kind: kind, Err: err}
	var v validationError
	if errors.As(err, &v) {
		fe.Reason = v.err.Error()
		fe.Err = v.err
	}
	return fe
}
