package object

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("object not found")
	ErrAmbiguous       = errors.New("ambiguous reference")
	ErrCorrupt         = errors.New("corrupt object")
	ErrMalformedTree   = errors.New("malformed tree")
	ErrMalformedHeader = errors.New("malformed header")
	ErrDepthExceeded   = errors.New("tree depth exceeded")
	ErrInvalidHash     = errors.New("invalid hash")
	ErrTypeMismatch    = errors.New("object type mismatch")
)

// AmbiguousError reports a name or prefix that matched more than one
// object. Candidates is sorted.
type AmbiguousError struct {
	Prefix     string
	Candidates []Hash
}

func (e *AmbiguousError) Error() string {
	if e == nil {
		return "<nil>"
	}
	names := make([]string, len(e.Candidates))
	for i, h := range e.Candidates {
		names[i] = string(h)
	}
	return fmt.Sprintf("%s %q: candidates are %s", ErrAmbiguous, e.Prefix, strings.Join(names, ", "))
}

func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}

// CorruptError reports an object whose stored bytes cannot be trusted.
// Declared and Actual are set for length mismatches and are -1 otherwise.
type CorruptError struct {
	Hash     Hash
	Reason   string
	Declared int
	Actual   int
	Err      error
}

func (e *CorruptError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := ErrCorrupt.Error()
	if e.Hash != "" {
		msg += " " + string(e.Hash)
	}
	msg += ": " + e.Reason
	if e.Declared >= 0 && e.Actual >= 0 {
		msg += fmt.Sprintf(" (declared=%d, actual=%d)", e.Declared, e.Actual)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *CorruptError) Is(target error) bool {
	return target == ErrCorrupt
}

func corrupt(reason string) *CorruptError {
	return &CorruptError{Reason: reason, Declared: -1, Actual: -1}
}
