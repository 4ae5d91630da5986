package convert

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrValidation = errors.New("invalid request")
	ErrParse      = errors.New("unreadable input")
)

// ErrorKind classifies conversion failures.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindParse      ErrorKind = "parse"
)

// ValidationError reports a request that was rejected before any conversion
// work was done.
type ValidationError struct {
	// Field is the JSON name of the offending field.
	Field string `json:"field"`
	// Message is suitable for showing to the caller as is.
	Message string `json:"message"`
	// Allowed lists the accepted values when the field is an enumeration.
	Allowed []string `json:"allowed,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Kind returns KindValidation.
func (e *ValidationError) Kind() ErrorKind { return KindValidation }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ParseError reports input that could not be read at all.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Kind returns KindParse.
func (e *ParseError) Kind() ErrorKind { return KindParse }

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// KindOf returns the kind of err, or "" when err did not come from a
// conversion.
func KindOf(err error) ErrorKind {
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}
