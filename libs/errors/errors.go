// Package errors attaches call-site traces and free-form annotations to errors
// so that a log line at the service boundary shows where a failure came from.
// The wrapped error masks the original, so callers that branch on an error
// must look through it with Cause (or the standard errors.As).
package errors

import (
	"errors"
	"fmt"
	"strings"
)

type aerr struct {
	err         error
	trace       []string
	annotations []string
}

func wrap(err error) aerr {
	if e, ok := err.(aerr); ok {
		return e
	}
	return aerr{err: err}
}

// Error implements the error interface.
func (e aerr) Error() string {
	es := e.err.Error()
	if len(e.annotations) != 0 {
		es += " (" + strings.Join(e.annotations, ", ") + ")"
	}
	if len(e.trace) != 0 {
		es += " [" + strings.Join(e.trace, ", ") + "]"
	}
	return es
}

// Unwrap returns the original error.
func (e aerr) Unwrap() error {
	return e.err
}

// New is an alias of the standard library's errors.New.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf is an alias of fmt.Errorf.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// As is an alias of the standard library's errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Cause returns the original error ignoring any traces or annotations.
func Cause(err error) error {
	if e, ok := err.(aerr); ok {
		return e.err
	}
	return err
}
