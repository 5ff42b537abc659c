// Package caseerr defines the error kinds surfaced by the casedata service.
// Each kind's name is part of the client facing error body.
package caseerr

import (
	"fmt"

	"github.com/sprucehealth/casedata/libs/errors"
)

// Kind classifies a failure.
type Kind int

const (
	// StoreError is the backing store being unreachable or rejecting a request.
	// Errors that carry no kind are treated as store errors.
	StoreError Kind = iota
	// MissingParameter is a required identifier that is absent or blank.
	MissingParameter
	// ValidationError is a record failing its field constraints.
	ValidationError
	// DataNotFound is a read that matched nothing.
	DataNotFound
	// DeserializationError is a stored item that cannot be read back.
	DeserializationError
)

var kindNames = map[Kind]string{
	StoreError:           "StoreError",
	MissingParameter:     "MissingParameter",
	ValidationError:      "ValidationError",
	DataNotFound:         "DataNotFound",
	DeserializationError: "DeserializationError",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified failure. Msg is safe to return to callers, Err is the
// underlying cause and is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + " - " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + " - " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of kind k.
func New(k Kind, msg string) error {
	return &Error{Kind: k, Msg: msg}
}

// Wrap returns an error of kind k caused by err.
func Wrap(k Kind, err error, msg string) error {
	return &Error{Kind: k, Msg: msg, Err: err}
}

// As returns the classified error inside err. Unclassified errors come back
// as a StoreError with a generic message.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: StoreError, Msg: "request to the data store failed", Err: err}
}

// KindOf returns the kind of err. A nil error has no kind and returns -1.
func KindOf(err error) Kind {
	if err == nil {
		return -1
	}
	return As(err).Kind
}

// Is reports whether err is of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}
