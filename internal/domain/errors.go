package domain

import (
	"errors"
	"fmt"
)

// FetchKind classifies session failures.
type FetchKind int

const (
	NotFound FetchKind = iota + 1
	Transport
	Unreadable
)

func (k FetchKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Transport:
		return "transport"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// FetchError is returned by sessions and the fixture store.
type FetchError struct {
	Kind    FetchKind
	Locator string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %s", e.Locator, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Locator, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches any FetchError of the same kind, so callers can write
// errors.Is(err, domain.ErrNotFound).
func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// DecodeError is returned by the decoder when a payload is malformed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err == nil {
		return "decode: malformed payload"
	}
	return fmt.Sprintf("decode: malformed payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	_, ok := target.(*DecodeError)
	return ok
}

var (
	ErrNotFound   error = &FetchError{Kind: NotFound}
	ErrTransport  error = &FetchError{Kind: Transport}
	ErrUnreadable error = &FetchError{Kind: Unreadable}
	ErrMalformed  error = &DecodeError{}
)

// NewFetchError builds a FetchError for locator.
func NewFetchError(kind FetchKind, locator string, err error) error {
	return &FetchError{Kind: kind, Locator: locator, Err: err}
}

// ErrorKind returns a stable label for err suitable for logs and events.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind.String()
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return "malformed"
	}
	return "unknown"
}
