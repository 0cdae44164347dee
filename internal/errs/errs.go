package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the tool boundary can decide how to
// present it without string matching.
type Kind int

const (
	KindInvalidArgument Kind = iota + 1
	KindStorageUnavailable
	KindUpstreamUnavailable
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid argument"
	case KindStorageUnavailable:
		return "storage unavailable"
	case KindUpstreamUnavailable:
		return "upstream unavailable"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "unknown"
}

// Error carries a kind plus the usual message/cause pair.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Msg != "" {
			return fmt.Sprintf("%s: %v", e.Msg, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// InvalidArgument reports bad caller input. No mutation happened.
func InvalidArgument(msg string) error {
	return &Error{Kind: KindInvalidArgument, Msg: msg}
}

// StorageUnavailable reports that the backing store could not be
// opened, read or written.
func StorageUnavailable(msg string, err error) error {
	return &Error{Kind: KindStorageUnavailable, Msg: msg, Err: err}
}

// UpstreamUnavailable reports a failed or timed-out call to an
// external HTTP dependency.
func UpstreamUnavailable(msg string, err error) error {
	return &Error{Kind: KindUpstreamUnavailable, Msg: msg, Err: err}
}

// Unauthorized reports a sender or recipient outside the allow-list.
func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

// KindOf returns the kind of err, or 0 when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsInvalidArgument(err error) bool { return KindOf(err) == KindInvalidArgument }

func IsStorageUnavailable(err error) bool { return KindOf(err) == KindStorageUnavailable }

func IsUpstreamUnavailable(err error) bool { return KindOf(err) == KindUpstreamUnavailable }

func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }
