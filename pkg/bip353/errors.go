package bip353

import (
	"errors"
	"fmt"
)

// Kind classifies a resolution failure.
type Kind int

const (
	// KindDNS covers transport failures, NXDOMAIN, empty lookups and DNSSEC
	// validation failures reported by the DNS client.
	KindDNS Kind = iota + 1
	// KindInvalidAddress indicates a malformed user@domain input.
	KindInvalidAddress
	// KindInvalidRecord indicates the DNS response held zero or multiple
	// Bitcoin URI candidates, or a candidate without the bitcoin: scheme.
	KindInvalidRecord
	// KindDNSSEC is reserved for a dedicated DNSSEC failure signal. The DNS
	// client currently reports validation failures as generic lookup errors,
	// so this kind is never produced; callers must not rely on seeing it.
	KindDNSSEC
)

// String returns a short human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindDNS:
		return "dns error"
	case KindInvalidAddress:
		return "invalid address"
	case KindInvalidRecord:
		return "invalid record"
	case KindDNSSEC:
		return "dnssec error"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every operation in this package.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // underlying cause, may be nil
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// ErrorKind extracts the Kind from err. It returns 0 if err does not wrap
// an *Error from this package.
func ErrorKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}
