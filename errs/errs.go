// Package errs defines the sentinel errors and error kinds shared across
// Sky's storage and protocol layers.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error the way the wire protocol and the recovery logic
// need to distinguish them.
type Kind uint8

const (
	// KindDecode marks malformed wire input. A Decode error on the request
	// stream terminates the connection: the stream offset is no longer
	// trustworthy.
	KindDecode Kind = iota + 1
	// KindNotFound marks a missing table, action, or property.
	KindNotFound
	// KindConflict marks a duplicate registration (action or property name
	// already taken).
	KindConflict
	// KindSchema marks a value whose type disagrees with its property's
	// declared data type.
	KindSchema
	// KindIO marks a disk failure.
	KindIO
	// KindCorruption marks a block checksum mismatch.
	KindCorruption
	// KindProtocol marks an unknown request name or a missing required
	// field in an envelope.
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindDecode:
		return "decode"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindSchema:
		return "schema"
	case KindIO:
		return "io"
	case KindCorruption:
		return "corruption"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is a Kind-tagged error carrying a human-readable message. Clients
// must not parse the message; it exists for operators and logs.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a Kind-tagged error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a Kind-tagged error that wraps cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the Kind of err if it (or something it wraps) is an *Error,
// or 0 if not.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// Decode-time sentinel errors. These are used directly (via errors.Is) for
// the codec's own failure modes; higher layers wrap them into *Error with a
// byte-offset message via DecodeError.
var (
	ErrShortRead        = errors.New("short read")
	ErrTruncatedInteger = errors.New("truncated integer")
	ErrMalformedLength  = errors.New("malformed length")
	ErrUnknownKind      = errors.New("unknown leading byte")
)

// Block/header sentinel errors.
var (
	ErrInvalidHeaderSize  = errors.New("invalid header size")
	ErrInvalidHeaderFlags = errors.New("invalid header flags")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
)

// DecodeError wraps a decode-time sentinel with the byte offset at which it
// occurred.
func DecodeError(offset int, cause error) *Error {
	return Wrap(KindDecode, cause, "decode failed at offset %d", offset)
}
