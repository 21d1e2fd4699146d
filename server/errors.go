package server

import "fmt"

// Kind enumerates the error categories spec.md §7 names. A single wrapped
// error type carries the Kind rather than a per-error-type hierarchy
// (Design Note §9 "Deep inheritance" applies to error taxonomies too).
type Kind int

const (
	KindInvalidMethod Kind = iota
	KindInvalidRequestTarget
	KindInvalidHTTPProtocol
	KindInvalidHeaderName
	KindRequestHeaderTooLarge
	KindMalformedChunk
	KindUnexpectedEOF
	KindSocketTimeout
	KindClientAbort
	KindBufferOverflow
	KindHandshakeFailed
	KindRejected
)

func (k Kind) String() string {
	switch k {
	case KindInvalidMethod:
		return "InvalidMethod"
	case KindInvalidRequestTarget:
		return "InvalidRequestTarget"
	case KindInvalidHTTPProtocol:
		return "InvalidHttpProtocol"
	case KindInvalidHeaderName:
		return "InvalidHeaderName"
	case KindRequestHeaderTooLarge:
		return "RequestHeaderTooLarge"
	case KindMalformedChunk:
		return "MalformedChunk"
	case KindUnexpectedEOF:
		return "UnexpectedEof"
	case KindSocketTimeout:
		return "SocketTimeout"
	case KindClientAbort:
		return "ClientAbort"
	case KindBufferOverflow:
		return "BufferOverflow"
	case KindHandshakeFailed:
		return "HandshakeFailed"
	case KindRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// ProtocolError is the single error type the engine raises for all of the
// kinds in spec.md §7. Wrapping an inner cause (socket error, etc.) keeps
// errors.Is/As usable via Unwrap.
type ProtocolError struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *ProtocolError) Error() string {
	if e.Msg == "" {
		if e.Cause != nil {
			return fmt.Sprintf("byteengine: %s: %v", e.Kind, e.Cause)
		}
		return fmt.Sprintf("byteengine: %s", e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("byteengine: %s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("byteengine: %s: %s", e.Kind, e.Msg)
}

func (e *ProtocolError) Unwrap() error { return e.Cause }

func newProtoErr(kind Kind, msg string) *ProtocolError {
	return &ProtocolError{Kind: kind, Msg: msg}
}

func wrapProtoErr(kind Kind, msg string, cause error) *ProtocolError {
	return &ProtocolError{Kind: kind, Msg: msg, Cause: cause}
}

// NewTimeoutError returns a ProtocolError tagged KindSocketTimeout, for
// transport adapters outside this package (e.g. the gnet-backed selector
// endpoint) that need to raise the same read-timeout taxonomy spec.md §7
// describes without access to the unexported constructors.
func NewTimeoutError(msg string) error {
	return newProtoErr(KindSocketTimeout, msg)
}

// KindOf returns the Kind carried by err if it (or something it wraps) is a
// *ProtocolError, and ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var pe *ProtocolError
	for err != nil {
		if p, ok := err.(*ProtocolError); ok {
			pe = p
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if pe == nil {
		return 0, false
	}
	return pe.Kind, true
}
