package replication

import (
	"errors"
	"strings"

	"github.com/ipfs/go-cid"
)

// Kind is a stable category for programmatic error handling.
// Callers branch on Kind, never on Error() text.
type Kind string

const (
	// KindNotFound: a hash resolves to no local content.
	KindNotFound Kind = "NotFound"
	// KindUnknownOrMismatchedType: the type tag is not a replicable kind, or
	// the payload does not decode as that kind.
	KindUnknownOrMismatchedType Kind = "UnknownOrMismatchedType"
	// KindRemoteInvocationFailure: the remote channel failed or the remote
	// store rejected the call.
	KindRemoteInvocationFailure Kind = "RemoteInvocationFailure"
	// KindInvariantViolation: a payload re-encodes to a different hash.
	KindInvariantViolation Kind = "InvariantViolation"
	// KindInternal: local store I/O failed.
	KindInternal Kind = "Internal"
)

// Error is the structured error returned by every export and import call.
type Error struct {
	Kind    Kind
	Op      string  // "export-piece", "export-space", "export-playset", "import-piece"
	ID      cid.Cid // the hash being handled, when known
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.ID.Defined() {
		b.WriteString(" ")
		b.WriteString(e.ID.String())
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func newError(kind Kind, op string, id cid.Cid, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, ID: id, Message: msg, Cause: cause}
}

// IsKind reports whether the outermost *Error in err's chain has the given
// Kind. Use RemoteKind to see why a remote refused a push.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the Kind of the outermost *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// RemoteKind returns the Kind of the innermost *Error in err's chain, or "".
// A push the remote refused is reported as KindRemoteInvocationFailure
// wrapping the remote's own error, so RemoteKind recovers the remote's
// reason (for example KindUnknownOrMismatchedType). For errors that wrap no
// other *Error it equals KindOf.
func RemoteKind(err error) Kind {
	var kind Kind
	for err != nil {
		if e, ok := err.(*Error); ok && e != nil {
			kind = e.Kind
		}
		err = errors.Unwrap(err)
	}
	return kind
}
