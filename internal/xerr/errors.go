// Package xerr implements the error taxonomy described in the system's
// error handling design: every public operation fails with one of a small
// fixed set of kinds (audio load, database, fingerprint, io, midi) rather
// than an ad-hoc error string.
package xerr

import (
	"fmt"

	"github.com/mdobak/go-xerrors"
)

// Kind identifies which member of the error taxonomy an Error belongs to.
type Kind string

const (
	KindAudioLoad   Kind = "audio_load"
	KindDatabase    Kind = "database"
	KindFingerprint Kind = "fingerprint"
	KindIO          Kind = "io"
	KindMIDI        Kind = "midi"
)

// Error wraps a taxonomy Kind, an optional underlying cause, and a
// go-xerrors value that carries a captured stack trace for diagnostics.
// The stack trace is never written anywhere by the library itself; callers
// that want it can format the error with Debug.
type Error struct {
	Kind  Kind
	Msg   string
	cause error
	inner error
}

func build(kind Kind, msg string, cause error) *Error {
	return &Error{
		Kind:  kind,
		Msg:   msg,
		cause: cause,
		inner: xerrors.New(msg, xerrors.WithStackTrace()),
	}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// Debug renders the captured stack trace alongside the message, for
// debug-verbosity CLI logging only.
func (e *Error) Debug() string {
	return fmt.Sprintf("%+v", e.inner)
}

func AudioLoad(msg string, cause error) error   { return build(KindAudioLoad, msg, cause) }
func Database(msg string, cause error) error    { return build(KindDatabase, msg, cause) }
func Fingerprint(msg string, cause error) error { return build(KindFingerprint, msg, cause) }
func IO(msg string, cause error) error          { return build(KindIO, msg, cause) }
func MIDI(msg string, cause error) error        { return build(KindMIDI, msg, cause) }

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
