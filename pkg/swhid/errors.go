package swhid

import (
	"errors"
	"fmt"
)

// Kind tags an Error with the failure class.
type Kind int

const (
	KindIo Kind = iota + 1
	KindInvalidFormat
	KindInvalidNamespace
	KindInvalidVersion
	KindInvalidObjectType
	KindInvalidHash
	KindInvalidHashLength
	KindInvalidPath
	KindInvalidInput
	KindDuplicateEntry
	KindInvalidQualifier
	KindInvalidQualifierValue
	KindUnknownQualifier
	KindUnsupportedOperation
)

var kindNames = map[Kind]string{
	KindIo:                    "I/O error",
	KindInvalidFormat:         "invalid format",
	KindInvalidNamespace:      "invalid namespace",
	KindInvalidVersion:        "invalid version",
	KindInvalidObjectType:     "invalid object type",
	KindInvalidHash:           "invalid hash",
	KindInvalidHashLength:     "invalid hash length",
	KindInvalidPath:           "invalid path",
	KindInvalidInput:          "invalid input",
	KindDuplicateEntry:        "duplicate entry",
	KindInvalidQualifier:      "invalid qualifier",
	KindInvalidQualifierValue: "invalid qualifier value",
	KindUnknownQualifier:      "unknown qualifier",
	KindUnsupportedOperation:  "unsupported operation",
}

// String returns the human-readable name of k.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the single error type returned by this module's packages.
// Err, when set, is the underlying cause (e.g. the *fs.PathError of an I/O
// failure) and is reachable through errors.Is / errors.As.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, &Error{Kind: k}) match any Error of kind k.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == "" && t.Err == nil
}

// Errorf returns an *Error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind wrapping err. It returns nil when
// err is nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// IsKind reports whether any error in err's chain is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
