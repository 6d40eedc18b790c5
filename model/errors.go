package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies registry failures. The kind token leads every
// error message so that it survives the trip through the ledger, where only
// the message string reaches the client.
type ErrorKind string

const (
	KindUnauthorized       ErrorKind = "UNAUTHORIZED"
	KindDuplicateRecord    ErrorKind = "DUPLICATE_RECORD"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindInvalidInput       ErrorKind = "INVALID_INPUT"
	KindAlreadyRevoked     ErrorKind = "ALREADY_REVOKED"
	KindNotInitialized     ErrorKind = "NOT_INITIALIZED"
	KindAlreadyInitialized ErrorKind = "ALREADY_INITIALIZED"
	KindStoreUnavailable   ErrorKind = "STORE_UNAVAILABLE"
	KindUnknown            ErrorKind = ""
)

var allKinds = []ErrorKind{
	KindUnauthorized,
	KindDuplicateRecord,
	KindNotFound,
	KindInvalidInput,
	KindAlreadyRevoked,
	KindNotInitialized,
	KindAlreadyInitialized,
	KindStoreUnavailable,
}

// RegistryError is a failure with a kind.
type RegistryError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *RegistryError) Error() string {
	if e.Msg == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Msg
}

func (e *RegistryError) Unwrap() error { return e.Err }

// Is matches any RegistryError of the same kind, so the sentinels below
// work with errors.Is.
func (e *RegistryError) Is(target error) bool {
	var t *RegistryError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnauthorized       = &RegistryError{Kind: KindUnauthorized}
	ErrDuplicateRecord    = &RegistryError{Kind: KindDuplicateRecord}
	ErrNotFound           = &RegistryError{Kind: KindNotFound}
	ErrInvalidInput       = &RegistryError{Kind: KindInvalidInput}
	ErrAlreadyRevoked     = &RegistryError{Kind: KindAlreadyRevoked}
	ErrNotInitialized     = &RegistryError{Kind: KindNotInitialized}
	ErrAlreadyInitialized = &RegistryError{Kind: KindAlreadyInitialized}
	ErrStoreUnavailable   = &RegistryError{Kind: KindStoreUnavailable}
)

// Errorf builds a RegistryError of the given kind.
func Errorf(kind ErrorKind, format string, args ...interface{}) error {
	return &RegistryError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind ErrorKind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &RegistryError{Kind: kind, Msg: msg + ": " + err.Error(), Err: err}
}

// KindOf recovers the kind of err. Typed errors are inspected directly;
// otherwise the earliest kind token in the message wins, which is how errors
// returned by the ledger (plain strings) are classified. Tokens that appear
// later can only come from echoed input.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Kind
	}
	msg := err.Error()
	found, at := KindUnknown, -1
	for _, k := range allKinds {
		if idx := strings.Index(msg, string(k)+":"); idx >= 0 && (at < 0 || idx < at) {
			found, at = k, idx
		}
	}
	if found != KindUnknown {
		return found
	}
	// Messages may end with a bare token, e.g. "... desc = NOT_FOUND".
	for _, k := range allKinds {
		if strings.HasSuffix(msg, string(k)) {
			return k
		}
	}
	return KindUnknown
}

// FromRemote rebuilds a typed error from an error whose message carries a
// kind token. Errors without a token are returned unchanged.
func FromRemote(err error) error {
	kind := KindOf(err)
	if err == nil || kind == KindUnknown {
		return err
	}
	var re *RegistryError
	if errors.As(err, &re) {
		return err
	}
	msg := err.Error()
	if idx := strings.Index(msg, string(kind)+":"); idx >= 0 {
		msg = strings.TrimSpace(msg[idx+len(kind)+1:])
	}
	return &RegistryError{Kind: kind, Msg: msg, Err: err}
}
