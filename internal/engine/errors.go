package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a transcript acquisition step failed.
type ErrorKind string

const (
	KindMissingCredential            ErrorKind = "missing_credential"
	KindListingFailed                ErrorKind = "listing_failed"
	KindNoCaptionsAvailable          ErrorKind = "no_captions_available"
	KindNoMatchingLanguage           ErrorKind = "no_matching_language"
	KindNoTranscriptsAvailable       ErrorKind = "no_transcripts_available"
	KindExtractionFailed             ErrorKind = "extraction_failed"
	KindTranscriptionServiceError    ErrorKind = "transcription_service_error"
	KindInvalidInput                 ErrorKind = "invalid_input"
	KindConcurrentExtractionConflict ErrorKind = "concurrent_extraction_conflict"
	KindTransport                    ErrorKind = "transport"
)

// Error is a typed failure carrying its kind and the operation that produced it.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an *Error with a formatted cause.
func Errorf(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WrapError tags err with kind. A nil err yields a kind-only error.
func WrapError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindTransport
// for errors that carry no kind (network failures, decode errors).
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransport
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
