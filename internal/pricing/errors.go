package pricing

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a search stopped producing fare paths.
type ErrorKind int

const (
	// KindExhausted means no more fare paths exist. It is the normal end of a search.
	KindExhausted ErrorKind = iota
	KindTooManyCombinations
	KindCancelled
	KindMaxCombosExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case KindExhausted:
		return "exhausted"
	case KindTooManyCombinations:
		return "too_many_combinations"
	case KindCancelled:
		return "cancelled"
	case KindMaxCombosExceeded:
		return "max_combos_exceeded"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Pricing error codes reported to the caller.
const (
	CodeMaxNumberCombosExceeded = "MAX_NUMBER_COMBOS_EXCEEDED"
	CodeTooManyCombos           = "TOO_MANY_COMBOS"
	CodeNoFareForClassUsed      = "NO_FARE_FOR_CLASS_USED"
	CodeTransactionTimeout      = "TRANSACTION_TIMEOUT"
)

// MsgMaxCombinationsExceeded is the reissue message recorded when an as-booked search fails.
const MsgMaxCombinationsExceeded = "MAX NBR COMBINATIONS EXCEEDED/USE SEGMENT SELECT"

// SearchError is returned by the search when it cannot produce the requested fare path.
type SearchError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *SearchError) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Is matches any SearchError of the same kind, so sentinels work with errors.Is.
func (e *SearchError) Is(target error) bool {
	var t *SearchError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrExhausted           = &SearchError{Kind: KindExhausted}
	ErrTooManyCombinations = &SearchError{Kind: KindTooManyCombinations, Code: CodeTooManyCombos}
	ErrCancelled           = &SearchError{Kind: KindCancelled, Code: CodeTransactionTimeout}
	ErrMaxCombosExceeded   = &SearchError{Kind: KindMaxCombosExceeded, Code: CodeMaxNumberCombosExceeded}
)

func newSearchError(kind ErrorKind, code, message string, err error) *SearchError {
	return &SearchError{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf returns the kind of a search error, and false for other errors.
func KindOf(err error) (ErrorKind, bool) {
	var se *SearchError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
