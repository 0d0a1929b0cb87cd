// Package netspeakerr defines the typed error kinds of spec.md §7 and their
// disposition at the RPC boundary. Internal components return *Error with
// a Kind; internal/orchestrator and internal/proxy carry that Kind in
// proxy.SearchError, and Kind.Status maps it to the wire-level status
// codes INVALID_QUERY, INTERNAL, and INVALID_CORPUS.
package netspeakerr

import "fmt"

// Kind is one of the error taxonomy rows of spec.md §7.
type Kind int

const (
	// InvalidPattern means the normalizer was handed a malformed AST.
	InvalidPattern Kind = iota
	// ExpansionOverflow means every expansion of a pattern exceeded
	// max_norm_queries before a single complete sequence was produced.
	ExpansionOverflow
	// UnknownWord means a postlist lookup failed for one unit of a
	// normalized query. Never fatal — collected per result.
	UnknownWord
	// CorruptIndex means an on-disk structure failed an invariant check.
	// Fatal for the request.
	CorruptIndex
	// IncompatibleCorpora means two backends advertise the same corpus key
	// with different name/language. Raised only at proxy init.
	IncompatibleCorpora
	// InvalidCorpus means a dispatch request named a corpus key no known
	// backend serves.
	InvalidCorpus
)

func (k Kind) String() string {
	switch k {
	case InvalidPattern:
		return "InvalidPattern"
	case ExpansionOverflow:
		return "ExpansionOverflow"
	case UnknownWord:
		return "UnknownWord"
	case CorruptIndex:
		return "CorruptIndex"
	case IncompatibleCorpora:
		return "IncompatibleCorpora"
	case InvalidCorpus:
		return "InvalidCorpus"
	default:
		return "Unknown"
	}
}

// Status is the RPC-level disposition of a Kind, per spec.md §7.
type Status int

const (
	StatusInvalidQuery Status = iota
	StatusInternal
	StatusInvalidCorpus
	// StatusNone means this Kind never crosses the RPC boundary by itself
	// (UnknownWord is collected into a successful result).
	StatusNone
)

// Status maps a Kind to its RPC disposition.
func (k Kind) Status() Status {
	switch k {
	case InvalidPattern, ExpansionOverflow:
		return StatusInvalidQuery
	case CorruptIndex:
		return StatusInternal
	case InvalidCorpus:
		return StatusInvalidCorpus
	default:
		return StatusNone
	}
}

// Error is the concrete error type returned by internal components.
type Error struct {
	Kind    Kind
	Message string
	// Cause is the wrapped underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is a netspeakerr *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as(err, &e) {
		return e.Kind == kind
	}
	return false
}

func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
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
