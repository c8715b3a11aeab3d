// Package failure defines the error taxonomy of the generation client.
//
// Every error that reaches the user is a *Error with a Kind:
//
//   - KindValidation: a precondition or payload-shape failure, never retried
//   - KindNetwork: no response reached the client, retryable
//   - KindTimeout: an attempt exceeded its deadline, retryable
//   - KindService: the service answered with an error or a non-artifact body
//   - KindDelivery: the artifact was generated but could not be saved
//
// Use KindOf to classify any error, including wrapped ones:
//
//	if failure.KindOf(err) == failure.KindTimeout {
//	    // ...
//	}
package failure

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNetwork
	KindTimeout
	KindService
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindService:
		return "service"
	case KindDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// Error is a classified failure.
type Error struct {
	Kind Kind

	// Op names the step that failed, e.g. "send" or "validate".
	Op string

	// Message is a short description; Err is appended when set.
	Message string

	// StatusCode is the HTTP status for KindService responses, 0 otherwise.
	StatusCode int

	// Body is a sanitized excerpt of the response body, if any.
	Body string

	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Body != "" {
		b.WriteString(" - ")
		b.WriteString(e.Body)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether another transport attempt may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindService:
		return true
	}
	return false
}

// Validation returns a KindValidation error.
func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Network returns a KindNetwork error wrapping err.
func Network(op string, err error) *Error {
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

// Timeout returns a KindTimeout error wrapping err.
func Timeout(op, message string, err error) *Error {
	return &Error{Kind: KindTimeout, Op: op, Message: message, Err: err}
}

// Service returns a KindService error for a response with the given status
// code and raw body. The body is sanitized and shortened.
func Service(op string, status int, message string, body []byte) *Error {
	return &Error{Kind: KindService, Op: op, StatusCode: status, Message: message, Body: Excerpt(body, excerptLen)}
}

// Delivery returns a KindDelivery error.
func Delivery(op, message string) *Error {
	return &Error{Kind: KindDelivery, Op: op, Message: message}
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err is a *Error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

const excerptLen = 200

var textPolicy = bluemonday.StrictPolicy()

// Excerpt turns a response body into a single-line plain-text excerpt of at
// most n runes. HTML markup (error pages) is stripped.
func Excerpt(body []byte, n int) string {
	text := html.UnescapeString(string(textPolicy.SanitizeBytes(body)))
	s := strings.Join(strings.Fields(text), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
