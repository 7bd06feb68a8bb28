package labeling

import (
	"errors"
	"net/http"
)

const ErrNoImageMessage = "No image provided (base64 expected in 'image' field)."

// ErrorKind classifies every failure the handler can report.
type ErrorKind int

const (
	// ClientInputError means the request carried no usable image.
	ClientInputError ErrorKind = iota + 1
	// MalformedPayloadError covers bodies that are not valid JSON objects,
	// non-string image values and invalid base64.
	MalformedPayloadError
	// UpstreamError is any failure from the label detector, and anything
	// unexpected inside the handler.
	UpstreamError
)

// Malformed payloads are reported as 500, not 400. Existing clients only
// distinguish "missing image" from everything else.
var statusByKind = map[ErrorKind]int{
	ClientInputError:      http.StatusBadRequest,
	MalformedPayloadError: http.StatusInternalServerError,
	UpstreamError:         http.StatusInternalServerError,
}

func (k ErrorKind) String() string {
	switch k {
	case ClientInputError:
		return "client_input"
	case MalformedPayloadError:
		return "malformed_payload"
	case UpstreamError:
		return "upstream"
	default:
		return "unknown"
	}
}

// StatusCode returns the HTTP status reported for this kind.
func (k ErrorKind) StatusCode() int {
	if status, ok := statusByKind[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a classified handler failure. Its message is what ends up in
// the response body.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

var errNoImage = &Error{Kind: ClientInputError, Err: errors.New(ErrNoImageMessage)}

func malformed(err error) *Error {
	return &Error{Kind: MalformedPayloadError, Err: err}
}

func upstream(err error) *Error {
	return &Error{Kind: UpstreamError, Err: err}
}

// classify turns any error into a *Error, treating unclassified errors as
// upstream failures.
func classify(err error) *Error {
	var labelErr *Error
	if errors.As(err, &labelErr) {
		return labelErr
	}
	return upstream(err)
}
