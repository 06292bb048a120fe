// Package netdisk provides an HTTP client for the netdisk open platform:
// the client-credentials token exchange and a generic authenticated
// request pipeline shared by every resource endpoint.
package netdisk

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure classification.
// Use errors.Is(err, netdisk.ErrAPIRequestFailed) to check.
var (
	ErrTransport         = errors.New("netdisk: transport failure")
	ErrAuthRequestFailed = errors.New("netdisk: token request failed")
	ErrAPIRequestFailed  = errors.New("netdisk: api request failed")
	ErrDecode            = errors.New("netdisk: malformed response envelope")
	ErrInvalidRequest    = errors.New("netdisk: invalid request parameters")
)

// errMissingData marks a 2xx token response whose envelope carries no data.
var errMissingData = errors.New("envelope has no data")

// maxErrorBody bounds how much of a raw body is repeated in Error() strings.
// The full body stays available on the typed error.
const maxErrorBody = 512

// RequestError is returned for any non-2xx response. Err is
// ErrAuthRequestFailed for the token endpoint and ErrAPIRequestFailed for
// resource endpoints. Body is the raw response text, empty if unreadable.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error // sentinel, for errors.Is()
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("netdisk: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, truncate(e.Body))
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a 2xx body does not match the expected
// envelope shape. Raw is the body exactly as received.
type DecodeError struct {
	Path string
	Raw  string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("netdisk: decoding %s response: %v (raw: %s)", e.Path, e.Err, truncate(e.Raw))
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// invalidf builds an error wrapping ErrInvalidRequest.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}

	return s[:maxErrorBody] + "..."
}
