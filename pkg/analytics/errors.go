package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
)

// ErrNotFound matches any HTTPError with status 404 via errors.Is.
var ErrNotFound = eris.New("analytics: not found")

// ErrorKind is the coarse class of a failed call.
type ErrorKind int

const (
	// KindNone means no error.
	KindNone ErrorKind = iota
	// KindNetwork means no response was received.
	KindNetwork
	// KindNotFound means the backend answered 404.
	KindNotFound
	// KindHTTP means the backend answered with another non-2xx status.
	KindHTTP
	// KindDecode means a 2xx body did not match the expected shape.
	KindDecode
	// KindValidation means the input was rejected before any request was made.
	KindValidation
	// KindUnknown covers anything else.
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// NetworkError is returned when the request never produced a response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("analytics: %s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Reason returns a short description of the transport failure.
func (e *NetworkError) Reason() string {
	return networkReason(e.Err)
}

// HTTPError is returned for a non-2xx response.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	// Detail is the body's "detail" field, when present.
	Detail string
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("analytics: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message())
}

// Message returns the backend's detail, or a generic message when it sent none.
func (e *HTTPError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// DecodeError is returned when a successful response cannot be parsed.
type DecodeError struct {
	Method string
	Path   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("analytics: %s %s: decode response: %v", e.Method, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when input is rejected before any request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("analytics: invalid %s: %s", e.Field, e.Message)
}

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	return &HTTPError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Detail:     extractDetail(body),
		Body:       body,
	}
}

// extractDetail reads the "detail" field of an error body. FastAPI validation
// errors carry a list of objects; their "msg" parts are joined.
func extractDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// Classify returns the kind of err.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusNotFound {
			return KindNotFound
		}
		return KindHTTP
	}

	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return KindDecode
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return KindValidation
	}

	return KindUnknown
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	return Classify(err) == KindNetwork
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Message returns the text callers should show for err: the backend detail
// for HTTP errors, the underlying reason for network errors.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Reason()
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	return err.Error()
}

func networkReason(err error) string {
	if err == nil {
		return "no response received"
	}

	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out"
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection refused"
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNABORTED) {
		return "connection reset"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "host not found"
	}

	msg := strings.ToLower(err.Error())
	patterns := []struct{ match, reason string }{
		{"connection refused", "connection refused"},
		{"connection reset by peer", "connection reset"},
		{"server closed idle connection", "connection reset"},
		{"no such host", "host not found"},
		{"unsupported protocol scheme", "invalid API base URL"},
		{"tls handshake timeout", "request timed out"},
	}
	for _, p := range patterns {
		if strings.Contains(msg, p.match) {
			return p.reason
		}
	}
	return "no response received"
}
