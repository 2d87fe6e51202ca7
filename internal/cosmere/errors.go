package cosmere

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	// ErrNotFound indicates the API answered but the entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized indicates the API rejected the bearer token. The stored
	// token has already been cleared when this is returned.
	ErrUnauthorized = errors.New("unauthorized: run 'cosmere login' to sign in")
	// ErrNetwork indicates the request could not complete.
	ErrNetwork = errors.New("network error")
)

// APIError is a non-2xx response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, msg)
}

// Is lets errors.Is match the sentinels for 404 and 401 responses.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// NetworkError wraps a transport failure: timeout, DNS, refused connection.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// Timeout reports whether the failure was a timeout.
func (e *NetworkError) Timeout() bool {
	var netErr net.Error
	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ErrorKind categorizes errors for presentation.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	// KindNetwork - request could not complete; reads may be retried
	KindNetwork
	// KindHTTP - the API answered with a non-2xx status
	KindHTTP
	// KindNotFound - the entity does not exist
	KindNotFound
	// KindUnauthorized - the token was rejected
	KindUnauthorized
	// KindCanceled - the caller abandoned the request
	KindCanceled
	// KindOther - anything else (decode failures, invalid payloads)
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindCanceled:
		return "canceled"
	default:
		return "other"
	}
}

// Classify determines how an error should be presented.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return KindUnauthorized
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return KindHTTP
	}
	if errors.Is(err, ErrNetwork) {
		return KindNetwork
	}
	return KindOther
}

// Retryable reports whether the failed action may be offered a retry. Only
// reads are idempotent; writes show the error without retry.
func Retryable(err error, read bool) bool {
	if !read {
		return false
	}
	switch Classify(err) {
	case KindNetwork, KindHTTP:
		return true
	}
	return false
}

// UserMessage renders err for display. action is a verb phrase such as
// "load characters".
func UserMessage(err error, action string) string {
	var apiErr *APIError
	switch Classify(err) {
	case KindNone:
		return ""
	case KindNetwork:
		var netErr *NetworkError
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Sprintf("Failed to %s: the request timed out", action)
		}
		return fmt.Sprintf("Failed to %s: could not reach the server", action)
	case KindNotFound:
		return "Not found"
	case KindUnauthorized:
		return "Your session has expired. Run 'cosmere login' to sign in again."
	case KindCanceled:
		return fmt.Sprintf("Failed to %s: canceled", action)
	case KindHTTP:
		errors.As(err, &apiErr)
		msg := strings.TrimSpace(apiErr.Message)
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		return fmt.Sprintf("Failed to %s (%d): %s", action, apiErr.StatusCode, msg)
	default:
		return fmt.Sprintf("Failed to %s: %v", action, err)
	}
}
