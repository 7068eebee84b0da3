package publisher

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrNotConfigured is returned when a channel lacks credentials.
var ErrNotConfigured = errors.New("channel is not configured")

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindAuth
	KindRateLimited
	KindUnsupportedMedia
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindUnsupportedMedia:
		return "unsupported_media"
	default:
		return "unknown"
	}
}

// Error is a failed delivery.
type Error struct {
	Kind     ErrorKind
	Platform string
	Status   int
	Message  string
	Response json.RawMessage
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Platform, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Platform, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a publisher error, KindUnknown otherwise.
func KindOf(err error) ErrorKind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindUnknown
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindUnknown
	}
}

// networkError drops the request URL from transport errors since some
// platforms carry credentials in it.
func networkError(platform string, err error) *Error {
	cause := err
	var uerr *url.Error
	if errors.As(err, &uerr) {
		cause = uerr.Err
	}
	return &Error{Kind: KindNetwork, Platform: platform, Message: "Network error: " + cause.Error(), Err: cause}
}

func unsupported(platform, message string) *Error {
	return &Error{Kind: KindUnsupportedMedia, Platform: platform, Message: message}
}
