package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a terminal Complete failure.
type Kind string

const (
	// KindConfig means the credential was empty before dispatch; no network
	// call was made.
	KindConfig Kind = "config"
	// KindUnauthorized means the gateway answered 401 or 403.
	KindUnauthorized Kind = "unauthorized"
	// KindModel means the gateway reported a structured API error that is not
	// retryable against the other endpoint.
	KindModel Kind = "model"
	// KindTransport means the response body was malformed.
	KindTransport Kind = "transport"
	// KindUnavailable means both endpoint conventions were exhausted.
	KindUnavailable Kind = "unavailable"
)

// Body excerpt bounds for error messages. Enough for diagnosis without
// flooding the dashboard log.
const (
	shortExcerptLen = 300
	longExcerptLen  = 500
)

// Error is the terminal failure of one Complete invocation. Every fatal
// outcome carries its classification, the offending URL, the HTTP status when
// one was received, and a bounded excerpt of the raw body.
type Error struct {
	Kind    Kind
	URL     string // offending endpoint; empty for config errors
	Status  int    // HTTP status; 0 if none was received
	Code    string // server error code, when the body carried one
	Excerpt string // bounded excerpt of the raw body or server message
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfig:
		return "gateway: no API key; set GITHUB_TOKEN or OPENAI_API_KEY"
	case KindUnauthorized:
		return fmt.Sprintf("gateway: unauthorized at %s (status %d); check token scope (models:read) and rate limits: %s",
			e.URL, e.Status, e.Excerpt)
	case KindModel:
		code := e.Code
		if code == "" {
			code = "-"
		}
		return fmt.Sprintf("gateway: api error %d (%s) at %s: %s", e.Status, code, e.URL, e.Excerpt)
	case KindTransport:
		if e.Status > 0 {
			return fmt.Sprintf("gateway: malformed response %d from %s: %s", e.Status, e.URL, e.Excerpt)
		}
		return fmt.Sprintf("gateway: request to %s failed: %s", e.URL, e.Excerpt)
	case KindUnavailable:
		return fmt.Sprintf("gateway: no working chat/completions endpoint (last tried %s, status %d): %s",
			e.URL, e.Status, e.Excerpt)
	default:
		return fmt.Sprintf("gateway: %s error at %s", e.Kind, e.URL)
	}
}

// KindOf returns the classification of err, or the empty Kind when err is not
// a gateway error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}

	return ""
}

// excerpt bounds s to at most n runes after trimming surrounding whitespace.
func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)

	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
