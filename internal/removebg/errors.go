package removebg

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxReasonRunes keeps a rejection reason well inside Telegram's
// 4096-character message limit.
const maxReasonRunes = 1024

type ErrorKind int

const (
	KindTransport ErrorKind = iota + 1
	KindTimeout
	KindRejected
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindRejected:
		return "rejected"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is returned by Client.Remove for every failed removal.
// StatusCode and Reason are set for KindRejected.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Reason     string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Kind == KindRejected:
		return fmt.Sprintf("removebg: rejected with status %d: %s", e.StatusCode, e.Reason)
	case e.Err != nil:
		return fmt.Sprintf("removebg: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("removebg: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Malformed wraps a failure to make sense of a successful response.
func Malformed(err error) *Error {
	return &Error{Kind: KindMalformed, Err: err}
}

type apiErrors struct {
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Code   string `json:"code"`
	} `json:"errors"`
}

// reasonFromBody extracts the service's human-readable reason. remove.bg
// answers errors with {"errors":[{"title":...}]}; anything else is
// passed through as trimmed text.
func reasonFromBody(statusCode int, body []byte) string {
	var parsed apiErrors
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Errors) > 0 {
		parts := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			switch {
			case e.Title != "":
				parts = append(parts, e.Title)
			case e.Detail != "":
				parts = append(parts, e.Detail)
			}
		}
		if len(parts) > 0 {
			return truncate(strings.Join(parts, "; "))
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		return truncate(text)
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxReasonRunes {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:maxReasonRunes])) + "…"
}
