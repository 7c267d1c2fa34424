// Package ecode defines business error codes and shared error messages.
package ecode

import "net/http"

// Business codes carried in response envelopes. Zero is success;
// negative codes mirror the HTTP status they usually map to.
const (
	OK           = 0
	RequestErr   = -400
	NoLogin      = -401
	AccessDenied = -403
	NothingFound = -404
	ServerErr    = -500
)

var messages = map[int]string{
	OK:           "ok",
	RequestErr:   "invalid request",
	NoLogin:      "not authenticated",
	AccessDenied: "access denied",
	NothingFound: "not found",
	ServerErr:    "internal server error",
}

// Text returns the default message for a code.
func Text(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[ServerErr]
}

// ToHTTPStatus maps a business code to an HTTP status.
func ToHTTPStatus(code int) int {
	switch code {
	case OK:
		return http.StatusOK
	case RequestErr:
		return http.StatusBadRequest
	case NoLogin:
		return http.StatusUnauthorized
	case AccessDenied:
		return http.StatusForbidden
	case NothingFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
