// Package resp provides standardized JSON response helpers. All
// responses share the {status, code, message, data, errors} shape.
package resp

import (
	"encoding/json"
	"net/http"

	"github.com/smartbuspass/backend/ecode"
)

// Exception represents the response structure.
type Exception struct {
	Status  int    `json:"status,omitempty"`  // HTTP status
	Code    int    `json:"code,omitempty"`    // Business code
	Message string `json:"message,omitempty"` // Message
	Errors  any    `json:"errors,omitempty"`  // Validation errors
	Data    any    `json:"data,omitempty"`    // Response data
}

// Success handles success responses.
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode handles success responses with a custom status code.
func WithStatusCode(w http.ResponseWriter, statusCode int, data ...any) {
	var responseData any
	if len(data) > 0 {
		responseData = data[0]
	}

	if responseData == nil {
		responseData = map[string]any{"message": "ok"}
	}
	if msg, ok := responseData.(string); ok {
		responseData = map[string]any{"message": msg}
	}

	writeResponse(w, statusCode, responseData)
}

// Fail handles failure responses.
func Fail(w http.ResponseWriter, r *Exception) {
	if r == nil {
		r = &Exception{
			Status:  http.StatusInternalServerError,
			Code:    ecode.ServerErr,
			Message: ecode.Text(ecode.ServerErr),
		}
	}

	status := r.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	if r.Code == 0 {
		r.Code = ecode.RequestErr
	}
	if r.Message == "" {
		r.Message = ecode.Text(r.Code)
	}

	writeResponse(w, status, &Exception{
		Code:    r.Code,
		Message: r.Message,
		Errors:  r.Errors,
	})
}

// BadRequest builds a 400 exception.
func BadRequest(message string, errs ...any) *Exception {
	return newException(http.StatusBadRequest, ecode.RequestErr, message, errs...)
}

// UnAuthorized builds a 401 exception.
func UnAuthorized(message string, errs ...any) *Exception {
	return newException(http.StatusUnauthorized, ecode.NoLogin, message, errs...)
}

// Forbidden builds a 403 exception.
func Forbidden(message string, errs ...any) *Exception {
	return newException(http.StatusForbidden, ecode.AccessDenied, message, errs...)
}

// NotFound builds a 404 exception.
func NotFound(message string, errs ...any) *Exception {
	return newException(http.StatusNotFound, ecode.NothingFound, message, errs...)
}

// InternalServer builds a 500 exception.
func InternalServer(message string, errs ...any) *Exception {
	return newException(http.StatusInternalServerError, ecode.ServerErr, message, errs...)
}

func newException(status, code int, message string, errs ...any) *Exception {
	var errors any
	if len(errs) > 0 {
		errors = errs[0]
	}
	return &Exception{
		Status:  status,
		Code:    code,
		Message: message,
		Errors:  errors,
	}
}

func writeResponse(w http.ResponseWriter, code int, res any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
