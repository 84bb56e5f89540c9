package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"refsync/internal/application"
	"refsync/internal/logging"
)

// Response is the envelope of every endpoint except /sync
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error is the error half of the envelope
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, nothing useful to do on failure
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{Data: data})
}

func fail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Response{Error: &Error{Code: code, Message: message}})
}

// statusFor maps application errors onto HTTP status codes
func statusFor(err error) (int, string) {
	var adapterErr *application.AdapterError
	var storageErr *application.StorageError
	switch {
	case errors.Is(err, application.ErrInvalidRequest):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, application.ErrUnknownApplication), errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, application.ErrNotImplemented):
		return http.StatusNotImplemented, "NOT_IMPLEMENTED"
	case errors.As(err, &adapterErr):
		return http.StatusBadGateway, "ADAPTER_ERROR"
	case errors.As(err, &storageErr):
		return http.StatusInternalServerError, "STORAGE_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// failFrom writes err in the envelope and logs server-side failures
func failFrom(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	logFailure(r, err, status, code)
	fail(w, status, code, err.Error())
}

func logFailure(r *http.Request, err error, status int, code string) {
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error().Err(err).Str("code", code).Int("status", status).Msg("request failed")
	}
}
