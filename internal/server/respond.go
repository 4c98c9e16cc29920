package server

import (
	"encoding/json"
	"errors"
	"net/http"

	errs "github.com/matzehuels/metromap/pkg/errors"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func respondBytes(w http.ResponseWriter, status int, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError maps err to a status code by its error code.
func writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	respondJSON(w, statusFor(err), errorResponse{
		Code:    string(code),
		Message: errs.UserMessage(err),
		Field:   errs.FieldOf(err),
	})
}

func writeErrorStatus(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Code: code, Message: message})
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch errs.ClassOf(err) {
	case errs.ClassInvalid:
		return http.StatusBadRequest
	case errs.ClassNotFound:
		return http.StatusNotFound
	case errs.ClassUnsupported:
		return http.StatusUnsupportedMediaType
	case errs.ClassBackend:
		if errs.Is(err, errs.ErrCodeTimeout) {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
