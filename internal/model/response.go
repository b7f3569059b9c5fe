package model

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Result is the uniform response envelope. Business failures set IsSuccess
// to false and carry a message; Result is null in that case.
type Result struct {
	IsSuccess bool            `json:"isSuccess"`
	Result    any             `json:"result"`
	Message   string          `json:"message"`
	Code      string          `json:"code,omitempty"`
	Field     string          `json:"field,omitempty"`
	Meta      *PaginationMeta `json:"meta,omitempty"`
}

type PaginationMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// JSON writes a successful response with the given status code
func JSON(w http.ResponseWriter, status int, data any) {
	writeResult(w, status, Result{IsSuccess: true, Result: data})
}

// JSONList writes a successful list response with pagination metadata
func JSONList(w http.ResponseWriter, data any, total int64, limit, offset int) {
	writeResult(w, http.StatusOK, Result{
		IsSuccess: true,
		Result:    data,
		Meta:      &PaginationMeta{Total: total, Limit: limit, Offset: offset},
	})
}

// ErrorResponse writes a failed result, mapping domain errors to HTTP status codes
func ErrorResponse(w http.ResponseWriter, err error) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		writeResult(w, domainErrorToStatus(domainErr.Err), Result{
			Message: domainErr.Error(),
			Code:    domainErr.Err.Error(),
			Field:   domainErr.Field,
		})
		return
	}

	status := domainErrorToStatus(err)

	// Do not expose internal error details on 5xx responses
	msg := err.Error()
	code := err.Error()
	if status >= 500 {
		msg = "internal server error"
		code = "internal_error"
	}

	writeResult(w, status, Result{Message: msg, Code: code})
}

func writeResult(w http.ResponseWriter, status int, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(res)
}

func domainErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnsupportedProvider):
		return http.StatusBadRequest
	case errors.Is(err, ErrStateValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrProviderExchange), errors.Is(err, ErrProviderProfile):
		return http.StatusBadGateway
	case errors.Is(err, ErrCredentialMismatch):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
