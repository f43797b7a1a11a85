package api

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout marks a request that exceeded the client timeout.
	ErrTimeout = errors.New("request timeout")
	// ErrConnection marks a request that never reached the backend.
	ErrConnection = errors.New("connection failed")
)

// Error is a non-2xx response from the backend, carrying the status code
// and the backend's message field when present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// errorBody matches the backend's error envelope. NestJS-style backends use
// "message"; some endpoints use "error".
type errorBody struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

// UserMessage maps an error to the localized text shown by the presentation
// layer. Mutating operations are never retried here; the caller re-triggers.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "Koneksi timeout. Periksa jaringan dan coba lagi."
	case errors.Is(err, ErrConnection):
		return "Tidak dapat terhubung ke server. Periksa koneksi internet."
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Terjadi kesalahan. Silakan coba lagi."
}
