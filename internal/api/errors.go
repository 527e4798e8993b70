package api

import (
	"errors"
	"net/http"

	"github.com/omarsldn/taskhub/internal/domain"
	"github.com/omarsldn/taskhub/internal/service/auth"
	"github.com/omarsldn/taskhub/internal/service/avatar"
	"github.com/omarsldn/taskhub/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrAvatarNotFound),
		errors.Is(err, store.ErrTokenNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, avatar.ErrUnsupportedFormat),
		errors.Is(err, avatar.ErrTooLarge),
		errors.Is(err, avatar.ErrUndecodable):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors. Login failures and token failures get the
	// same flat message so the response does not reveal which check failed.
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Unable to login"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrRevokedToken),
		errors.Is(err, domain.ErrUnauthorized):
		return "Please authenticate"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrAvatarNotFound):
		return "Avatar not found"

	case errors.Is(err, store.ErrTokenNotFound):
		return "Token not found"

	// Bad request errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already in use"

	case errors.Is(err, avatar.ErrUnsupportedFormat):
		return "Please upload a jpg, jpeg or png image"

	case errors.Is(err, avatar.ErrTooLarge):
		return "Avatar must be at most 1000000 bytes"

	case errors.Is(err, avatar.ErrUndecodable):
		return "Unable to decode uploaded image"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"

	case errors.Is(err, domain.ErrValidation):
		// Validation errors are written for clients; pass the detail through.
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return verr.Error()
		}
		return "Invalid input"

	default:
		return "An unexpected error occurred"
	}
}

// respondWithMappedError is the common error exit for handlers: it maps the
// error to a status code and a safe message and writes the envelope.
func respondWithMappedError(w http.ResponseWriter, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	respondWithError(w, status, message)
}
