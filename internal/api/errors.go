package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/lexiquest/review-api/internal/api/shared"
	"github.com/lexiquest/review-api/internal/domain"
	"github.com/lexiquest/review-api/internal/service/auth"
	"github.com/lexiquest/review-api/internal/service/review_session"
	"github.com/lexiquest/review-api/internal/session"
	"github.com/lexiquest/review-api/internal/store"
)

// ErrUnauthorized is used when a protected handler runs without an
// authenticated user in the request context.
var ErrUnauthorized = errors.New("unauthorized")

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing the errors themselves.
func MapErrorToStatusCode(err error) int {
	var sessionErr *session.ValidationError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, review_session.ErrSessionNotOwned):
		return http.StatusForbidden

	case errors.Is(err, review_session.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// A rejected controller transition is a conflict with the session's
	// phase, except for a bad grade which is the client's input.
	case errors.Is(err, session.ErrInvalidGrade):
		return http.StatusBadRequest
	case errors.As(err, &sessionErr):
		return http.StatusConflict

	case errors.Is(err, review_session.ErrGradeRequired),
		errors.Is(err, review_session.ErrInvalidPostpone),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, ErrUnauthorized):
		return "User ID not found or invalid"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, review_session.ErrSessionNotOwned):
		return "You do not own this review session"
	case errors.Is(err, review_session.ErrSessionNotFound):
		return "Review session not found"
	case errors.Is(err, store.ErrItemNotFound):
		return "Vocabulary item not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, session.ErrInvalidGrade):
		return "Grade must be one of again, hard, good or easy"
	case errors.Is(err, session.ErrAlreadyGraded):
		return "Item has already been graded in this session"
	case errors.Is(err, session.ErrItemNotCurrent):
		return "Item is not the one being presented"
	case errors.Is(err, session.ErrNotRevealed):
		return "Answer must be revealed before grading"
	case errors.Is(err, session.ErrSessionCompleted):
		return "Review session is already completed"
	case errors.Is(err, session.ErrSessionNotCompleted):
		return "Review session is not completed yet"

	case errors.Is(err, review_session.ErrGradeRequired):
		return "Grade is required"
	case errors.Is(err, review_session.ErrInvalidPostpone):
		return "Days must be at least 1"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a message naming
// the first failing field, without the struct or Go type names.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "must be a UUID"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err. fallback replaces the
// generic message for internal errors when set.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
