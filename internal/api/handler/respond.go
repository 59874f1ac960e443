package handler

import (
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/pkg/apperrors"
	"agv-finance/internal/pkg/validation"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxJSONBody = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// decodeAndValidate decodes the body into v and runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) error {
	if err := decodeJSON(w, r, v); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	return validation.Struct(v).Err()
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// errorStatus maps domain errors onto an HTTP status and a client message.
func errorStatus(err error) (int, dto.ErrorDetail) {
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.As(err, &validationError):
		return http.StatusBadRequest, dto.ErrorDetail{
			Message: validationError.Message,
			Field:   validationError.Field,
			Fields:  validationError.Fields,
		}
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, dto.ErrorDetail{Message: notFoundMessage(err)}
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidPaymentAmount), errors.Is(err, apperrors.ErrLoanSettled):
		return http.StatusBadRequest, dto.ErrorDetail{Message: err.Error()}
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorDetail{Message: err.Error()}
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, dto.ErrorDetail{Message: "Unauthorized"}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, dto.ErrorDetail{Message: "Forbidden"}
	case errors.As(err, &appErr):
		return http.StatusInternalServerError, dto.ErrorDetail{Message: appErr.Message}
	default:
		return http.StatusInternalServerError, dto.ErrorDetail{Message: "An unexpected error occurred."}
	}
}

// notFoundMessage keeps the domain part of "resource not found: loan not found (id ...)".
func notFoundMessage(err error) string {
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, apperrors.ErrNotFound.Error()+": "); ok {
		if what, _, _ := strings.Cut(rest, " ("); what != "" {
			return capitalize(what)
		}
	}
	return "Resource not found."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func respondError(w http.ResponseWriter, err error) {
	status, detail := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Default().Error("Unhandled internal error", "error", err)
	}
	respondJSON(w, status, dto.ErrorResponse{Error: detail})
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s not found in URL path", apperrors.ErrInvalidArgument, name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s format in URL path: %s", apperrors.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// logLevelFor keeps expected client failures out of the error log.
func logLevelFor(err error) slog.Level {
	status, _ := errorStatus(err)
	if status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	return slog.LevelWarn
}
