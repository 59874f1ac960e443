package handler

import (
	"agv-finance/internal/domain/customer"
	"agv-finance/internal/domain/loan"
	"agv-finance/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "single field validation",
			err:         apperrors.NewValidationError("mobile", "Invalid mobile number"),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid mobile number",
		},
		{
			name:        "domain not found",
			err:         fmt.Errorf("%w: %w (id %s)", apperrors.ErrNotFound, loan.ErrNotFound, uuid.Nil),
			wantStatus:  http.StatusNotFound,
			wantMessage: "Loan not found",
		},
		{
			name:        "bare not found",
			err:         apperrors.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Resource not found.",
		},
		{
			name:        "settled loan",
			err:         loan.ErrSettled,
			wantStatus:  http.StatusBadRequest,
			wantMessage: loan.ErrSettled.Error(),
		},
		{
			name:       "exceeds due",
			err:        &loan.ExceedsDueError{Amount: decimal.NewFromInt(10), TotalDue: decimal.NewFromInt(5)},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "duplicate",
			err:         fmt.Errorf("%w: %w", apperrors.ErrAlreadyExists, customer.ErrDuplicateMobile),
			wantStatus:  http.StatusConflict,
			wantMessage: "resource already exists: customer with this mobile number already exists",
		},
		{
			name:        "unauthorized",
			err:         fmt.Errorf("%w: expired", apperrors.ErrUnauthorized),
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Unauthorized",
		},
		{
			name:        "forbidden",
			err:         apperrors.ErrForbidden,
			wantStatus:  http.StatusForbidden,
			wantMessage: "Forbidden",
		},
		{
			name:        "app error keeps its message",
			err:         apperrors.WrapDatabaseError(errors.New("pq: timeout"), "failed to load loans"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "failed to load loans",
		},
		{
			name:        "unknown error is hidden",
			err:         errors.New("dial tcp: refused"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "An unexpected error occurred.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := errorStatus(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, detail.Message)
			}
		})
	}
}

func TestErrorStatus_FieldMap(t *testing.T) {
	err := apperrors.NewFieldErrors(map[string]string{"amount": "too small", "loan_id": "required"})
	status, detail := errorStatus(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]string{"amount": "too small", "loan_id": "required"}, detail.Fields)
}

func TestLogLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, logLevelFor(apperrors.ErrNotFound))
	assert.Equal(t, slog.LevelError, logLevelFor(errors.New("boom")))
}

func TestUUIDParam(t *testing.T) {
	withParam := func(v string) *http.Request {
		rctx := chi.NewRouteContext()
		if v != "" {
			rctx.URLParams.Add("loanID", v)
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id := uuid.New()
	got, err := uuidParam(withParam(id.String()), "loanID")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = uuidParam(withParam("12"), "loanID")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)

	_, err = uuidParam(withParam(""), "loanID")
	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
}

func TestDecodeAndValidate(t *testing.T) {
	type payload struct {
		Name string `json:"name" validate:"required"`
	}

	t.Run("Body too large", func(t *testing.T) {
		body := `{"name":"` + strings.Repeat("a", maxJSONBody) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var p payload
		err := decodeAndValidate(httptest.NewRecorder(), req, &p)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})

	t.Run("Missing required field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		var p payload
		err := decodeAndValidate(httptest.NewRecorder(), req, &p)
		status, detail := errorStatus(err)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Contains(t, detail.Fields, "name")
	})
}
