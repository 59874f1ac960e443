package middleware

import (
	"agv-finance/internal/auth"
	"agv-finance/internal/config"
	"agv-finance/internal/domain/employee"
	"agv-finance/internal/pkg/apperrors"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// EmployeeLookup resolves the employee behind a session on every request so
// that deactivation and role changes apply immediately.
type EmployeeLookup interface {
	GetEmployee(ctx context.Context, employeeID uuid.UUID) (*employee.Employee, error)
}

// SessionGate requires a signed-in, active employee. Page requests without a
// session are sent to /login and come back afterwards; /api requests get 401.
// With authentication disabled every request runs as a local admin.
func SessionGate(cfg config.AuthConfig, sessions *auth.SessionManager, employees EmployeeLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), auth.DevSession())))
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sessions.Read(r)
			if err != nil {
				logger.DebugContext(r.Context(), "SessionGate: no valid session", "path", r.URL.Path, "error", err)
				unauthenticated(w, r, sessions)
				return
			}

			emp, err := employees.GetEmployee(r.Context(), s.EmployeeID)
			switch {
			case errors.Is(err, apperrors.ErrNotFound):
				logger.WarnContext(r.Context(), "SessionGate: session for unknown employee", "employeeID", s.EmployeeID)
				sessions.Clear(w)
				unauthenticated(w, r, sessions)
				return
			case err != nil:
				logger.ErrorContext(r.Context(), "SessionGate: employee lookup failed", "error", err)
				deny(w, r, http.StatusInternalServerError, "Internal server error")
				return
			case !emp.IsActive:
				logger.WarnContext(r.Context(), "SessionGate: inactive employee refused", "employeeID", emp.ID)
				deny(w, r, http.StatusForbidden, "Your account has been deactivated")
				return
			}

			s.Role = emp.Role
			s.Name = emp.Name
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), s)))
		})
	}
}

// RequireRole lets through sessions whose role is at least min.
func RequireRole(min employee.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := auth.FromContext(r.Context())
			if !ok {
				deny(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !s.Role.AtLeast(min) {
				deny(w, r, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isAPI(r *http.Request) bool {
	return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
}

func unauthenticated(w http.ResponseWriter, r *http.Request, sessions *auth.SessionManager) {
	if isAPI(r) {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if r.Method == http.MethodGet {
		auth.SetNext(w, r.URL.RequestURI(), sessions.Secure())
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func deny(w http.ResponseWriter, r *http.Request, status int, message string) {
	if isAPI(r) {
		writeJSONError(w, status, message)
		return
	}
	http.Error(w, message, status)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": message},
	})
}
