package handler

import (
	"agv-finance/internal/api/handler/dto"
	"agv-finance/internal/auth"
	"agv-finance/internal/config"
	"agv-finance/internal/domain/employee"
	"agv-finance/internal/pkg/apperrors"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// IdentityProvider is the OIDC client used for the login round trip.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, tok *oauth2.Token) (employee.Identity, error)
	LogoutURL(returnTo string) string
}

type AuthHandler struct {
	cfg       config.AuthConfig
	baseURL   string
	provider  IdentityProvider
	sessions  *auth.SessionManager
	employees employee.EmployeeService
	logger    *slog.Logger
}

func NewAuthHandler(cfg config.AuthConfig, baseURL string, provider IdentityProvider, sessions *auth.SessionManager, employees employee.EmployeeService, l *slog.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:       cfg,
		baseURL:   strings.TrimRight(baseURL, "/"),
		provider:  provider,
		sessions:  sessions,
		employees: employees,
		logger:    l.With("component", "AuthHandler"),
	}
}

// Login handles GET /login by sending the browser to the identity provider.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Enabled {
		http.Redirect(w, r, auth.DefaultReturn, http.StatusFound)
		return
	}
	state, err := auth.NewState()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to generate login state", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	auth.SetState(w, state, h.sessions.Secure())
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /callback, the query response of the authorization
// code flow: it checks state, exchanges the code, syncs the employee and
// issues the session cookie.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Enabled {
		http.Redirect(w, r, auth.DefaultReturn, http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	if e := r.Form.Get("error"); e != "" {
		h.logger.WarnContext(r.Context(), "Identity provider refused login", "error", e, "description", r.Form.Get("error_description"))
		auth.SetFlash(w, "danger", "Login was cancelled or refused.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if !auth.CheckState(w, r, r.Form.Get("state"), h.sessions.Secure()) {
		h.logger.WarnContext(r.Context(), "Login state mismatch")
		http.Error(w, "Invalid login state, please try again", http.StatusBadRequest)
		return
	}

	tok, err := h.provider.Exchange(r.Context(), r.Form.Get("code"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Code exchange failed", slog.Any("error", err))
		http.Error(w, "Login failed", http.StatusBadGateway)
		return
	}
	id, err := h.provider.UserInfo(r.Context(), tok)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Userinfo request failed", slog.Any("error", err))
		http.Error(w, "Login failed", http.StatusBadGateway)
		return
	}

	emp, err := h.employees.SyncFromIdentity(r.Context(), id)
	if err != nil {
		status, _ := errorStatus(err)
		if errors.Is(err, employee.ErrInactive) {
			http.Error(w, "Your account has been deactivated", http.StatusForbidden)
			return
		}
		h.logger.Log(r.Context(), logLevelFor(err), "Employee sync failed", slog.Any("error", err))
		http.Error(w, http.StatusText(status), status)
		return
	}

	s := auth.Session{
		EmployeeID: emp.ID,
		Subject:    emp.Subject,
		Name:       emp.Name,
		Email:      emp.Email,
		Picture:    id.Picture,
		Role:       emp.Role,
	}
	if err := h.sessions.Issue(w, s); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to issue session", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.logger.InfoContext(r.Context(), "Login completed", slog.String("employeeID", emp.ID.String()))
	http.Redirect(w, r, auth.PopNext(w, r, h.sessions.Secure()), http.StatusSeeOther)
}

// Logout handles GET /logout and ends the provider session too.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Enabled {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.sessions.Clear(w)
	http.Redirect(w, r, h.provider.LogoutURL(h.baseURL+"/"), http.StatusFound)
}

// Profile handles GET /api/user/profile
// @Summary Signed-in employee
// @Tags Users
// @Produce json
// @Success 200 {object} dto.ProfileResponse "Profile"
// @Failure 401 {object} dto.ErrorResponse "Not signed in"
// @Router /api/user/profile [get]
// @Security SessionCookie
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	s, ok := auth.FromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}
	resp := dto.ProfileResponse{
		ID:      s.EmployeeID.String(),
		Name:    s.Name,
		Email:   s.Email,
		Role:    string(s.Role),
		Picture: s.Picture,
	}
	if s.EmployeeID != uuid.Nil && h.employees != nil {
		if emp, err := h.employees.GetEmployee(r.Context(), s.EmployeeID); err == nil {
			resp.Phone = emp.Phone
			resp.LastLogin = emp.LastLogin
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
