package auth

import (
	"agv-finance/internal/config"
	"agv-finance/internal/domain/employee"
	"agv-finance/internal/pkg/apperrors"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SessionCookie = "agv_session"
	issuer        = "agv-finance"
)

var ErrNoSession = fmt.Errorf("%w: no valid session", apperrors.ErrUnauthorized)

// Session is the signed-in employee as carried in the session cookie.
type Session struct {
	EmployeeID uuid.UUID     `json:"employee_id"`
	Subject    string        `json:"sub"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Picture    string        `json:"picture,omitempty"`
	Role       employee.Role `json:"role"`
}

type sessionClaims struct {
	jwt.RegisteredClaims
	EmployeeID string `json:"eid"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Picture    string `json:"picture,omitempty"`
	Role       string `json:"role"`
}

// SessionManager issues and verifies HS256 signed session cookies.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(cfg config.AuthConfig) (*SessionManager, error) {
	if cfg.SessionSecret == "" {
		return nil, errors.New("auth.sessionSecret must be set")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &SessionManager{secret: []byte(cfg.SessionSecret), ttl: ttl, secure: cfg.SecureCookie, now: time.Now}, nil
}

func (m *SessionManager) Sign(s Session) (string, error) {
	now := m.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		EmployeeID: s.EmployeeID.String(),
		Name:       s.Name,
		Email:      s.Email,
		Picture:    s.Picture,
		Role:       string(s.Role),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *SessionManager) Parse(token string) (*Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	id, err := uuid.Parse(claims.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad employee id", ErrNoSession)
	}
	return &Session{
		EmployeeID: id,
		Subject:    claims.Subject,
		Name:       claims.Name,
		Email:      claims.Email,
		Picture:    claims.Picture,
		Role:       employee.Role(claims.Role),
	}, nil
}

// Issue signs s and stores it in the session cookie.
func (m *SessionManager) Issue(w http.ResponseWriter, s Session) error {
	token, err := m.Sign(s)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) Read(r *http.Request) (*Session, error) {
	c, err := r.Cookie(SessionCookie)
	if err != nil || c.Value == "" {
		return nil, ErrNoSession
	}
	return m.Parse(c.Value)
}

func (m *SessionManager) Clear(w http.ResponseWriter) {
	clearCookie(w, SessionCookie, m.secure)
}

func (m *SessionManager) Secure() bool {
	return m.secure
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

// DevSession is injected for every request when authentication is disabled.
func DevSession() *Session {
	return &Session{
		EmployeeID: uuid.Nil,
		Subject:    "dev|local",
		Name:       "Local Developer",
		Email:      "dev@localhost",
		Role:       employee.RoleAdmin,
	}
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
