package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	StateCookie = "agv_oauth_state"
	NextCookie  = "agv_next"
	FlashCookie = "agv_flash"

	stateTTL      = 10 * time.Minute
	DefaultReturn = "/dashboard"
)

// NewState returns a random URL-safe value for the OAuth state parameter.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func SetState(w http.ResponseWriter, state string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CheckState reports whether the callback state matches the cookie and
// clears the cookie either way.
func CheckState(w http.ResponseWriter, r *http.Request, got string, secure bool) bool {
	c, err := r.Cookie(StateCookie)
	clearCookie(w, StateCookie, secure)
	return err == nil && got != "" && c.Value == got
}

// SafeReturn only accepts local absolute paths.
func SafeReturn(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return DefaultReturn
	}
	return p
}

func SetNext(w http.ResponseWriter, next string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     NextCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(SafeReturn(next))),
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopNext returns the stored return path, or DefaultReturn.
func PopNext(w http.ResponseWriter, r *http.Request, secure bool) string {
	c, err := r.Cookie(NextCookie)
	if err != nil {
		return DefaultReturn
	}
	clearCookie(w, NextCookie, secure)
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return DefaultReturn
	}
	return SafeReturn(string(b))
}

type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func SetFlash(w http.ResponseWriter, kind, message string) {
	b, _ := json.Marshal(Flash{Kind: kind, Message: message})
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash reads and clears the pending flash message, if any.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(FlashCookie)
	if err != nil {
		return nil
	}
	clearCookie(w, FlashCookie, false)
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if json.Unmarshal(b, &f) != nil || f.Message == "" {
		return nil
	}
	return &f
}
