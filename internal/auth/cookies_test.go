package auth_test

import (
	"agv-finance/internal/auth"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// replay copies the cookies set on rec into a fresh request.
func replay(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/callback", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestState(t *testing.T) {
	s1, err := auth.NewState()
	require.NoError(t, err)
	s2, err := auth.NewState()
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 43)

	rec := httptest.NewRecorder()
	auth.SetState(rec, s1, false)
	req := replay(rec)

	assert.True(t, auth.CheckState(httptest.NewRecorder(), req, s1, false))
	assert.False(t, auth.CheckState(httptest.NewRecorder(), req, s2, false))
	assert.False(t, auth.CheckState(httptest.NewRecorder(), req, "", false))
	assert.False(t, auth.CheckState(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), s1, false))
}

func TestSafeReturn(t *testing.T) {
	cases := map[string]string{
		"":                     auth.DefaultReturn,
		"/loans/42?tab=a":      "/loans/42?tab=a",
		"https://evil.example": auth.DefaultReturn,
		"//evil.example":       auth.DefaultReturn,
		"/\\evil.example":      auth.DefaultReturn,
		"loans":                auth.DefaultReturn,
	}
	for in, want := range cases {
		assert.Equal(t, want, auth.SafeReturn(in), in)
	}
}

func TestNext(t *testing.T) {
	rec := httptest.NewRecorder()
	auth.SetNext(rec, "/customers?page=2", false)

	out := httptest.NewRecorder()
	assert.Equal(t, "/customers?page=2", auth.PopNext(out, replay(rec), false))
	assert.Equal(t, auth.DefaultReturn, auth.PopNext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), false))
}

func TestFlash(t *testing.T) {
	rec := httptest.NewRecorder()
	auth.SetFlash(rec, "success", "Customer created")

	out := httptest.NewRecorder()
	f := auth.PopFlash(out, replay(rec))
	require.NotNil(t, f)
	assert.Equal(t, "success", f.Kind)
	assert.Equal(t, "Customer created", f.Message)

	cleared := out.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Negative(t, cleared[0].MaxAge)

	assert.Nil(t, auth.PopFlash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
}
