package security

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/gorilla/csrf"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(method, target string) (*core.RequestEvent, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	e := &core.RequestEvent{}
	e.Request = httptest.NewRequest(method, target, nil)
	e.Response = rec
	return e, rec
}

func authAs(email string) *core.Record {
	r := core.NewRecord(core.NewAuthCollection("users"))
	r.SetEmail(email)
	return r
}

func TestAdminGate_IsAllowed(t *testing.T) {
	gate := NewAdminGate([]string{" Diretoria@Magis.org ", "", "ti@magis.org"})

	tests := []struct {
		email    string
		expected bool
	}{
		{"diretoria@magis.org", true},
		{"DIRETORIA@magis.org", true},
		{"ti@magis.org", true},
		{"visitante@gmail.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, gate.IsAllowed(tt.email))
		})
	}
}

func TestAdminGate_RequireAdmin(t *testing.T) {
	gate := NewAdminGate([]string{"diretoria@magis.org"})

	tests := []struct {
		name         string
		auth         *core.Record
		wantRedirect bool
	}{
		{"anonymous", nil, true},
		{"not on allow-list", authAs("aluno@escola.com"), true},
		{"allowed", authAs("Diretoria@magis.org"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, rec := newEvent(http.MethodGet, "/admin/eventos")
			e.Auth = tt.auth

			err := gate.RequireAdmin(e)
			require.NoError(t, err)

			if tt.wantRedirect {
				assert.Equal(t, http.StatusFound, rec.Code)
				assert.Equal(t, LoginPath, rec.Header().Get("Location"))
				assert.Empty(t, rec.Body.String())
			} else {
				assert.Empty(t, rec.Header().Get("Location"))
			}
		})
	}
}

func TestLoadAuthCookie(t *testing.T) {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	defer app.Cleanup()

	user, err := app.FindAuthRecordByEmail("users", "test@example.com")
	require.NoError(t, err)
	token, err := user.NewAuthToken()
	require.NoError(t, err)

	e, _ := newEvent(http.MethodGet, "/admin")
	e.App = app
	e.Request.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})

	require.NoError(t, LoadAuthCookie(e))
	require.NotNil(t, e.Auth)
	assert.Equal(t, "test@example.com", e.Auth.Email())
}

func TestLoadAuthCookie_InvalidToken(t *testing.T) {
	app, err := tests.NewTestApp()
	require.NoError(t, err)
	defer app.Cleanup()

	e, _ := newEvent(http.MethodGet, "/admin")
	e.App = app
	e.Request.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "garbage"})

	require.NoError(t, LoadAuthCookie(e))
	assert.Nil(t, e.Auth)
}

func TestAuthCookieHelpers(t *testing.T) {
	e, rec := newEvent(http.MethodPost, "/admin/login")
	SetAuthCookie(e, "tok", true)

	cookie := rec.Result().Cookies()[0]
	assert.Equal(t, AuthCookieName, cookie.Name)
	assert.Equal(t, "tok", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)

	e, rec = newEvent(http.MethodPost, "/admin/logout")
	ClearAuthCookie(e, false)
	assert.Equal(t, -1, rec.Result().Cookies()[0].MaxAge)
}

func setupRateLimiter() (*RateLimiter, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db)
	rl.identify = func(*core.RequestEvent) string { return "203.0.113.9" }
	return rl, mock
}

func TestRateLimiter_FirstRequestSetsWindow(t *testing.T) {
	rl, mock := setupRateLimiter()

	mock.ExpectIncr("ratelimit:contact:203.0.113.9").SetVal(1)
	mock.ExpectExpire("ratelimit:contact:203.0.113.9", 10*time.Minute).SetVal(true)

	e, _ := newEvent(http.MethodPost, "/contato")
	err := rl.Limit("contact", 5, 10*time.Minute)(e)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_OverLimit(t *testing.T) {
	rl, mock := setupRateLimiter()

	mock.ExpectIncr("ratelimit:login:203.0.113.9").SetVal(6)

	e, _ := newEvent(http.MethodPost, "/admin/login")
	err := rl.Limit("login", 5, time.Minute)(e)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Muitas tentativas")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl, mock := setupRateLimiter()

	mock.ExpectIncr("ratelimit:login:203.0.113.9").SetErr(errors.New("redis down"))

	assert.True(t, rl.Allow(context.Background(), "ratelimit:login:203.0.113.9", 5, time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSecurityHeaders(t *testing.T) {
	e, rec := newEvent(http.MethodGet, "/")

	require.NoError(t, SecurityHeaders(e))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Security-Policy"), "default-src 'self'"))
}

func TestCSRF(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	mw := CSRF(key, false, nil)

	t.Run("safe method gets a token", func(t *testing.T) {
		e, rec := newEvent(http.MethodGet, "/admin/eventos/novo")

		require.NoError(t, mw(e))
		assert.NotEmpty(t, csrf.Token(e.Request))
		assert.NotEmpty(t, rec.Result().Cookies())
	})

	t.Run("post without token is rejected", func(t *testing.T) {
		e, rec := newEvent(http.MethodPost, "/admin/eventos/novo")

		require.NoError(t, mw(e))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
