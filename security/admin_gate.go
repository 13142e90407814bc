package security

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"magis-site/internal/backend"
)

const (
	// AuthCookieName holds the admin's PocketBase auth token.
	AuthCookieName = "magis_auth"
	LoginPath      = "/admin/login"

	authCookieMaxAge = 7 * 24 * time.Hour
)

// AdminGate lets through only authenticated principals whose email is on
// the allow-list.
type AdminGate struct {
	allowed map[string]bool
}

func NewAdminGate(emails []string) *AdminGate {
	allowed := make(map[string]bool, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			allowed[email] = true
		}
	}
	return &AdminGate{allowed: allowed}
}

func (g *AdminGate) IsAllowed(email string) bool {
	return g.allowed[strings.ToLower(strings.TrimSpace(email))]
}

// RequireAdmin redirects to the login page, without any message, unless the
// request carries an allowed principal. Handlers after it never run for
// anyone else.
func (g *AdminGate) RequireAdmin(e *core.RequestEvent) error {
	email, ok := backend.CurrentEmail(e)
	if !ok || !g.IsAllowed(email) {
		return e.Redirect(http.StatusFound, LoginPath)
	}
	return e.Next()
}

// LoadAuthCookie resolves the auth cookie into e.Auth when the request has
// no Authorization header.
func LoadAuthCookie(e *core.RequestEvent) error {
	if e.Auth != nil {
		return e.Next()
	}

	cookie, err := e.Request.Cookie(AuthCookieName)
	if err != nil || cookie.Value == "" {
		return e.Next()
	}

	record, err := e.App.FindAuthRecordByToken(cookie.Value, core.TokenTypeAuth)
	if err != nil {
		slog.Debug("Ignoring invalid auth cookie", "error", err)
		return e.Next()
	}
	e.Auth = record
	return e.Next()
}

func SetAuthCookie(e *core.RequestEvent, token string, secure bool) {
	e.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(authCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAuthCookie(e *core.RequestEvent, secure bool) {
	e.SetCookie(&http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
