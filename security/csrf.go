package security

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/pocketbase/pocketbase/core"
)

const CSRFFieldName = "csrf_token"

// CSRF protects the admin forms. secure must match how the site is served:
// over plain HTTP the origin checks that assume TLS are skipped.
func CSRF(key []byte, secure bool, trustedOrigins []string) func(e *core.RequestEvent) error {
	protect := csrf.Protect(
		key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.FieldName(CSRFFieldName),
		csrf.TrustedOrigins(trustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailed)),
	)

	return func(e *core.RequestEvent) error {
		var nextErr error
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			e.Request = r
			nextErr = e.Next()
		}))

		req := e.Request
		if !secure {
			req = csrf.PlaintextHTTPRequest(req)
		}
		handler.ServeHTTP(e.Response, req)
		return nextErr
	}
}

func csrfFailed(w http.ResponseWriter, r *http.Request) {
	slog.Warn("CSRF check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	http.Error(w, "Formulário expirado. Volte e tente novamente.", http.StatusForbidden)
}
