package backend

import (
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// CurrentEmail returns the email of the authenticated principal of the
// request, lower-cased.
func CurrentEmail(e *core.RequestEvent) (string, bool) {
	if e.Auth == nil {
		return "", false
	}
	email := strings.ToLower(strings.TrimSpace(e.Auth.Email()))
	if email == "" {
		return "", false
	}
	return email, true
}
