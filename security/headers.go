package security

import "github.com/pocketbase/pocketbase/core"

const contentSecurityPolicy = "default-src 'self'; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
	"font-src https://fonts.gstatic.com; " +
	"img-src 'self' data: https:; " +
	"script-src 'self' https://cdn.pubnub.com; " +
	"connect-src 'self' https://*.pubnubapi.com wss://*.pubnubapi.com; " +
	"frame-ancestors 'none'"

// SecurityHeaders adds the OWASP recommended response headers.
func SecurityHeaders(e *core.RequestEvent) error {
	h := e.Response.Header()
	h.Set("Content-Security-Policy", contentSecurityPolicy)
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	return e.Next()
}
