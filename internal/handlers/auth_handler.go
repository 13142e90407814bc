package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/crypto/bcrypt"

	"magis-site/internal/backend"
	"magis-site/internal/schema"
	"magis-site/security"
)

const msgBadCredentials = "E-mail ou senha inválidos."

// missHash is compared against on unknown emails so they cost as much as a
// wrong password.
var missHash, _ = bcrypt.GenerateFromPassword([]byte("magis-login-miss"), bcrypt.DefaultCost)

func compareMiss(password string) {
	_ = bcrypt.CompareHashAndPassword(missHash, []byte(password))
}

// AuthHandler logs admins in with their PocketBase user and keeps the
// token in an HttpOnly cookie.
type AuthHandler struct {
	render *Renderer
	gate   *security.AdminGate
	secure bool
	miss   func(password string)
}

func NewAuthHandler(render *Renderer, gate *security.AdminGate, secure bool) *AuthHandler {
	return &AuthHandler{render: render, gate: gate, secure: secure, miss: compareMiss}
}

type loginData struct {
	Email string
	Error string
}

func (h *AuthHandler) LoginForm(e *core.RequestEvent) error {
	if email, ok := backend.CurrentEmail(e); ok && h.gate.IsAllowed(email) {
		return e.Redirect(http.StatusSeeOther, "/admin")
	}
	return h.render.Render(e, http.StatusOK, "admin/login.html", View{Title: "Entrar", Data: loginData{}})
}

func (h *AuthHandler) Login(e *core.RequestEvent) error {
	if err := e.Request.ParseForm(); err != nil {
		return e.BadRequestError("Formulário inválido.", err)
	}
	email := strings.ToLower(strings.TrimSpace(e.Request.PostForm.Get("email")))
	password := e.Request.PostForm.Get("password")

	fail := func() error {
		return h.render.Render(e, http.StatusUnauthorized, "admin/login.html", View{
			Title: "Entrar",
			Data:  loginData{Email: email, Error: msgBadCredentials},
		})
	}

	if email == "" || password == "" {
		return fail()
	}

	user, err := e.App.FindAuthRecordByEmail(schema.Users, email)
	if err != nil {
		h.miss(password)
		return fail()
	}
	if !user.ValidatePassword(password) {
		return fail()
	}
	// A valid account outside the allow-list gets the same answer.
	if !h.gate.IsAllowed(user.Email()) {
		slog.Warn("Login refused for account outside the admin list", "email", email)
		return fail()
	}

	token, err := user.NewAuthToken()
	if err != nil {
		slog.Error("Failed to issue auth token", "error", err)
		return e.InternalServerError("", err)
	}
	security.SetAuthCookie(e, token, h.secure)

	slog.Info("Admin logged in", "email", email)
	return e.Redirect(http.StatusSeeOther, "/admin")
}

func (h *AuthHandler) Logout(e *core.RequestEvent) error {
	security.ClearAuthCookie(e, h.secure)
	return e.Redirect(http.StatusSeeOther, security.LoginPath)
}
