package handler

import (
	"net/http"
	"time"

	"github.com/dukerupert/census/internal/auth"
	"github.com/dukerupert/census/internal/validate"
)

const sessionCookieName = "census_session"

type AuthHandler struct {
	Deps
	cookieSecure bool
}

func NewAuthHandler(d Deps, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Deps: d, cookieSecure: cookieSecure}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in validate.RegisterInput
	if !h.decode(w, r, &in) {
		return
	}
	respond(h.Deps, w, h.Service.Register(r.Context(), auth.FromContext(r.Context()), in), "user")
}

// Login returns the session token and also sets it as an HttpOnly cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in validate.LoginInput
	if !h.decode(w, r, &in) {
		return
	}
	res := h.Service.Login(r.Context(), auth.FromContext(r.Context()), in)
	if !res.Kind.Success() {
		respond(h.Deps, w, res, "")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    res.Value.Token,
		Path:     "/",
		Expires:  res.Value.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.writeJSON(w, Status(res.Kind), map[string]any{
		"success":   res.Message,
		"token":     res.Value.Token,
		"expiresAt": res.Value.ExpiresAt,
		"user":      res.Value.User,
	})
}

// Logout clears the session cookie. Tokens are stateless, so a bearer token
// stays valid until it expires.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.writeJSON(w, http.StatusOK, map[string]any{"success": "successful log out"})
}

func (h *AuthHandler) Password(w http.ResponseWriter, r *http.Request) {
	var in validate.UpdatePasswordInput
	if !h.decode(w, r, &in) {
		return
	}
	respond(h.Deps, w, h.Service.UpdatePassword(r.Context(), auth.FromContext(r.Context()), in), "user")
}
