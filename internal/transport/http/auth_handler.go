package http

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"time"

	"contractor-card-service/internal/auth"
)

const stateCookie = "oauth_state"

type AuthHandler struct {
	auth          *auth.Service
	afterLogin    string
	secureCookies bool
}

func NewAuthHandler(service *auth.Service, afterLogin string, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: service, afterLogin: afterLogin, secureCookies: secureCookies}
}

// Login redirects to Google with a fresh state value.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	state := hex.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.auth.LoginURL(state), http.StatusFound)
}

// Callback finishes the code flow and sets the session cookie.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" || state.Value != r.URL.Query().Get("state") {
		writeError(w, http.StatusBadRequest, "invalid_state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/auth", MaxAge: -1})

	identity, err := h.auth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Printf("google sign-in failed: %v", err)
		if errors.Is(err, auth.ErrForbidden) || errors.Is(err, auth.ErrNoEmail) {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	token, expires, err := h.auth.IssueSession(identity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	log.Printf("admin %s signed in", identity.Email)
	http.Redirect(w, r, h.afterLogin, http.StatusFound)
}

// Me reports the signed-in admin; it sits behind the auth middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
