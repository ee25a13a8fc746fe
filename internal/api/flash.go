package api

import (
	"encoding/base64"
	"net/http"
	"strings"
)

const flashCookieName = "mansion_flash"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

// setFlash stores a flash message in a short-lived cookie. The message is
// base64-encoded so arbitrary text survives cookie value rules.
func (s *Server) setFlash(w http.ResponseWriter, kind, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    kind + "." + base64.RawURLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the flash cookie, if any.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	kind := "success"
	encoded := cookie.Value
	if i := strings.IndexByte(cookie.Value, '.'); i >= 0 {
		kind = cookie.Value[:i]
		encoded = cookie.Value[i+1:]
	}

	message, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(message) == 0 {
		return nil
	}

	return &Flash{Kind: kind, Message: string(message)}
}
