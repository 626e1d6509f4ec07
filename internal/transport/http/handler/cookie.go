package handler

import (
	"net/http"
	"time"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/ErlanBelekov/companydesk/internal/session"
)

func setSessionCookies(w http.ResponseWriter, creds *domain.Credentials) {
	setCookie(w, session.BearerCookie, creds.Bearer, creds.ExpiresAt)
	setCookie(w, session.ShadowCookie, creds.Shadow, creds.ExpiresAt)
}

func setCookie(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   true,
	})
}

// clearCookie overwrites name with an empty, already-expired cookie.
func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   true,
	})
}
