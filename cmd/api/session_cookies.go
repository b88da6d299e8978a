package main

import (
	"encoding/base64"
	"net/http"
	"strings"
)

// Durable client storage for browser sessions: two HttpOnly cookies, the
// credential token and the base64-encoded JSON user record. API clients
// carry the token in the Authorization header instead and have no cached
// user record, so restoration resolves them through the current-user
// lookup.
const (
	tokenCookieName = "access_token"
	userCookieName  = "club_user"
)

type requestStorage struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
	maxAge int
}

func (app *application) newRequestStorage(w http.ResponseWriter, r *http.Request) *requestStorage {
	return &requestStorage{
		w:      w,
		r:      r,
		secure: app.config.env == "production",
		maxAge: int(app.config.auth.token.accessTokenExp.Seconds()),
	}
}

func (s *requestStorage) Token() (string, bool) {
	if header := s.r.Header.Get("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1], true
		}
		return "", false
	}

	cookie, err := s.r.Cookie(tokenCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (s *requestStorage) UserRecord() ([]byte, bool) {
	cookie, err := s.r.Cookie(userCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil, false
	}
	return raw, true
}

func (s *requestStorage) WriteSession(token string, userRecord []byte) error {
	http.SetCookie(s.w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.maxAge,
	})
	http.SetCookie(s.w, &http.Cookie{
		Name:     userCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(userRecord),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   s.maxAge,
	})
	return nil
}

func (s *requestStorage) Clear() {
	for _, name := range []string{tokenCookieName, userCookieName} {
		http.SetCookie(s.w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}
