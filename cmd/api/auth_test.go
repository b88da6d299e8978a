package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"volley/internal/session"
)

func postLogin(t *testing.T, srv http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestLoginReturnsCanonicalTokenResponse(t *testing.T) {
	client := &stubAuthClient{loginBody: authBody("tok-1", 7, "coach")}
	app := newTestApplication(client)
	srv := app.mount()

	rec := postLogin(t, srv, `{"email":"ana@club.test","password":"pass123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"access_token":"tok-1"`)
	assert.Contains(t, body, `"role":"coach"`)
	assert.Contains(t, body, `"id":7`)
}

func TestLoginNormalizesLegacyResponseShapes(t *testing.T) {
	// Upstream providers have shipped the token as "token" and the user at
	// the top level; clients always see one canonical shape.
	client := &stubAuthClient{loginBody: map[string]any{
		"token": "legacy-tok",
		"user":  userPayload(4, "admin"),
	}}
	app := newTestApplication(client)
	srv := app.mount()

	rec := postLogin(t, srv, `{"email":"ana@club.test","password":"pass123"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"legacy-tok"`)
}

func TestLoginRejectedCredentials(t *testing.T) {
	client := &stubAuthClient{loginErr: &session.LoginError{Message: "invalid email or password"}}
	app := newTestApplication(client)
	srv := app.mount()

	rec := postLogin(t, srv, `{"email":"ana@club.test","password":"badpass"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
}

func TestLoginValidatesPayload(t *testing.T) {
	app := newTestApplication(&stubAuthClient{})
	srv := app.mount()

	rec := postLogin(t, srv, `{"email":"not-an-email","password":"pass123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postLogin(t, srv, `{"email":"ana@club.test"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postLogin(t, srv, `{"email":"ana@club.test","password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRejectsUnknownFields(t *testing.T) {
	app := newTestApplication(&stubAuthClient{})
	srv := app.mount()

	rec := postLogin(t, srv, `{"email":"ana@club.test","password":"pass123","extra":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginResponseWithoutTokenFails(t *testing.T) {
	client := &stubAuthClient{loginBody: map[string]any{
		"user": userPayload(4, "admin"),
	}}
	app := newTestApplication(client)
	srv := app.mount()

	rec := postLogin(t, srv, `{"email":"ana@club.test","password":"pass123"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
