package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"volley/internal/ratelimiter"
	"volley/internal/store"
)

type stubAuthClient struct {
	loginBody   map[string]any
	loginErr    error
	currentBody map[string]any
	currentErr  error
}

func (c *stubAuthClient) Login(ctx context.Context, email, password string) (map[string]any, error) {
	return c.loginBody, c.loginErr
}

func (c *stubAuthClient) Logout(ctx context.Context, token string) error { return nil }

func (c *stubAuthClient) CurrentUser(ctx context.Context, token string) (map[string]any, error) {
	return c.currentBody, c.currentErr
}

type stubStatsStore struct{}

func (stubStatsStore) AdminDashboard(ctx context.Context) (*store.AdminDashboard, error) {
	return &store.AdminDashboard{PlayersCount: 12}, nil
}

func (stubStatsStore) CoachDashboard(ctx context.Context, team string) (*store.CoachDashboard, error) {
	return &store.CoachDashboard{Team: team}, nil
}

func (stubStatsStore) PlayerDashboard(ctx context.Context, userID int64) (*store.PlayerDashboard, error) {
	return &store.PlayerDashboard{UpcomingTrainings: 2}, nil
}

func userPayload(id int64, role string) map[string]any {
	return map[string]any{"id": float64(id), "name": "Test User", "role": role}
}

func authBody(token string, id int64, role string) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"access_token": token,
			"user":         userPayload(id, role),
		},
	}
}

// newTestApplication wires an application against stub collaborators. The
// provider URL is set so credential verification goes through the stub
// client instead of JWT validation.
func newTestApplication(client *stubAuthClient) *application {
	app := &application{
		logger: zap.NewNop().Sugar(),
		config: config{
			env: "test",
			auth: authConfig{
				providerURL: "http://identity.test",
				token:       tokenConfig{accessTokenExp: time.Hour},
				basic:       basicConfig{user: "ops", pass: "secret"},
			},
			rateLimiter: ratelimiter.Config{Enabled: false},
		},
		store:      store.Storage{Stats: stubStatsStore{}},
		authClient: client,
	}
	return app
}

func loginCookies(t *testing.T, srv http.Handler, email string) []*http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/login/web",
		strings.NewReader(`{"email":"`+email+`","password":"pass123"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestGuardRedirectsAnonymousBrowserToLogin(t *testing.T) {
	app := newTestApplication(&stubAuthClient{})
	srv := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/players", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fv1%2Fplayers", rec.Header().Get("Location"))
}

func TestGuardRejectsAnonymousAPIClient(t *testing.T) {
	app := newTestApplication(&stubAuthClient{})
	srv := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/players", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestGuardPreservesQueryInLoginRedirect(t *testing.T) {
	app := newTestApplication(&stubAuthClient{})
	srv := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/players?team=U18", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Fv1%2Fplayers%3Fteam%3DU18", rec.Header().Get("Location"))
}

func TestWebLoginEstablishesCookieSession(t *testing.T) {
	client := &stubAuthClient{
		loginBody:   authBody("tok-7", 7, "player"),
		currentBody: map[string]any{"user": userPayload(7, "player")},
	}
	app := newTestApplication(client)
	srv := app.mount()

	cookies := loginCookies(t, srv, "ana@club.test")

	var names []string
	for _, c := range cookies {
		names = append(names, c.Name)
		assert.True(t, c.HttpOnly, "%s must be HttpOnly", c.Name)
	}
	assert.Contains(t, names, tokenCookieName)
	assert.Contains(t, names, userCookieName)

	// The established session passes an authenticated-only guard.
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"view":"player"`)
}

func TestPlayerSentToDashboardFromAdminArea(t *testing.T) {
	client := &stubAuthClient{
		loginBody:   authBody("tok-7", 7, "player"),
		currentBody: map[string]any{"user": userPayload(7, "player")},
	}
	app := newTestApplication(client)
	srv := app.mount()
	cookies := loginCookies(t, srv, "ana@club.test")

	// Browser navigation: redirected to their own dashboard, never to login.
	req := httptest.NewRequest(http.MethodGet, "/v1/coaches", nil)
	req.Header.Set("Accept", "text/html")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	// API client: plain 403.
	req = httptest.NewRequest(http.MethodGet, "/v1/coaches", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCoachPassesSharedGuardButNotAdminGuard(t *testing.T) {
	client := &stubAuthClient{
		loginBody:   authBody("tok-3", 3, "coach"),
		currentBody: map[string]any{"user": userPayload(3, "coach")},
	}
	app := newTestApplication(client)
	app.store.Players = stubPlayersStore{}
	srv := app.mount()
	cookies := loginCookies(t, srv, "coach@club.test")

	req := httptest.NewRequest(http.MethodGet, "/v1/players", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/coaches", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRevokedCredentialsForceLogout(t *testing.T) {
	client := &stubAuthClient{
		loginBody:   authBody("tok-7", 7, "player"),
		currentBody: map[string]any{"user": userPayload(7, "player")},
	}
	app := newTestApplication(client)
	srv := app.mount()
	cookies := loginCookies(t, srv, "ana@club.test")

	// The provider now rejects the token: the next request is treated as
	// anonymous and the cookies are expired.
	client.currentErr = assert.AnError

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cleared := 0
	for _, c := range rec.Result().Cookies() {
		if (c.Name == tokenCookieName || c.Name == userCookieName) && c.MaxAge < 0 {
			cleared++
		}
	}
	assert.Equal(t, 2, cleared, "both session cookies should be expired")
}

func TestLogoutTwiceIsHarmless(t *testing.T) {
	client := &stubAuthClient{
		loginBody:   authBody("tok-7", 7, "player"),
		currentBody: map[string]any{"user": userPayload(7, "player")},
	}
	app := newTestApplication(client)
	srv := app.mount()
	cookies := loginCookies(t, srv, "ana@club.test")

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/logout", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, "logout attempt %d", i+1)
	}
}

func TestBasicAuthProtectsOpsEndpoints(t *testing.T) {
	app := newTestApplication(&stubAuthClient{})
	srv := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req = httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.SetBasicAuth("ops", "secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestBearerHeaderSessionsSkipCookies(t *testing.T) {
	client := &stubAuthClient{
		currentBody: map[string]any{"user": userPayload(9, "admin")},
	}
	app := newTestApplication(client)
	srv := app.mount()

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer tok-9")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"view":"admin"`)
}

type stubPlayersStore struct{}

func (stubPlayersStore) Create(ctx context.Context, p *store.Player) error { return nil }
func (stubPlayersStore) GetByID(ctx context.Context, id int64) (*store.Player, error) {
	return &store.Player{ID: id, Name: "Stub"}, nil
}
func (stubPlayersStore) List(ctx context.Context, f store.PlayerFilters) ([]store.Player, error) {
	return []store.Player{}, nil
}
func (stubPlayersStore) Update(ctx context.Context, p *store.Player) error { return nil }
func (stubPlayersStore) Delete(ctx context.Context, id int64) error        { return nil }
