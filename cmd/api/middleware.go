package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"volley/internal/gate"
	"volley/internal/session"
)

type sessionKey string

const sessionCtx sessionKey = "session"

// SessionMiddleware restores the session from durable client storage on
// every request, then verifies the restored credentials. A token that no
// longer validates (expired, tampered, role drift) triggers an
// unconditional forced logout: storage is cleared and the request proceeds
// anonymously, so the gate sends the visitor back to login. This is the
// single, global place where authorization failures turn into logouts.
func (app *application) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessions := session.NewStore(app.authClient, app.newRequestStorage(w, r), app.logger)
		sessions.Restore(r.Context())

		if sess := sessions.Session(); sess != nil && !app.verifyCredentials(r.Context(), sess) {
			app.logger.Infow("forcing logout, credentials no longer valid", "user_id", sess.UserID)
			sessions.Logout(r.Context())
		}

		ctx := context.WithValue(r.Context(), sessionCtx, sessions)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// verifyCredentials checks that the restored session's token is still
// genuine and that the cached role matches the signed role claim.
func (app *application) verifyCredentials(ctx context.Context, sess *session.Session) bool {
	if app.config.auth.providerURL != "" {
		body, err := app.authClient.CurrentUser(ctx, sess.Token)
		if err != nil {
			return false
		}
		u, err := session.ExtractUser(body)
		return err == nil && u.ID == sess.UserID
	}

	userID, role, err := app.subjectOf(sess.Token)
	if err != nil {
		return false
	}
	return userID == sess.UserID && role == string(sess.Role)
}

func getSessionStore(r *http.Request) *session.Store {
	sessions, _ := r.Context().Value(sessionCtx).(*session.Store)
	return sessions
}

func getSession(r *http.Request) *session.Session {
	if sessions := getSessionStore(r); sessions != nil {
		return sessions.Session()
	}
	return nil
}

// RequireRoles guards a route with the gate's decision table. An empty
// role list means any authenticated user. Browser navigations get the
// SPA-style redirects (to /login with the original location preserved, or
// to the visitor's own dashboard); API clients get 401/403 JSON.
func (app *application) RequireRoles(roles ...session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessions := getSessionStore(r)
			if sessions == nil {
				app.unauthorizedErrorResponse(w, r, fmt.Errorf("no session store on request"))
				return
			}

			switch gate.Decide(sessions.Session(), sessions.Restoring(), roles...) {
			case gate.Allow:
				next.ServeHTTP(w, r)
			case gate.Pending:
				// Restoration still running: hold the decision, never redirect.
				writeJSON(w, http.StatusAccepted, map[string]string{"status": "loading"})
			case gate.RedirectLogin:
				if wantsHTML(r) {
					http.Redirect(w, r, gate.LoginRedirect(r.URL.RequestURI()), http.StatusSeeOther)
					return
				}
				app.unauthorizedErrorResponse(w, r, fmt.Errorf("authentication required"))
			case gate.RedirectDashboard:
				if wantsHTML(r) {
					http.Redirect(w, r, gate.DashboardRoute, http.StatusSeeOther)
					return
				}
				app.forbiddenResponse(w, r)
			}
		})
	}
}

// RequirePermission guards a feature area through the permission table
// instead of naming roles at the route. Unauthenticated visitors are still
// sent to login; authenticated ones lacking the key go to their dashboard.
func (app *application) RequirePermission(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessions := getSessionStore(r)
			if sessions == nil || sessions.Session() == nil {
				if wantsHTML(r) {
					http.Redirect(w, r, gate.LoginRedirect(r.URL.RequestURI()), http.StatusSeeOther)
					return
				}
				app.unauthorizedErrorResponse(w, r, fmt.Errorf("authentication required"))
				return
			}
			if !sessions.HasPermission(key) {
				if wantsHTML(r) {
					http.Redirect(w, r, gate.DashboardRoute, http.StatusSeeOther)
					return
				}
				app.forbiddenResponse(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func wantsHTML(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (app *application) BasicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Basic" {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("authorization header is malformed"))
				return
			}

			decoded, err := base64.StdEncoding.DecodeString(parts[1])
			if err != nil {
				app.unauthorizedBasicErrorResponse(w, r, err)
				return
			}

			username := app.config.auth.basic.user
			pass := app.config.auth.basic.pass

			creds := strings.SplitN(string(decoded), ":", 2)
			if len(creds) != 2 || creds[0] != username || creds[1] != pass {
				app.unauthorizedBasicErrorResponse(w, r, fmt.Errorf("invalid credentials"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiterMiddleware protects the credential endpoints from brute force.
func (app *application) RateLimiterMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.config.rateLimiter.Enabled {
			if allow, retryAfter := app.rateLimiter.Allow(r.RemoteAddr); !allow {
				app.rateLimitExceededResponse(w, r, retryAfter)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
