// Package gate decides what a protected route does with a request: render,
// wait, or redirect. It is a pure decision table over three inputs (current
// session, whether restoration is still running, the route's allowed roles);
// every evaluation is independent of the previous one.
package gate

import (
	"net/url"

	"volley/internal/session"
)

// Decision is the outcome of guarding a protected route.
type Decision int

const (
	// Allow renders the protected content.
	Allow Decision = iota
	// Pending means session restoration is still in progress; callers show
	// a neutral loading state and must not redirect yet, so a reload never
	// flashes through the login page.
	Pending
	// RedirectLogin sends the visitor to the login route, keeping the
	// originally requested location for the post-login return.
	RedirectLogin
	// RedirectDashboard sends an authenticated visitor who lacks the
	// required role to their own dashboard. Never to login: they are
	// authenticated, just not authorized for this route.
	RedirectDashboard
)

const (
	LoginRoute     = "/login"
	DashboardRoute = "/dashboard"
)

// Decide evaluates the guard for one render of a protected route.
// requiredRoles empty means any authenticated user may pass.
func Decide(sess *session.Session, restoring bool, requiredRoles ...session.Role) Decision {
	if restoring {
		return Pending
	}
	if sess == nil {
		return RedirectLogin
	}
	if len(requiredRoles) == 0 {
		return Allow
	}
	for _, r := range requiredRoles {
		if sess.Role == r {
			return Allow
		}
	}
	return RedirectDashboard
}

// LoginRedirect builds the login route carrying the originally requested
// location, e.g. /login?next=%2Fplayers.
func LoginRedirect(from string) string {
	if from == "" || from == LoginRoute {
		return LoginRoute
	}
	return LoginRoute + "?next=" + url.QueryEscape(from)
}

// DashboardView is one of the three role dashboards.
type DashboardView string

const (
	DashboardAdmin  DashboardView = "admin"
	DashboardCoach  DashboardView = "coach"
	DashboardPlayer DashboardView = "player"
)

// ResolveDashboard maps the session's role to exactly one dashboard view.
// ok is false when there is no session or the role is outside the closed
// enumeration (a data-integrity fault); callers redirect to login then.
func ResolveDashboard(sess *session.Session) (DashboardView, bool) {
	if sess == nil {
		return "", false
	}
	switch sess.Role {
	case session.RoleAdmin:
		return DashboardAdmin, true
	case session.RoleCoach:
		return DashboardCoach, true
	case session.RolePlayer:
		return DashboardPlayer, true
	default:
		return "", false
	}
}
