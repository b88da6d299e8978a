package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"volley/internal/session"
)

func sessionWithRole(role session.Role) *session.Session {
	return &session.Session{UserID: 1, Name: "Ana", Role: role, Token: "tok"}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		sess      *session.Session
		restoring bool
		roles     []session.Role
		want      Decision
	}{
		{
			name:      "restoring holds the decision even when anonymous",
			sess:      nil,
			restoring: true,
			roles:     []session.Role{session.RoleAdmin},
			want:      Pending,
		},
		{
			name:      "restoring holds the decision even with a session",
			sess:      sessionWithRole(session.RoleAdmin),
			restoring: true,
			want:      Pending,
		},
		{
			name: "anonymous goes to login",
			sess: nil,
			want: RedirectLogin,
		},
		{
			name:  "anonymous goes to login regardless of required roles",
			sess:  nil,
			roles: []session.Role{session.RoleAdmin, session.RoleCoach},
			want:  RedirectLogin,
		},
		{
			name: "any authenticated user passes an open guard",
			sess: sessionWithRole(session.RolePlayer),
			want: Allow,
		},
		{
			name:  "matching role passes",
			sess:  sessionWithRole(session.RoleCoach),
			roles: []session.Role{session.RoleAdmin, session.RoleCoach},
			want:  Allow,
		},
		{
			name:  "authenticated but wrong role goes to dashboard, not login",
			sess:  sessionWithRole(session.RolePlayer),
			roles: []session.Role{session.RoleAdmin, session.RoleCoach},
			want:  RedirectDashboard,
		},
		{
			name:  "coach cannot enter admin-only area",
			sess:  sessionWithRole(session.RoleCoach),
			roles: []session.Role{session.RoleAdmin},
			want:  RedirectDashboard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.sess, tt.restoring, tt.roles...))
		})
	}
}

func TestDecideIsStateless(t *testing.T) {
	// The same inputs give the same answer on every evaluation; a previous
	// denial leaves no trace.
	sess := sessionWithRole(session.RolePlayer)
	assert.Equal(t, RedirectDashboard, Decide(sess, false, session.RoleAdmin))
	assert.Equal(t, Allow, Decide(sess, false))
	assert.Equal(t, RedirectDashboard, Decide(sess, false, session.RoleAdmin))
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/login?next=%2Fplayers", LoginRedirect("/players"))
	assert.Equal(t, "/login?next=%2Ftrainings%2F42", LoginRedirect("/trainings/42"))
	assert.Equal(t, "/login?next=%2Fplayers%3Fteam%3DU18", LoginRedirect("/players?team=U18"))

	// No origin, or the login page itself, yields a bare login route.
	assert.Equal(t, "/login", LoginRedirect(""))
	assert.Equal(t, "/login", LoginRedirect("/login"))
}

func TestResolveDashboard(t *testing.T) {
	tests := []struct {
		role session.Role
		want DashboardView
	}{
		{session.RoleAdmin, DashboardAdmin},
		{session.RoleCoach, DashboardCoach},
		{session.RolePlayer, DashboardPlayer},
	}

	for _, tt := range tests {
		view, ok := ResolveDashboard(sessionWithRole(tt.role))
		assert.True(t, ok)
		assert.Equal(t, tt.want, view)
	}
}

func TestResolveDashboardRejects(t *testing.T) {
	_, ok := ResolveDashboard(nil)
	assert.False(t, ok)

	_, ok = ResolveDashboard(sessionWithRole(session.Role("superuser")))
	assert.False(t, ok)
}
