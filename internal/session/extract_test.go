package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{
			name: "access_token at top level",
			body: map[string]any{"access_token": "tok-1"},
			want: "tok-1",
		},
		{
			name: "legacy token key",
			body: map[string]any{"token": "tok-2"},
			want: "tok-2",
		},
		{
			name: "access_token wins over token",
			body: map[string]any{"access_token": "tok-a", "token": "tok-b"},
			want: "tok-a",
		},
		{
			name: "nested under data",
			body: map[string]any{"data": map[string]any{"access_token": "tok-3"}},
			want: "tok-3",
		},
		{
			name: "nested legacy key",
			body: map[string]any{"data": map[string]any{"token": "tok-4"}},
			want: "tok-4",
		},
		{
			name: "no token",
			body: map[string]any{"data": map[string]any{"user": map[string]any{"id": 1}}},
			want: "",
		},
		{
			name: "empty string is no token",
			body: map[string]any{"access_token": ""},
			want: "",
		},
		{
			name: "non-string token ignored",
			body: map[string]any{"access_token": 42},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractToken(tt.body))
		})
	}
}

func TestExtractUser(t *testing.T) {
	record := map[string]any{"id": float64(7), "name": "Mina", "role": "coach", "team": "U18"}

	tests := []struct {
		name string
		body map[string]any
	}{
		{"top level user", map[string]any{"user": record}},
		{"data.user", map[string]any{"data": map[string]any{"user": record}}},
		{"data itself", map[string]any{"data": record}},
		{"body itself", record},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ExtractUser(tt.body)
			require.NoError(t, err)
			assert.Equal(t, int64(7), u.ID)
			assert.Equal(t, "Mina", u.Name)
			assert.Equal(t, RoleCoach, u.Role)
			assert.Equal(t, "U18", u.Team)
		})
	}
}

func TestExtractUserErrors(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty body", map[string]any{}},
		{"id without role", map[string]any{"user": map[string]any{"id": float64(1)}}},
		{"role without id", map[string]any{"user": map[string]any{"role": "admin"}}},
		{"unknown role", map[string]any{"user": map[string]any{"id": float64(1), "role": "superuser"}}},
		{"data is not a map", map[string]any{"data": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractUser(tt.body)
			assert.Error(t, err)
		})
	}
}

func TestExtractErrorMessage(t *testing.T) {
	assert.Equal(t, "bad creds", ExtractErrorMessage(map[string]any{"error": "bad creds"}, "fallback"))
	assert.Equal(t, "nope", ExtractErrorMessage(map[string]any{"message": "nope"}, "fallback"))
	assert.Equal(t, "first", ExtractErrorMessage(map[string]any{"error": "first", "message": "second"}, "fallback"))
	assert.Equal(t, "fallback", ExtractErrorMessage(map[string]any{}, "fallback"))
	assert.Equal(t, "fallback", ExtractErrorMessage(map[string]any{"error": 500}, "fallback"))
}

func TestRolePermissions(t *testing.T) {
	// Every role sees the shared areas.
	for _, r := range []Role{RoleAdmin, RoleCoach, RolePlayer} {
		for _, p := range []string{PermDashboard, PermMatches, PermTrainings, PermNotifications, PermProfile} {
			assert.True(t, r.Can(p), "%s should hold %s", r, p)
		}
	}

	// Coaches manage players but not coaches; players manage neither.
	assert.True(t, RoleAdmin.Can(PermCoaches))
	assert.False(t, RoleCoach.Can(PermCoaches))
	assert.True(t, RoleCoach.Can(PermPlayers))
	assert.False(t, RolePlayer.Can(PermPlayers))
	assert.False(t, RolePlayer.Can(PermCoaches))

	// Unknown keys and unknown roles hold nothing.
	assert.False(t, RoleAdmin.Can("billing"))
	assert.False(t, Role("superuser").Can(PermDashboard))
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"admin", "coach", "player"} {
		r, ok := ParseRole(valid)
		require.True(t, ok)
		assert.Equal(t, Role(valid), r)
	}
	for _, invalid := range []string{"", "Admin", "superuser", "ADMIN"} {
		_, ok := ParseRole(invalid)
		assert.False(t, ok, "%q should not parse", invalid)
	}
}
