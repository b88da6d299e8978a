package session

// Role is the closed set of club roles. Every authenticated user carries
// exactly one of these; anything else is treated as a data-integrity fault.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCoach  Role = "coach"
	RolePlayer Role = "player"
)

// Permission keys gating the feature areas of the club app.
const (
	PermDashboard     = "dashboard"
	PermMatches       = "matches"
	PermCoaches       = "coaches"
	PermPlayers       = "players"
	PermTrainings     = "trainings"
	PermNotifications = "notifications"
	PermProfile       = "profile"
)

// rolePermissions is the fixed role to permission mapping. It is never
// mutated at runtime; handlers ask HasPermission instead of comparing
// role strings.
var rolePermissions = map[Role][]string{
	RoleAdmin:  {PermDashboard, PermMatches, PermCoaches, PermPlayers, PermTrainings, PermNotifications, PermProfile},
	RoleCoach:  {PermDashboard, PermMatches, PermPlayers, PermTrainings, PermNotifications, PermProfile},
	RolePlayer: {PermDashboard, PermMatches, PermTrainings, PermNotifications, PermProfile},
}

// ParseRole validates a raw role string against the closed enumeration.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleCoach, RolePlayer:
		return Role(s), true
	}
	return "", false
}

// Can reports whether the role holds the given permission key.
func (r Role) Can(permission string) bool {
	for _, p := range rolePermissions[r] {
		if p == permission {
			return true
		}
	}
	return false
}
