package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// User is the persisted user record, stored alongside the credential token
// in durable client storage.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
	Team string `json:"team,omitempty"`
}

// Session is the in-memory record of the currently authenticated user. A
// session always carries both a user record and a credential token; the
// store never exposes one without the other.
type Session struct {
	UserID int64
	Name   string
	Role   Role
	Team   string
	Token  string
}

// LoginError is the typed failure returned by Store.Login. Message is safe
// to show next to the login form.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string {
	return e.Message
}

var errMalformedUser = errors.New("malformed user record")

func newSession(u *User, token string) *Session {
	return &Session{
		UserID: u.ID,
		Name:   u.Name,
		Role:   u.Role,
		Team:   u.Team,
		Token:  token,
	}
}

func (s *Session) user() *User {
	return &User{
		ID:   s.UserID,
		Name: s.Name,
		Role: s.Role,
		Team: s.Team,
	}
}

// decodeUser parses a persisted user record and validates its role against
// the closed enumeration.
func decodeUser(raw []byte) (*User, error) {
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedUser, err)
	}
	if _, ok := ParseRole(string(u.Role)); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", errMalformedUser, u.Role)
	}
	return &u, nil
}
