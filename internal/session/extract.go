package session

import (
	"encoding/json"
	"fmt"
)

// The authentication collaborator has shipped several response shapes over
// time: the token under "token" or "access_token", the user under "user" or
// "data.user", sometimes the whole payload nested under "data". Everything
// is normalized here, at the boundary; the raw shapes never travel further
// into the system.

// ExtractToken pulls the credential token out of a decoded login response.
// Returns "" when no token field is present.
func ExtractToken(body map[string]any) string {
	for _, key := range []string{"access_token", "token"} {
		if tok, ok := body[key].(string); ok && tok != "" {
			return tok
		}
	}
	if data, ok := body["data"].(map[string]any); ok {
		for _, key := range []string{"access_token", "token"} {
			if tok, ok := data[key].(string); ok && tok != "" {
				return tok
			}
		}
	}
	return ""
}

// ExtractUser pulls the user record out of a decoded login or /me response,
// trying "user", "data.user", "data", and finally the body itself.
func ExtractUser(body map[string]any) (*User, error) {
	candidates := []any{body["user"]}
	if data, ok := body["data"].(map[string]any); ok {
		candidates = append(candidates, data["user"], data)
	}
	candidates = append(candidates, body)

	for _, c := range candidates {
		m, ok := c.(map[string]any)
		if !ok || !looksLikeUser(m) {
			continue
		}
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		u, err := decodeUser(raw)
		if err != nil {
			return nil, err
		}
		return u, nil
	}
	return nil, fmt.Errorf("no user record in response")
}

func looksLikeUser(m map[string]any) bool {
	_, hasID := m["id"]
	_, hasRole := m["role"]
	return hasID && hasRole
}

// ExtractErrorMessage pulls a human-readable message out of an error
// response body, falling back to the given default.
func ExtractErrorMessage(body map[string]any, fallback string) string {
	for _, key := range []string{"error", "message"} {
		if msg, ok := body[key].(string); ok && msg != "" {
			return msg
		}
	}
	return fallback
}
