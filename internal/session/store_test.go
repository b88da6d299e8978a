package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthClient struct {
	mu          sync.Mutex
	loginBody   map[string]any
	loginErr    error
	currentBody map[string]any
	currentErr  error
	logoutErr   error
	logoutCalls int
}

func (f *fakeAuthClient) Login(ctx context.Context, email, password string) (map[string]any, error) {
	return f.loginBody, f.loginErr
}

func (f *fakeAuthClient) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeAuthClient) CurrentUser(ctx context.Context, token string) (map[string]any, error) {
	return f.currentBody, f.currentErr
}

func loginBody(token string, userID int64, role string) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"access_token": token,
			"user":         map[string]any{"id": float64(userID), "name": "Ana", "role": role},
		},
	}
}

func TestLoginPopulatesSessionAndStorage(t *testing.T) {
	client := &fakeAuthClient{loginBody: loginBody("tok-1", 7, "coach")}
	storage := NewMemoryStorage()
	store := NewStore(client, storage, nil)

	require.NoError(t, store.Login(context.Background(), "ana@club.test", "pw"))

	sess := store.Session()
	require.NotNil(t, sess)
	assert.Equal(t, int64(7), sess.UserID)
	assert.Equal(t, RoleCoach, sess.Role)
	assert.Equal(t, "tok-1", sess.Token)

	// Both entries are persisted together.
	token, ok := storage.Token()
	require.True(t, ok)
	assert.Equal(t, "tok-1", token)
	raw, ok := storage.UserRecord()
	require.True(t, ok)
	var u User
	require.NoError(t, json.Unmarshal(raw, &u))
	assert.Equal(t, int64(7), u.ID)
}

func TestLoginRejectedCredentials(t *testing.T) {
	client := &fakeAuthClient{loginErr: &LoginError{Message: "invalid email or password"}}
	store := NewStore(client, NewMemoryStorage(), nil)

	err := store.Login(context.Background(), "ana@club.test", "wrong")
	var le *LoginError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "invalid email or password", le.Message)
	assert.Nil(t, store.Session())
}

func TestLoginTransportFailure(t *testing.T) {
	client := &fakeAuthClient{loginErr: errors.New("connection refused")}
	store := NewStore(client, NewMemoryStorage(), nil)

	err := store.Login(context.Background(), "ana@club.test", "pw")
	var le *LoginError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "unable to reach the authentication service", le.Message)
}

func TestLoginMissingToken(t *testing.T) {
	client := &fakeAuthClient{loginBody: map[string]any{
		"user": map[string]any{"id": float64(1), "role": "admin"},
	}}
	store := NewStore(client, NewMemoryStorage(), nil)

	err := store.Login(context.Background(), "ana@club.test", "pw")
	var le *LoginError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "missing token in response", le.Message)
	assert.Nil(t, store.Session())
}

func TestLoginMalformedUser(t *testing.T) {
	client := &fakeAuthClient{loginBody: map[string]any{"access_token": "tok"}}
	store := NewStore(client, NewMemoryStorage(), nil)

	err := store.Login(context.Background(), "ana@club.test", "pw")
	var le *LoginError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "malformed authentication response", le.Message)
}

func TestRestoreFromStorage(t *testing.T) {
	storage := NewMemoryStorage()
	raw, _ := json.Marshal(&User{ID: 3, Name: "Iva", Role: RoleAdmin})
	require.NoError(t, storage.WriteSession("tok-9", raw))

	store := NewStore(nil, storage, nil)
	assert.True(t, store.Restoring())

	store.Restore(context.Background())

	assert.False(t, store.Restoring())
	sess := store.Session()
	require.NotNil(t, sess)
	assert.Equal(t, int64(3), sess.UserID)
	assert.Equal(t, RoleAdmin, sess.Role)
	assert.Equal(t, "tok-9", sess.Token)
}

func TestRestoreEmptyStorage(t *testing.T) {
	store := NewStore(nil, NewMemoryStorage(), nil)
	store.Restore(context.Background())
	assert.Nil(t, store.Session())
	assert.False(t, store.Restoring())
}

func TestRestoreTokenWithoutUserNoClient(t *testing.T) {
	// Both-or-neither: a bare token with no way to resolve the user is
	// discarded entirely.
	storage := NewMemoryStorage()
	storage.token = "orphan-token"

	store := NewStore(nil, storage, nil)
	store.Restore(context.Background())

	assert.Nil(t, store.Session())
	_, ok := storage.Token()
	assert.False(t, ok)
}

func TestRestoreTokenWithoutUserResolvesRemotely(t *testing.T) {
	client := &fakeAuthClient{currentBody: map[string]any{
		"user": map[string]any{"id": float64(5), "name": "Ben", "role": "player"},
	}}
	storage := NewMemoryStorage()
	storage.token = "tok-5"

	store := NewStore(client, storage, nil)
	store.Restore(context.Background())

	sess := store.Session()
	require.NotNil(t, sess)
	assert.Equal(t, int64(5), sess.UserID)
	assert.Equal(t, RolePlayer, sess.Role)

	// The resolved record is persisted so the next restore is local.
	raw, ok := storage.UserRecord()
	require.True(t, ok)
	assert.Contains(t, string(raw), `"id":5`)
}

func TestRestoreRejectedTokenClearsStorage(t *testing.T) {
	client := &fakeAuthClient{currentErr: errors.New("401 unauthorized")}
	storage := NewMemoryStorage()
	storage.token = "expired"

	store := NewStore(client, storage, nil)
	store.Restore(context.Background())

	assert.Nil(t, store.Session())
	_, ok := storage.Token()
	assert.False(t, ok)
}

func TestRestoreMalformedUserRecord(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.WriteSession("tok", []byte(`{"id":1,"role":"superuser"}`)))

	store := NewStore(nil, storage, nil)
	store.Restore(context.Background())

	assert.Nil(t, store.Session())
	_, ok := storage.UserRecord()
	assert.False(t, ok)
}

func TestLogoutIsIdempotent(t *testing.T) {
	client := &fakeAuthClient{loginBody: loginBody("tok", 1, "admin")}
	storage := NewMemoryStorage()
	store := NewStore(client, storage, nil)
	require.NoError(t, store.Login(context.Background(), "a@b.c", "pw"))

	store.Logout(context.Background())
	assert.Nil(t, store.Session())
	_, ok := storage.Token()
	assert.False(t, ok)
	assert.Equal(t, 1, client.logoutCalls)

	// Second logout: no session, so no remote call, still clean.
	store.Logout(context.Background())
	assert.Nil(t, store.Session())
	assert.Equal(t, 1, client.logoutCalls)
}

func TestLogoutClearsEvenWhenRemoteFails(t *testing.T) {
	client := &fakeAuthClient{
		loginBody: loginBody("tok", 1, "admin"),
		logoutErr: errors.New("503 unavailable"),
	}
	storage := NewMemoryStorage()
	store := NewStore(client, storage, nil)
	require.NoError(t, store.Login(context.Background(), "a@b.c", "pw"))

	store.Logout(context.Background())

	assert.Nil(t, store.Session())
	_, ok := storage.Token()
	assert.False(t, ok)
}

func TestHasRoleAndPermission(t *testing.T) {
	client := &fakeAuthClient{loginBody: loginBody("tok", 2, "coach")}
	store := NewStore(client, NewMemoryStorage(), nil)

	// Logged out: everything is false.
	assert.False(t, store.HasRole(RoleCoach))
	assert.False(t, store.HasPermission(PermDashboard))

	require.NoError(t, store.Login(context.Background(), "a@b.c", "pw"))

	assert.True(t, store.HasRole(RoleCoach))
	assert.False(t, store.HasRole(RoleAdmin))
	assert.True(t, store.HasPermission(PermPlayers))
	assert.False(t, store.HasPermission(PermCoaches))

	store.Logout(context.Background())
	assert.False(t, store.HasRole(RoleCoach))
	assert.False(t, store.HasPermission(PermPlayers))
}

func TestSessionReturnsCopy(t *testing.T) {
	client := &fakeAuthClient{loginBody: loginBody("tok", 2, "coach")}
	store := NewStore(client, NewMemoryStorage(), nil)
	require.NoError(t, store.Login(context.Background(), "a@b.c", "pw"))

	sess := store.Session()
	sess.Role = RoleAdmin

	assert.Equal(t, RoleCoach, store.Session().Role)
}

func TestOverlappingLoginsLastWriteWins(t *testing.T) {
	storage := NewMemoryStorage()

	first := NewStore(&fakeAuthClient{loginBody: loginBody("tok-first", 1, "admin")}, storage, nil)
	second := NewStore(&fakeAuthClient{loginBody: loginBody("tok-second", 2, "player")}, storage, nil)

	require.NoError(t, first.Login(context.Background(), "first@club.test", "pw"))
	require.NoError(t, second.Login(context.Background(), "second@club.test", "pw"))

	// Storage holds the later login's token and record, consistently paired.
	token, ok := storage.Token()
	require.True(t, ok)
	assert.Equal(t, "tok-second", token)
	raw, ok := storage.UserRecord()
	require.True(t, ok)
	var u User
	require.NoError(t, json.Unmarshal(raw, &u))
	assert.Equal(t, int64(2), u.ID)
	assert.Equal(t, RolePlayer, u.Role)
}

func TestConcurrentLoginsKeepPairConsistent(t *testing.T) {
	storage := NewMemoryStorage()
	client := &fakeAuthClient{loginBody: loginBody("tok-x", 9, "coach")}
	store := NewStore(client, storage, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Login(context.Background(), "x@club.test", "pw")
		}()
	}
	wg.Wait()

	sess := store.Session()
	require.NotNil(t, sess)
	token, _ := storage.Token()
	assert.Equal(t, sess.Token, token)
	raw, _ := storage.UserRecord()
	var u User
	require.NoError(t, json.Unmarshal(raw, &u))
	assert.Equal(t, sess.UserID, u.ID)
}
