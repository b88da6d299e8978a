package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"volley/internal/store"
)

type memMatchesStore struct {
	nextID  int64
	matches map[int64]*store.Match
}

func newMemMatchesStore() *memMatchesStore {
	return &memMatchesStore{nextID: 1, matches: make(map[int64]*store.Match)}
}

func (s *memMatchesStore) Create(ctx context.Context, m *store.Match) error {
	m.ID = s.nextID
	s.nextID++
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *memMatchesStore) SetCode(ctx context.Context, matchID int64, code string) error {
	m, ok := s.matches[matchID]
	if !ok {
		return store.ErrNotFound
	}
	m.Code = code
	return nil
}

func (s *memMatchesStore) GetByID(ctx context.Context, id int64) (*store.Match, error) {
	m, ok := s.matches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *memMatchesStore) GetByCode(ctx context.Context, code string) (*store.Match, error) {
	for _, m := range s.matches {
		if m.Code == code {
			cp := *m
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *memMatchesStore) List(ctx context.Context, f store.MatchFilters) ([]store.Match, error) {
	var out []store.Match
	for _, m := range s.matches {
		out = append(out, *m)
	}
	return out, nil
}

func (s *memMatchesStore) Update(ctx context.Context, m *store.Match) error {
	if _, ok := s.matches[m.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *memMatchesStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.matches[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.matches, id)
	return nil
}

func (s *memMatchesStore) MarkFinished(ctx context.Context) (int64, error) { return 0, nil }

func newMatchesTestRouter(t *testing.T) (http.Handler, *memMatchesStore) {
	t.Helper()

	codec, err := newMatchCodec("test-salt")
	require.NoError(t, err)

	matches := newMemMatchesStore()
	app := &application{
		logger:     zap.NewNop().Sugar(),
		store:      store.Storage{Matches: matches},
		matchCodec: codec,
	}

	r := chi.NewRouter()
	r.Post("/matches", app.createMatchHandler)
	r.Get("/matches/{matchID}", app.getMatchHandler)
	r.Get("/matches/code/{code}", app.getMatchByCodeHandler)
	return r, matches
}

func TestCreateMatchAssignsShareCode(t *testing.T) {
	srv, matches := newMatchesTestRouter(t)

	payload := `{"opponent":"VC Rivals","starts_at":"2026-09-12T19:00:00Z","location":"Main Hall","home":true,"team":"U18"}`
	req := httptest.NewRequest(http.MethodPost, "/matches", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data store.Match `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.Data.Code)
	assert.GreaterOrEqual(t, len(resp.Data.Code), 8)
	assert.Equal(t, strings.ToUpper(resp.Data.Code), resp.Data.Code)
	assert.Equal(t, store.MatchScheduled, resp.Data.Status)

	stored, err := matches.GetByID(context.Background(), resp.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Data.Code, stored.Code)
}

func TestShareCodesAreStablePerMatch(t *testing.T) {
	codec1, err := newMatchCodec("salt-a")
	require.NoError(t, err)
	codec2, err := newMatchCodec("salt-a")
	require.NoError(t, err)

	a1, err := codec1.EncodeInt64([]int64{42})
	require.NoError(t, err)
	a2, err := codec2.EncodeInt64([]int64{42})
	require.NoError(t, err)
	assert.Equal(t, a1, a2)

	// Different matches never collide on a code.
	b, err := codec1.EncodeInt64([]int64{43})
	require.NoError(t, err)
	assert.NotEqual(t, a1, b)
}

func TestLookupMatchByCode(t *testing.T) {
	srv, _ := newMatchesTestRouter(t)

	payload := `{"opponent":"VC Rivals","starts_at":"2026-09-12T19:00:00Z","location":"Main Hall","team":"U18"}`
	req := httptest.NewRequest(http.MethodPost, "/matches", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data store.Match `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Lookup is case-insensitive.
	req = httptest.NewRequest(http.MethodGet, "/matches/code/"+strings.ToLower(created.Data.Code), nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"opponent":"VC Rivals"`)

	req = httptest.NewRequest(http.MethodGet, "/matches/code/NOSUCHCODE", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMatchRejectsBadID(t *testing.T) {
	srv, _ := newMatchesTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/matches/not-a-number", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/matches/999", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
