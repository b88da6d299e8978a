package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Match statuses move scheduled -> played (or cancelled); scores only carry
// meaning once a match is played.
const (
	MatchScheduled = "scheduled"
	MatchPlayed    = "played"
	MatchCancelled = "cancelled"
)

type Match struct {
	ID        int64     `json:"id"`
	Opponent  string    `json:"opponent"`
	StartsAt  time.Time `json:"starts_at"`
	Location  string    `json:"location"`
	Home      bool      `json:"home"`
	Team      string    `json:"team"`
	ScoreFor  *int      `json:"score_for,omitempty"`
	ScoreAway *int      `json:"score_away,omitempty"`
	Status    string    `json:"status"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MatchFilters struct {
	Team     string
	Status   string
	Upcoming bool
	Limit    int
	Offset   int
}

type MatchesStore struct {
	db *pgxpool.Pool
}

const matchColumns = `id, opponent, starts_at, location, home, team, score_for, score_away, status, COALESCE(code, ''), created_at, updated_at`

func scanMatch(row pgx.Row, m *Match) error {
	return row.Scan(
		&m.ID,
		&m.Opponent,
		&m.StartsAt,
		&m.Location,
		&m.Home,
		&m.Team,
		&m.ScoreFor,
		&m.ScoreAway,
		&m.Status,
		&m.Code,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

func (s *MatchesStore) Create(ctx context.Context, match *Match) error {
	query := `
		INSERT INTO matches (opponent, starts_at, location, home, team, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	if match.Status == "" {
		match.Status = MatchScheduled
	}

	return s.db.QueryRow(ctx, query,
		match.Opponent,
		match.StartsAt,
		match.Location,
		match.Home,
		match.Team,
		match.Status,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)
}

// SetCode stores the public share code once it has been derived from the id.
func (s *MatchesStore) SetCode(ctx context.Context, matchID int64, code string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, `UPDATE matches SET code = $1 WHERE id = $2`, code, matchID)
	return err
}

func (s *MatchesStore) GetByID(ctx context.Context, id int64) (*Match, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var m Match
	err := scanMatch(s.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id), &m)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *MatchesStore) GetByCode(ctx context.Context, code string) (*Match, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var m Match
	err := scanMatch(s.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE code = $1`, code), &m)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *MatchesStore) List(ctx context.Context, filters MatchFilters) ([]Match, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	where := []string{"1=1"}
	args := []any{}

	if filters.Team != "" {
		args = append(args, filters.Team)
		where = append(where, fmt.Sprintf("team = $%d", len(args)))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filters.Upcoming {
		where = append(where, "starts_at > now()")
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit, filters.Offset)

	query := fmt.Sprintf(`
		SELECT `+matchColumns+`
		FROM matches
		WHERE %s
		ORDER BY starts_at
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *MatchesStore) Update(ctx context.Context, match *Match) error {
	query := `
		UPDATE matches
		SET opponent = $1, starts_at = $2, location = $3, home = $4, team = $5,
		    score_for = $6, score_away = $7, status = $8, updated_at = now()
		WHERE id = $9
		RETURNING updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		match.Opponent,
		match.StartsAt,
		match.Location,
		match.Home,
		match.Team,
		match.ScoreFor,
		match.ScoreAway,
		match.Status,
		match.ID,
	).Scan(&match.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// MarkFinished flips scheduled matches whose start time is well past into
// played, so listings stop advertising them as upcoming. Scores stay NULL
// until someone records them.
func (s *MatchesStore) MarkFinished(ctx context.Context) (int64, error) {
	query := `
		UPDATE matches
		SET status = $1, updated_at = now()
		WHERE status = $2 AND starts_at < now() - interval '3 hours'
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, query, MatchPlayed, MatchScheduled)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (s *MatchesStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
