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

type Player struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Position     string    `json:"position"`
	JerseyNumber int       `json:"jersey_number"`
	Team         string    `json:"team"`
	UserID       *int64    `json:"user_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type PlayerFilters struct {
	Team     string
	Position string
	Search   string
	Limit    int
	Offset   int
}

type PlayersStore struct {
	db *pgxpool.Pool
}

const playerColumns = `id, name, email, position, jersey_number, team, user_id, created_at, updated_at`

func scanPlayer(row pgx.Row, p *Player) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Position,
		&p.JerseyNumber,
		&p.Team,
		&p.UserID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (s *PlayersStore) Create(ctx context.Context, player *Player) error {
	query := `
		INSERT INTO players (name, email, position, jersey_number, team, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		player.Name,
		player.Email,
		player.Position,
		player.JerseyNumber,
		player.Team,
		player.UserID,
	).Scan(&player.ID, &player.CreatedAt, &player.UpdatedAt)

	return err
}

func (s *PlayersStore) GetByID(ctx context.Context, id int64) (*Player, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var p Player
	err := scanPlayer(s.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *PlayersStore) List(ctx context.Context, filters PlayerFilters) ([]Player, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	where := []string{"1=1"}
	args := []any{}

	if filters.Team != "" {
		args = append(args, filters.Team)
		where = append(where, fmt.Sprintf("team = $%d", len(args)))
	}
	if filters.Position != "" {
		args = append(args, filters.Position)
		where = append(where, fmt.Sprintf("position = $%d", len(args)))
	}
	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	args = append(args, limit, filters.Offset)

	query := fmt.Sprintf(`
		SELECT `+playerColumns+`
		FROM players
		WHERE %s
		ORDER BY name
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := scanPlayer(rows, &p); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *PlayersStore) Update(ctx context.Context, player *Player) error {
	query := `
		UPDATE players
		SET name = $1, email = $2, position = $3, jersey_number = $4, team = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		player.Name,
		player.Email,
		player.Position,
		player.JerseyNumber,
		player.Team,
		player.ID,
	).Scan(&player.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *PlayersStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
