package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Coach struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Specialty string    `json:"specialty"`
	Team      string    `json:"team"`
	UserID    *int64    `json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CoachesStore struct {
	db *pgxpool.Pool
}

const coachColumns = `id, name, email, specialty, team, user_id, created_at, updated_at`

func scanCoach(row pgx.Row, c *Coach) error {
	return row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&c.Specialty,
		&c.Team,
		&c.UserID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func (s *CoachesStore) Create(ctx context.Context, coach *Coach) error {
	query := `
		INSERT INTO coaches (name, email, specialty, team, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		coach.Name,
		coach.Email,
		coach.Specialty,
		coach.Team,
		coach.UserID,
	).Scan(&coach.ID, &coach.CreatedAt, &coach.UpdatedAt)
}

func (s *CoachesStore) GetByID(ctx context.Context, id int64) (*Coach, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var c Coach
	err := scanCoach(s.db.QueryRow(ctx, `SELECT `+coachColumns+` FROM coaches WHERE id = $1`, id), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *CoachesStore) List(ctx context.Context) ([]Coach, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT `+coachColumns+` FROM coaches ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coaches []Coach
	for rows.Next() {
		var c Coach
		if err := scanCoach(rows, &c); err != nil {
			return nil, err
		}
		coaches = append(coaches, c)
	}
	return coaches, rows.Err()
}

func (s *CoachesStore) Update(ctx context.Context, coach *Coach) error {
	query := `
		UPDATE coaches
		SET name = $1, email = $2, specialty = $3, team = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		coach.Name,
		coach.Email,
		coach.Specialty,
		coach.Team,
		coach.ID,
	).Scan(&coach.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *CoachesStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, `DELETE FROM coaches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
