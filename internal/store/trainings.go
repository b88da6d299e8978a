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

type Training struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	Duration  int       `json:"duration_minutes"`
	Location  string    `json:"location"`
	Team      string    `json:"team"`
	CoachID   *int64    `json:"coach_id,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Attendance struct {
	PlayerID   int64     `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Present    bool      `json:"present"`
	MarkedAt   time.Time `json:"marked_at"`
}

type TrainingFilters struct {
	Team     string
	Upcoming bool
	Limit    int
	Offset   int
}

type TrainingsStore struct {
	db *pgxpool.Pool
}

const trainingColumns = `id, title, starts_at, duration_minutes, location, team, coach_id, notes, created_at, updated_at`

func scanTraining(row pgx.Row, t *Training) error {
	return row.Scan(
		&t.ID,
		&t.Title,
		&t.StartsAt,
		&t.Duration,
		&t.Location,
		&t.Team,
		&t.CoachID,
		&t.Notes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

func (s *TrainingsStore) Create(ctx context.Context, training *Training) error {
	query := `
		INSERT INTO trainings (title, starts_at, duration_minutes, location, team, coach_id, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		training.Title,
		training.StartsAt,
		training.Duration,
		training.Location,
		training.Team,
		training.CoachID,
		training.Notes,
	).Scan(&training.ID, &training.CreatedAt, &training.UpdatedAt)
}

func (s *TrainingsStore) GetByID(ctx context.Context, id int64) (*Training, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var t Training
	err := scanTraining(s.db.QueryRow(ctx, `SELECT `+trainingColumns+` FROM trainings WHERE id = $1`, id), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *TrainingsStore) List(ctx context.Context, filters TrainingFilters) ([]Training, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	where := []string{"1=1"}
	args := []any{}

	if filters.Team != "" {
		args = append(args, filters.Team)
		where = append(where, fmt.Sprintf("team = $%d", len(args)))
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
		SELECT `+trainingColumns+`
		FROM trainings
		WHERE %s
		ORDER BY starts_at
		LIMIT $%d OFFSET $%d
	`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trainings []Training
	for rows.Next() {
		var t Training
		if err := scanTraining(rows, &t); err != nil {
			return nil, err
		}
		trainings = append(trainings, t)
	}
	return trainings, rows.Err()
}

func (s *TrainingsStore) Update(ctx context.Context, training *Training) error {
	query := `
		UPDATE trainings
		SET title = $1, starts_at = $2, duration_minutes = $3, location = $4, team = $5, coach_id = $6, notes = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	err := s.db.QueryRow(ctx, query,
		training.Title,
		training.StartsAt,
		training.Duration,
		training.Location,
		training.Team,
		training.CoachID,
		training.Notes,
		training.ID,
	).Scan(&training.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *TrainingsStore) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	result, err := s.db.Exec(ctx, `DELETE FROM trainings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TrainingsStore) SetAttendance(ctx context.Context, trainingID, playerID int64, present bool) error {
	query := `
		INSERT INTO training_attendance (training_id, player_id, present, marked_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (training_id, player_id)
		DO UPDATE SET present = EXCLUDED.present, marked_at = now()
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, trainingID, playerID, present)
	return err
}

func (s *TrainingsStore) ListAttendance(ctx context.Context, trainingID int64) ([]Attendance, error) {
	query := `
		SELECT ta.player_id, p.name, ta.present, ta.marked_at
		FROM training_attendance ta
		JOIN players p ON p.id = ta.player_id
		WHERE ta.training_id = $1
		ORDER BY p.name
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, trainingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendance []Attendance
	for rows.Next() {
		var a Attendance
		if err := rows.Scan(&a.PlayerID, &a.PlayerName, &a.Present, &a.MarkedAt); err != nil {
			return nil, err
		}
		attendance = append(attendance, a)
	}
	return attendance, rows.Err()
}
