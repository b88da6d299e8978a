package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminDashboard struct {
	PlayersCount      int        `json:"players_count"`
	CoachesCount      int        `json:"coaches_count"`
	UpcomingTrainings int        `json:"upcoming_trainings"`
	UpcomingMatches   int        `json:"upcoming_matches"`
	NextMatchAt       *time.Time `json:"next_match_at,omitempty"`
}

type CoachDashboard struct {
	Team              string     `json:"team"`
	PlayersCount      int        `json:"players_count"`
	UpcomingTrainings int        `json:"upcoming_trainings"`
	UpcomingMatches   int        `json:"upcoming_matches"`
	NextTrainingAt    *time.Time `json:"next_training_at,omitempty"`
}

type PlayerDashboard struct {
	Team               string     `json:"team"`
	TrainingsAttended  int        `json:"trainings_attended"`
	UpcomingTrainings  int        `json:"upcoming_trainings"`
	UpcomingMatches    int        `json:"upcoming_matches"`
	NextTrainingAt     *time.Time `json:"next_training_at,omitempty"`
	UnreadNotification int        `json:"unread_notifications"`
}

type StatsStore struct {
	db *pgxpool.Pool
}

func (s *StatsStore) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var d AdminDashboard
	err := s.db.QueryRow(ctx, `
SELECT
  (SELECT COUNT(*) FROM players) AS players_count,
  (SELECT COUNT(*) FROM coaches) AS coaches_count,
  (SELECT COUNT(*) FROM trainings WHERE starts_at > now()) AS upcoming_trainings,
  (SELECT COUNT(*) FROM matches WHERE starts_at > now() AND status = 'scheduled') AS upcoming_matches,
  (SELECT MIN(starts_at) FROM matches WHERE starts_at > now() AND status = 'scheduled') AS next_match_at
`).Scan(
		&d.PlayersCount,
		&d.CoachesCount,
		&d.UpcomingTrainings,
		&d.UpcomingMatches,
		&d.NextMatchAt,
	)
	if err != nil {
		return nil, fmt.Errorf("admin dashboard stats: %w", err)
	}

	return &d, nil
}

func (s *StatsStore) CoachDashboard(ctx context.Context, team string) (*CoachDashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	d := CoachDashboard{Team: team}
	err := s.db.QueryRow(ctx, `
SELECT
  (SELECT COUNT(*) FROM players WHERE team = $1) AS players_count,
  (SELECT COUNT(*) FROM trainings WHERE team = $1 AND starts_at > now()) AS upcoming_trainings,
  (SELECT COUNT(*) FROM matches WHERE team = $1 AND starts_at > now() AND status = 'scheduled') AS upcoming_matches,
  (SELECT MIN(starts_at) FROM trainings WHERE team = $1 AND starts_at > now()) AS next_training_at
`, team).Scan(
		&d.PlayersCount,
		&d.UpcomingTrainings,
		&d.UpcomingMatches,
		&d.NextTrainingAt,
	)
	if err != nil {
		return nil, fmt.Errorf("coach dashboard stats: %w", err)
	}

	return &d, nil
}

func (s *StatsStore) PlayerDashboard(ctx context.Context, userID int64) (*PlayerDashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	var d PlayerDashboard
	err := s.db.QueryRow(ctx, `
SELECT
  COALESCE((SELECT u.team FROM users u WHERE u.id = $1), '') AS team,

  (SELECT COUNT(*)
   FROM training_attendance ta
   JOIN players p ON p.id = ta.player_id
   WHERE p.user_id = $1 AND ta.present) AS trainings_attended,

  (SELECT COUNT(*)
   FROM trainings t
   WHERE t.starts_at > now()
     AND t.team = (SELECT u.team FROM users u WHERE u.id = $1)) AS upcoming_trainings,

  (SELECT COUNT(*)
   FROM matches m
   WHERE m.starts_at > now() AND m.status = 'scheduled'
     AND m.team = (SELECT u.team FROM users u WHERE u.id = $1)) AS upcoming_matches,

  (SELECT MIN(t.starts_at)
   FROM trainings t
   WHERE t.starts_at > now()
     AND t.team = (SELECT u.team FROM users u WHERE u.id = $1)) AS next_training_at,

  (SELECT COUNT(*)
   FROM notifications n
   LEFT JOIN notification_reads nr ON nr.notification_id = n.id AND nr.user_id = $1
   WHERE nr.user_id IS NULL
     AND n.target_role IN ('all', (SELECT u.role FROM users u WHERE u.id = $1))) AS unread_notifications
`, userID).Scan(
		&d.Team,
		&d.TrainingsAttended,
		&d.UpcomingTrainings,
		&d.UpcomingMatches,
		&d.NextTrainingAt,
		&d.UnreadNotification,
	)
	if err != nil {
		return nil, fmt.Errorf("player dashboard stats: %w", err)
	}

	return &d, nil
}
