package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PushTokensStore struct {
	db *pgxpool.Pool
}

func (s *PushTokensStore) Register(ctx context.Context, userID int64, token string) error {
	query := `
		INSERT INTO push_tokens (user_id, token)
		VALUES ($1, $2)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, userID, token)
	return err
}

// ListForTarget returns the device tokens of every active user holding the
// target role; TargetAll widens it to the whole club.
func (s *PushTokensStore) ListForTarget(ctx context.Context, target string) ([]string, error) {
	query := `
		SELECT pt.token
		FROM push_tokens pt
		JOIN users u ON u.id = pt.user_id
		WHERE u.is_active = true AND ($1 = 'all' OR u.role = $1)
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
