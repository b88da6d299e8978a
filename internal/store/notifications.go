package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"volley/internal/session"
)

// TargetAll addresses a notification to every role. Stored in target_role
// alongside the three club roles.
const TargetAll = "all"

type Notification struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	TargetRole string    `json:"target_role"`
	CreatedBy  int64     `json:"created_by"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

type NotificationsStore struct {
	db *pgxpool.Pool
}

func (s *NotificationsStore) Create(ctx context.Context, n *Notification) error {
	query := `
		INSERT INTO notifications (title, message, target_role, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	return s.db.QueryRow(ctx, query,
		n.Title,
		n.Message,
		n.TargetRole,
		n.CreatedBy,
	).Scan(&n.ID, &n.CreatedAt)
}

// ListForUser returns the notifications addressed to the user's role (or to
// everyone), newest first, with the per-user read flag joined in.
func (s *NotificationsStore) ListForUser(ctx context.Context, userID int64, role session.Role) ([]Notification, error) {
	query := `
		SELECT n.id, n.title, n.message, n.target_role, n.created_by,
		       (nr.user_id IS NOT NULL) AS read, n.created_at
		FROM notifications n
		LEFT JOIN notification_reads nr ON nr.notification_id = n.id AND nr.user_id = $1
		WHERE n.target_role IN ($2, $3)
		ORDER BY n.created_at DESC
		LIMIT 100
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, query, userID, string(role), TargetAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &n.TargetRole, &n.CreatedBy, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (s *NotificationsStore) MarkRead(ctx context.Context, notificationID, userID int64) error {
	query := `
		INSERT INTO notification_reads (notification_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	_, err := s.db.Exec(ctx, query, notificationID, userID)
	return err
}
