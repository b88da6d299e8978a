package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"volley/internal/session"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	ErrDuplicateEmail    = errors.New("a user with that email already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	Users interface {
		GetByID(context.Context, int64) (*User, error)
		GetByEmail(context.Context, string) (*User, error)
		CreateAndInvite(ctx context.Context, user *User, invitationToken string, exp time.Duration) error
		Activate(ctx context.Context, token string) error
		Delete(context.Context, int64) error
		Update(context.Context, *User) error
		SetProfilePicture(ctx context.Context, userID int64, url string) error
		SaveRefreshToken(ctx context.Context, userID int64, refreshToken string) error
		GetRefreshToken(ctx context.Context, userID int64) (string, error)
		DeleteRefreshToken(ctx context.Context, userID int64) error
	}
	Players interface {
		Create(context.Context, *Player) error
		GetByID(context.Context, int64) (*Player, error)
		List(context.Context, PlayerFilters) ([]Player, error)
		Update(context.Context, *Player) error
		Delete(context.Context, int64) error
	}
	Coaches interface {
		Create(context.Context, *Coach) error
		GetByID(context.Context, int64) (*Coach, error)
		List(context.Context) ([]Coach, error)
		Update(context.Context, *Coach) error
		Delete(context.Context, int64) error
	}
	Trainings interface {
		Create(context.Context, *Training) error
		GetByID(context.Context, int64) (*Training, error)
		List(context.Context, TrainingFilters) ([]Training, error)
		Update(context.Context, *Training) error
		Delete(context.Context, int64) error
		SetAttendance(ctx context.Context, trainingID, playerID int64, present bool) error
		ListAttendance(ctx context.Context, trainingID int64) ([]Attendance, error)
	}
	Matches interface {
		Create(context.Context, *Match) error
		SetCode(ctx context.Context, matchID int64, code string) error
		GetByID(context.Context, int64) (*Match, error)
		GetByCode(context.Context, string) (*Match, error)
		List(context.Context, MatchFilters) ([]Match, error)
		Update(context.Context, *Match) error
		Delete(context.Context, int64) error
		MarkFinished(ctx context.Context) (int64, error)
	}
	Notifications interface {
		Create(context.Context, *Notification) error
		ListForUser(ctx context.Context, userID int64, role session.Role) ([]Notification, error)
		MarkRead(ctx context.Context, notificationID, userID int64) error
	}
	PushTokens interface {
		Register(ctx context.Context, userID int64, token string) error
		ListForTarget(ctx context.Context, target string) ([]string, error)
	}
	Stats interface {
		AdminDashboard(ctx context.Context) (*AdminDashboard, error)
		CoachDashboard(ctx context.Context, team string) (*CoachDashboard, error)
		PlayerDashboard(ctx context.Context, userID int64) (*PlayerDashboard, error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		Users:         &UsersStore{db},
		Players:       &PlayersStore{db},
		Coaches:       &CoachesStore{db},
		Trainings:     &TrainingsStore{db},
		Matches:       &MatchesStore{db},
		Notifications: &NotificationsStore{db},
		PushTokens:    &PushTokensStore{db},
		Stats:         &StatsStore{db},
	}
}
