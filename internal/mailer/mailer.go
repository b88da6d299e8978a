package mailer

import "embed"

const (
	FromName              = "Volley Club"
	maxRetries            = 3
	UserWelcomeTemplate   = "user_invitation.tmpl"
	MatchScheduleTemplate = "match_scheduled.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
