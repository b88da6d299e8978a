package notifications

import (
	"context"
	"errors"
	"strconv"

	"github.com/9ssi7/exponent"
)

// SendClubNotification fans a club announcement out to every device token of
// the targeted role. Deduplicates tokens first; a user may have several
// devices and one device may have re-registered.
func SendClubNotification(ctx context.Context, push PushSender, tokens []string, notificationID int64, title, body string) error {
	tokens = dedupe(tokens)
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	idStr := strconv.FormatInt(notificationID, 10)
	msgs := make([]*exponent.Message, 0, len(tokens))
	for _, t := range tokens {
		token := exponent.Token(t)
		msg := &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":            "club_notification",
				"notification_id": idStr,
				"screen":          "notifications",
			},
		}
		msgs = append(msgs, msg)
	}

	_, err := push.Publish(ctx, msgs)
	return err
}

func dedupe(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
