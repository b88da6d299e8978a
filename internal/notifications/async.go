package notifications

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const asyncTimeout = 30 * time.Second

// CallAsync runs a notification job off the request path. Delivery failures
// are logged, never surfaced to the caller; the triggering request has
// already succeeded by the time the fan-out runs.
func CallAsync(fn func(ctx context.Context) error, op string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		defer func() {
			if rec := recover(); rec != nil {
				zap.S().Errorw("panic in background notification", "op", op, "panic", rec)
			}
		}()

		if err := fn(ctx); err != nil {
			zap.S().Errorw("background notification failed", "op", op, "error", err)
		}
	}()
}
