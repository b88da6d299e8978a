package main

import (
	"context"
	"time"
)

func (app *application) markFinishedMatchesEvery30Mins() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		run := func() {
			n, err := app.store.Matches.MarkFinished(context.Background())
			if err != nil {
				app.logger.Errorf("Error marking matches as played: %v", err)
				return
			}
			if n > 0 {
				app.logger.Infof("Marked %d matches as played", n)
			}
		}

		// Run once immediately
		run()

		for range ticker.C {
			run()
		}
	}()
}
