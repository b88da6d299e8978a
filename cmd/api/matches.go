package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	hashids "github.com/speps/go-hashids/v2"

	"volley/internal/mailer"
	"volley/internal/notifications"
	"volley/internal/store"
)

// newMatchCodec builds the hashids codec behind public match share codes.
// Codes are derived from the row id, so they stay stable for the lifetime
// of the match. The alphabet omits lowercase and the easily confused
// characters, so codes survive being read out loud.
func newMatchCodec(salt string) (*hashids.HashID, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	data.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	return hashids.NewWithData(data)
}

func (app *application) matchCode(matchID int64) (string, error) {
	code, err := app.matchCodec.EncodeInt64([]int64{matchID})
	if err != nil {
		return "", err
	}
	return strings.ToUpper(code), nil
}

type MatchPayload struct {
	Opponent  string    `json:"opponent" validate:"required,max=150"`
	StartsAt  time.Time `json:"starts_at" validate:"required"`
	Location  string    `json:"location" validate:"required,max=150"`
	Home      bool      `json:"home"`
	Team      string    `json:"team" validate:"required,max=100"`
	ScoreFor  *int      `json:"score_for,omitempty" validate:"omitempty,gte=0"`
	ScoreAway *int      `json:"score_away,omitempty" validate:"omitempty,gte=0"`
	Status    string    `json:"status" validate:"omitempty,oneof=scheduled played cancelled"`
}

// createMatchHandler godoc
//
//	@Summary		Schedule a match
//	@Description	Creates a match and assigns it a public share code
//	@Tags			matches
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		MatchPayload	true	"Match details"
//	@Success		201		{object}	store.Match
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/matches [post]
func (app *application) createMatchHandler(w http.ResponseWriter, r *http.Request) {
	var payload MatchPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	status := payload.Status
	if status == "" {
		status = store.MatchScheduled
	}

	match := &store.Match{
		Opponent: payload.Opponent,
		StartsAt: payload.StartsAt,
		Location: payload.Location,
		Home:     payload.Home,
		Team:     payload.Team,
		Status:   status,
	}

	if err := app.store.Matches.Create(r.Context(), match); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	code, err := app.matchCode(match.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if err := app.store.Matches.SetCode(r.Context(), match.ID, code); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	match.Code = code

	app.emailMatchSchedule(match)

	if err := app.jsonResponse(w, http.StatusCreated, match); err != nil {
		app.internalServerError(w, r, err)
	}
}

// emailMatchSchedule notifies the team's players by email, off the request
// path. Players without an email address are skipped.
func (app *application) emailMatchSchedule(match *store.Match) {
	notifications.CallAsync(func(ctx context.Context) error {
		players, err := app.store.Players.List(ctx, store.PlayerFilters{Team: match.Team})
		if err != nil {
			return err
		}

		for _, p := range players {
			if p.Email == "" {
				continue
			}
			vars := struct {
				Username string
				Opponent string
				StartsAt string
				Location string
			}{
				Username: p.Name,
				Opponent: match.Opponent,
				StartsAt: match.StartsAt.Format(time.RFC1123),
				Location: match.Location,
			}
			if _, err := app.mailer.Send(mailer.MatchScheduleTemplate, p.Name, p.Email, vars); err != nil {
				app.logger.Errorw("error sending match schedule email", "email", p.Email, "error", err)
			}
		}
		return nil
	}, "SendingMatchScheduleEmails")
}

// listMatchesHandler godoc
//
//	@Summary		List matches
//	@Tags			matches
//	@Produce		json
//	@Param			team		query		string	false	"Team"
//	@Param			status		query		string	false	"scheduled, played or cancelled"
//	@Param			upcoming	query		bool	false	"Only future matches"
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Offset"
//	@Success		200			{array}		store.Match
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/matches [get]
func (app *application) listMatchesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	upcoming, _ := strconv.ParseBool(q.Get("upcoming"))

	matches, err := app.store.Matches.List(r.Context(), store.MatchFilters{
		Team:     q.Get("team"),
		Status:   q.Get("status"),
		Upcoming: upcoming,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, matches); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getMatchHandler godoc
//
//	@Summary		Get a match
//	@Tags			matches
//	@Produce		json
//	@Param			matchID	path		int	true	"Match ID"
//	@Success		200		{object}	store.Match
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/matches/{matchID} [get]
func (app *application) getMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	match, err := app.store.Matches.GetByID(r.Context(), matchID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, match); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getMatchByCodeHandler godoc
//
//	@Summary		Look a match up by its share code
//	@Tags			matches
//	@Produce		json
//	@Param			code	path		string	true	"Share code"
//	@Success		200		{object}	store.Match
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/matches/code/{code} [get]
func (app *application) getMatchByCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		app.badRequestResponse(w, r, errors.New("missing code"))
		return
	}

	match, err := app.store.Matches.GetByCode(r.Context(), strings.ToUpper(code))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, match); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateMatchHandler godoc
//
//	@Summary		Update a match
//	@Description	Also used to record the final score by setting status to played
//	@Tags			matches
//	@Accept			json
//	@Produce		json
//	@Param			matchID	path		int				true	"Match ID"
//	@Param			payload	body		MatchPayload	true	"Match details"
//	@Success		200		{object}	store.Match
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/matches/{matchID} [put]
func (app *application) updateMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload MatchPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	status := payload.Status
	if status == "" {
		status = store.MatchScheduled
	}

	match := &store.Match{
		ID:        matchID,
		Opponent:  payload.Opponent,
		StartsAt:  payload.StartsAt,
		Location:  payload.Location,
		Home:      payload.Home,
		Team:      payload.Team,
		ScoreFor:  payload.ScoreFor,
		ScoreAway: payload.ScoreAway,
		Status:    status,
	}

	if err := app.store.Matches.Update(r.Context(), match); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, match); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteMatchHandler godoc
//
//	@Summary		Delete a match
//	@Tags			matches
//	@Param			matchID	path		int		true	"Match ID"
//	@Success		204		{string}	string	"No Content"
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/matches/{matchID} [delete]
func (app *application) deleteMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Matches.Delete(r.Context(), matchID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
