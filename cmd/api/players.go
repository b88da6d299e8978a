package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"volley/internal/store"
)

type CreatePlayerPayload struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	Position     string `json:"position" validate:"required,oneof=setter outside opposite middle libero"`
	JerseyNumber int    `json:"jersey_number" validate:"required,gte=1,lte=99"`
	Team         string `json:"team" validate:"required,max=100"`
}

// createPlayerHandler godoc
//
//	@Summary		Create a player
//	@Tags			players
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreatePlayerPayload	true	"Player details"
//	@Success		201		{object}	store.Player
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/players [post]
func (app *application) createPlayerHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreatePlayerPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	player := &store.Player{
		Name:         payload.Name,
		Email:        payload.Email,
		Position:     payload.Position,
		JerseyNumber: payload.JerseyNumber,
		Team:         payload.Team,
	}

	if err := app.store.Players.Create(r.Context(), player); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, player); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listPlayersHandler godoc
//
//	@Summary		List players
//	@Description	Filterable by team, position and a name search; paginated
//	@Tags			players
//	@Produce		json
//	@Param			team		query		string	false	"Team"
//	@Param			position	query		string	false	"Position"
//	@Param			search		query		string	false	"Name search"
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Offset"
//	@Success		200			{array}		store.Player
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/players [get]
func (app *application) listPlayersHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	players, err := app.store.Players.List(r.Context(), store.PlayerFilters{
		Team:     q.Get("team"),
		Position: q.Get("position"),
		Search:   q.Get("search"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, players); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getPlayerHandler godoc
//
//	@Summary		Get a player
//	@Tags			players
//	@Produce		json
//	@Param			playerID	path		int	true	"Player ID"
//	@Success		200			{object}	store.Player
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/players/{playerID} [get]
func (app *application) getPlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := idParam(r, "playerID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	player, err := app.store.Players.GetByID(r.Context(), playerID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, player); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdatePlayerPayload struct {
	Name         string `json:"name" validate:"required,max=100"`
	Email        string `json:"email" validate:"omitempty,email,max=255"`
	Position     string `json:"position" validate:"required,oneof=setter outside opposite middle libero"`
	JerseyNumber int    `json:"jersey_number" validate:"required,gte=1,lte=99"`
	Team         string `json:"team" validate:"required,max=100"`
}

// updatePlayerHandler godoc
//
//	@Summary		Update a player
//	@Tags			players
//	@Accept			json
//	@Produce		json
//	@Param			playerID	path		int					true	"Player ID"
//	@Param			payload		body		UpdatePlayerPayload	true	"Player details"
//	@Success		200			{object}	store.Player
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/players/{playerID} [put]
func (app *application) updatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := idParam(r, "playerID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdatePlayerPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	player := &store.Player{
		ID:           playerID,
		Name:         payload.Name,
		Email:        payload.Email,
		Position:     payload.Position,
		JerseyNumber: payload.JerseyNumber,
		Team:         payload.Team,
	}

	if err := app.store.Players.Update(r.Context(), player); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, player); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deletePlayerHandler godoc
//
//	@Summary		Delete a player
//	@Tags			players
//	@Param			playerID	path		int		true	"Player ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/players/{playerID} [delete]
func (app *application) deletePlayerHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := idParam(r, "playerID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Players.Delete(r.Context(), playerID); err != nil {
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

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}
