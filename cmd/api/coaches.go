package main

import (
	"errors"
	"net/http"

	"volley/internal/store"
)

type CoachPayload struct {
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	Specialty string `json:"specialty" validate:"max=100"`
	Team      string `json:"team" validate:"required,max=100"`
}

// createCoachHandler godoc
//
//	@Summary		Create a coach
//	@Tags			coaches
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CoachPayload	true	"Coach details"
//	@Success		201		{object}	store.Coach
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/coaches [post]
func (app *application) createCoachHandler(w http.ResponseWriter, r *http.Request) {
	var payload CoachPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	coach := &store.Coach{
		Name:      payload.Name,
		Email:     payload.Email,
		Specialty: payload.Specialty,
		Team:      payload.Team,
	}

	if err := app.store.Coaches.Create(r.Context(), coach); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, coach); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listCoachesHandler godoc
//
//	@Summary		List coaches
//	@Tags			coaches
//	@Produce		json
//	@Success		200	{array}		store.Coach
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/coaches [get]
func (app *application) listCoachesHandler(w http.ResponseWriter, r *http.Request) {
	coaches, err := app.store.Coaches.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, coaches); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getCoachHandler godoc
//
//	@Summary		Get a coach
//	@Tags			coaches
//	@Produce		json
//	@Param			coachID	path		int	true	"Coach ID"
//	@Success		200		{object}	store.Coach
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/coaches/{coachID} [get]
func (app *application) getCoachHandler(w http.ResponseWriter, r *http.Request) {
	coachID, err := idParam(r, "coachID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	coach, err := app.store.Coaches.GetByID(r.Context(), coachID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, coach); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateCoachHandler godoc
//
//	@Summary		Update a coach
//	@Tags			coaches
//	@Accept			json
//	@Produce		json
//	@Param			coachID	path		int				true	"Coach ID"
//	@Param			payload	body		CoachPayload	true	"Coach details"
//	@Success		200		{object}	store.Coach
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/coaches/{coachID} [put]
func (app *application) updateCoachHandler(w http.ResponseWriter, r *http.Request) {
	coachID, err := idParam(r, "coachID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload CoachPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	coach := &store.Coach{
		ID:        coachID,
		Name:      payload.Name,
		Email:     payload.Email,
		Specialty: payload.Specialty,
		Team:      payload.Team,
	}

	if err := app.store.Coaches.Update(r.Context(), coach); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, coach); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteCoachHandler godoc
//
//	@Summary		Delete a coach
//	@Tags			coaches
//	@Param			coachID	path		int		true	"Coach ID"
//	@Success		204		{string}	string	"No Content"
//	@Failure		404		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/coaches/{coachID} [delete]
func (app *application) deleteCoachHandler(w http.ResponseWriter, r *http.Request) {
	coachID, err := idParam(r, "coachID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Coaches.Delete(r.Context(), coachID); err != nil {
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
