package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"volley/internal/store"
)

type TrainingPayload struct {
	Title    string    `json:"title" validate:"required,max=150"`
	StartsAt time.Time `json:"starts_at" validate:"required"`
	Duration int       `json:"duration_minutes" validate:"required,gte=15,lte=480"`
	Location string    `json:"location" validate:"required,max=150"`
	Team     string    `json:"team" validate:"required,max=100"`
	CoachID  *int64    `json:"coach_id,omitempty"`
	Notes    string    `json:"notes" validate:"max=2000"`
}

// createTrainingHandler godoc
//
//	@Summary		Schedule a training
//	@Tags			trainings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		TrainingPayload	true	"Training details"
//	@Success		201		{object}	store.Training
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trainings [post]
func (app *application) createTrainingHandler(w http.ResponseWriter, r *http.Request) {
	var payload TrainingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	training := &store.Training{
		Title:    payload.Title,
		StartsAt: payload.StartsAt,
		Duration: payload.Duration,
		Location: payload.Location,
		Team:     payload.Team,
		CoachID:  payload.CoachID,
		Notes:    payload.Notes,
	}

	if err := app.store.Trainings.Create(r.Context(), training); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, training); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listTrainingsHandler godoc
//
//	@Summary		List trainings
//	@Tags			trainings
//	@Produce		json
//	@Param			team		query		string	false	"Team"
//	@Param			upcoming	query		bool	false	"Only future sessions"
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Offset"
//	@Success		200			{array}		store.Training
//	@Failure		500			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trainings [get]
func (app *application) listTrainingsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	upcoming, _ := strconv.ParseBool(q.Get("upcoming"))

	trainings, err := app.store.Trainings.List(r.Context(), store.TrainingFilters{
		Team:     q.Get("team"),
		Upcoming: upcoming,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, trainings); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getTrainingHandler godoc
//
//	@Summary		Get a training with its attendance sheet
//	@Tags			trainings
//	@Produce		json
//	@Param			trainingID	path		int	true	"Training ID"
//	@Success		200			{object}	map[string]any
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trainings/{trainingID} [get]
func (app *application) getTrainingHandler(w http.ResponseWriter, r *http.Request) {
	trainingID, err := idParam(r, "trainingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	training, err := app.store.Trainings.GetByID(r.Context(), trainingID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	attendance, err := app.store.Trainings.ListAttendance(r.Context(), trainingID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := map[string]any{
		"training":   training,
		"attendance": attendance,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// updateTrainingHandler godoc
//
//	@Summary		Update a training
//	@Tags			trainings
//	@Accept			json
//	@Produce		json
//	@Param			trainingID	path		int				true	"Training ID"
//	@Param			payload		body		TrainingPayload	true	"Training details"
//	@Success		200			{object}	store.Training
//	@Failure		400			{object}	error
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trainings/{trainingID} [put]
func (app *application) updateTrainingHandler(w http.ResponseWriter, r *http.Request) {
	trainingID, err := idParam(r, "trainingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload TrainingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	training := &store.Training{
		ID:       trainingID,
		Title:    payload.Title,
		StartsAt: payload.StartsAt,
		Duration: payload.Duration,
		Location: payload.Location,
		Team:     payload.Team,
		CoachID:  payload.CoachID,
		Notes:    payload.Notes,
	}

	if err := app.store.Trainings.Update(r.Context(), training); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, training); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteTrainingHandler godoc
//
//	@Summary		Cancel a training
//	@Tags			trainings
//	@Param			trainingID	path		int		true	"Training ID"
//	@Success		204			{string}	string	"No Content"
//	@Failure		404			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trainings/{trainingID} [delete]
func (app *application) deleteTrainingHandler(w http.ResponseWriter, r *http.Request) {
	trainingID, err := idParam(r, "trainingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Trainings.Delete(r.Context(), trainingID); err != nil {
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

type AttendancePayload struct {
	PlayerID int64 `json:"player_id" validate:"required,gt=0"`
	Present  bool  `json:"present"`
}

// markAttendanceHandler godoc
//
//	@Summary		Mark a player's attendance for a training
//	@Tags			trainings
//	@Accept			json
//	@Produce		json
//	@Param			trainingID	path		int					true	"Training ID"
//	@Param			payload		body		AttendancePayload	true	"Attendance"
//	@Success		200			{object}	map[string]string
//	@Failure		400			{object}	error
//	@Security		ApiKeyAuth
//	@Router			/trainings/{trainingID}/attendance [post]
func (app *application) markAttendanceHandler(w http.ResponseWriter, r *http.Request) {
	trainingID, err := idParam(r, "trainingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload AttendancePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Trainings.SetAttendance(r.Context(), trainingID, payload.PlayerID, payload.Present); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "attendance recorded"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
