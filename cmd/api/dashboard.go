package main

import (
	"errors"
	"net/http"

	"volley/internal/gate"
)

// dashboardHandler godoc
//
//	@Summary		Role-routed dashboard
//	@Description	Every role lands here; the view is resolved from the session's role
//	@Tags			dashboard
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/dashboard [get]
func (app *application) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r)

	view, ok := gate.ResolveDashboard(sess)
	if !ok {
		app.unauthorizedErrorResponse(w, r, errors.New("no dashboard for session"))
		return
	}

	var (
		stats any
		err   error
	)
	switch view {
	case gate.DashboardAdmin:
		stats, err = app.store.Stats.AdminDashboard(r.Context())
	case gate.DashboardCoach:
		stats, err = app.store.Stats.CoachDashboard(r.Context(), sess.Team)
	case gate.DashboardPlayer:
		stats, err = app.store.Stats.PlayerDashboard(r.Context(), sess.UserID)
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := map[string]any{
		"view":  view,
		"role":  sess.Role,
		"stats": stats,
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
