package main

import (
	"context"
	"errors"
	"net/http"

	"volley/internal/notifications"
	"volley/internal/store"
)

type CreateNotificationPayload struct {
	Title      string `json:"title" validate:"required,max=150"`
	Message    string `json:"message" validate:"required,max=2000"`
	TargetRole string `json:"target_role" validate:"required,oneof=all admin coach player"`
}

// createNotificationHandler godoc
//
//	@Summary		Publish a club announcement
//	@Description	Stores the announcement and fans it out to the targeted roles' devices
//	@Tags			Notifications
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateNotificationPayload	true	"Announcement"
//	@Success		201		{object}	store.Notification
//	@Failure		400		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/notifications [post]
func (app *application) createNotificationHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r)
	if sess == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("unauthorized request"))
		return
	}

	var payload CreateNotificationPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	notification := &store.Notification{
		Title:      payload.Title,
		Message:    payload.Message,
		TargetRole: payload.TargetRole,
		CreatedBy:  sess.UserID,
	}

	if err := app.store.Notifications.Create(r.Context(), notification); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	notifications.CallAsync(func(ctx context.Context) error {
		tokens, err := app.store.PushTokens.ListForTarget(ctx, notification.TargetRole)
		if err != nil {
			return err
		}
		return notifications.SendClubNotification(ctx, app.push, tokens, notification.ID, notification.Title, notification.Message)
	}, "SendingClubNotification")

	if err := app.jsonResponse(w, http.StatusCreated, notification); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listNotificationsHandler godoc
//
//	@Summary		List my notifications
//	@Description	Announcements addressed to the caller's role or to everyone, newest first
//	@Tags			Notifications
//	@Produce		json
//	@Success		200	{array}		store.Notification
//	@Failure		500	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/notifications [get]
func (app *application) listNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r)
	if sess == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("unauthorized request"))
		return
	}

	list, err := app.store.Notifications.ListForUser(r.Context(), sess.UserID, sess.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// markNotificationReadHandler godoc
//
//	@Summary		Mark a notification as read
//	@Tags			Notifications
//	@Param			notificationID	path	int	true	"Notification ID"
//	@Success		204
//	@Failure		400	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/notifications/{notificationID}/read [put]
func (app *application) markNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r)
	if sess == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("unauthorized request"))
		return
	}

	notificationID, err := idParam(r, "notificationID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.Notifications.MarkRead(r.Context(), notificationID, sess.UserID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type SavePushTokenPayload struct {
	Token string `json:"token" validate:"required"`
}

// savePushTokenHandler godoc
//
//	@Summary		Save or update a push notification token
//	@Description	Stores the caller's Expo push token so announcements reach their device
//	@Tags			Notifications
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	SavePushTokenPayload	true	"Push token"
//	@Success		204
//	@Failure		400	{object}	error
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/users/push-tokens [post]
func (app *application) savePushTokenHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r)
	if sess == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("unauthorized request"))
		return
	}

	var payload SavePushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.store.PushTokens.Register(r.Context(), sess.UserID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
