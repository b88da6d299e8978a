package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"volley/internal/mailer"
	"volley/internal/session"
	"volley/internal/store"
)

// localAuthClient is the in-process authentication collaborator: it checks
// credentials against our own users table and mints our own tokens. It
// satisfies session.AuthClient so the session store works identically
// whether auth is local or delegated to an upstream provider.
type localAuthClient struct {
	app *application
}

func (c *localAuthClient) Login(ctx context.Context, email, password string) (map[string]any, error) {
	user, err := c.app.store.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &session.LoginError{Message: "invalid email or password"}
		}
		return nil, err
	}

	if err := user.Password.Compare(password); err != nil {
		return nil, &session.LoginError{Message: "invalid email or password"}
	}

	accessToken, refreshToken, err := c.app.authenticator.GenerateTokens(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	if err := c.app.store.Users.SaveRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	return map[string]any{
		"data": map[string]any{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"user":          userRecord(user),
		},
	}, nil
}

func (c *localAuthClient) Logout(ctx context.Context, token string) error {
	userID, _, err := c.app.subjectOf(token)
	if err != nil {
		return err
	}
	return c.app.store.Users.DeleteRefreshToken(ctx, userID)
}

func (c *localAuthClient) CurrentUser(ctx context.Context, token string) (map[string]any, error) {
	userID, _, err := c.app.subjectOf(token)
	if err != nil {
		return nil, err
	}
	user, err := c.app.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"user": userRecord(user)}, nil
}

func userRecord(u *store.User) map[string]any {
	rec := map[string]any{
		"id":   u.ID,
		"name": u.Name,
		"role": string(u.Role),
	}
	if u.Team != "" {
		rec["team"] = u.Team
	}
	return rec
}

// subjectOf validates an access token and returns its subject and role.
func (app *application) subjectOf(token string) (int64, string, error) {
	jwtToken, err := app.authenticator.ValidateAccessToken(token)
	if err != nil {
		return 0, "", err
	}
	claims, ok := jwtToken.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", fmt.Errorf("invalid claims")
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("invalid sub claim")
	}
	role, _ := claims["role"].(string)
	return int64(sub), role, nil
}

type RegisterUserPayload struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=3,max=72"`
	Team     string `json:"team" validate:"max=100"`
}

// UserWithToken carries the freshly created user plus its activation token.
type UserWithToken struct {
	*store.User `json:"user"`
	Token       string `json:"token"`
}

// registerUserHandler godoc
//
//	@Summary		Registers a player account
//	@Description	Creates an inactive player account and emails an activation link
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RegisterUserPayload	true	"User details"
//	@Success		201		{object}	UserWithToken		"User registered"
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Router			/register [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user := &store.User{
		Name:  payload.Name,
		Email: payload.Email,
		Role:  session.RolePlayer,
		Team:  payload.Team,
	}
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	ctx := r.Context()

	plainToken := uuid.New().String()
	hash := sha256.Sum256([]byte(plainToken))
	hashToken := hex.EncodeToString(hash[:])

	if err := app.store.Users.CreateAndInvite(ctx, user, hashToken, app.config.mail.exp); err != nil {
		switch err {
		case store.ErrDuplicateEmail:
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	activationURL := fmt.Sprintf("%s/confirm?token=%s", app.config.frontendURL, plainToken)

	vars := struct {
		Username      string
		ActivationURL string
	}{
		Username:      user.Name,
		ActivationURL: activationURL,
	}

	status, err := app.mailer.Send(mailer.UserWelcomeTemplate, user.Name, user.Email, vars)
	if err != nil {
		app.logger.Errorw("error sending welcome email", "error", err)

		// rollback user creation if email fails (SAGA pattern)
		if err := app.store.Users.Delete(ctx, user.ID); err != nil {
			app.logger.Errorw("error deleting user", "error", err)
		}

		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("activation email sent", "status code", status)

	if err := app.jsonResponse(w, http.StatusCreated, UserWithToken{User: user, Token: plainToken}); err != nil {
		app.internalServerError(w, r, err)
	}
}

// activateUserHandler godoc
//
//	@Summary		Activates a registered account
//	@Tags			authentication
//	@Produce		json
//	@Param			token	path		string	true	"Activation token"
//	@Success		204		{string}	string	"No Content"
//	@Failure		404		{object}	error
//	@Failure		500		{object}	error
//	@Router			/activate/{token} [put]
func (app *application) activateUserHandler(w http.ResponseWriter, r *http.Request) {
	plainToken := chi.URLParam(r, "token")

	hash := sha256.Sum256([]byte(plainToken))
	hashToken := hex.EncodeToString(hash[:])

	if err := app.store.Users.Activate(r.Context(), hashToken); err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=3,max=72"`
}

// TokenResponse is the canonical login response shape. Clients that grew up
// against older deployments may still look for "token" or a top-level
// "user"; this service emits exactly one shape.
type TokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	User         *session.User `json:"user"`
}

// loginHandler godoc
//
//	@Summary		Login with email and password
//	@Description	Authenticates locally or against the configured upstream provider and returns tokens plus the user record
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LoginPayload	true	"Credentials"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Router			/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	body, err := app.authClient.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		var le *session.LoginError
		if errors.As(err, &le) {
			writeJSONError(w, http.StatusUnauthorized, le.Message)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	token := session.ExtractToken(body)
	user, uerr := session.ExtractUser(body)
	if token == "" || uerr != nil {
		app.internalServerError(w, r, fmt.Errorf("malformed authentication response"))
		return
	}

	resp := TokenResponse{
		AccessToken:  token,
		RefreshToken: extractRefreshToken(body),
		User:         user,
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func extractRefreshToken(body map[string]any) string {
	if tok, ok := body["refresh_token"].(string); ok {
		return tok
	}
	if data, ok := body["data"].(map[string]any); ok {
		if tok, ok := data["refresh_token"].(string); ok {
			return tok
		}
	}
	return ""
}

// webLoginHandler godoc
//
//	@Summary		Login for browser clients
//	@Description	Same credential check as /login but persists the session in HttpOnly cookies and returns only a minimal body
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LoginPayload		true	"Credentials"
//	@Success		200		{object}	map[string]string	"user_id and role"
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Router			/login/web [post]
func (app *application) webLoginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sessions := session.NewStore(app.authClient, app.newRequestStorage(w, r), app.logger)
	if err := sessions.Login(r.Context(), payload.Email, payload.Password); err != nil {
		var le *session.LoginError
		if errors.As(err, &le) {
			writeJSONError(w, http.StatusUnauthorized, le.Message)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	sess := sessions.Session()
	resp := map[string]string{
		"user_id": fmt.Sprintf("%d", sess.UserID),
		"role":    string(sess.Role),
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// logoutHandler godoc
//
//	@Summary		Logout
//	@Description	Revokes the refresh token best-effort and clears session cookies; always succeeds locally
//	@Tags			authentication
//	@Success		204	{string}	string	"No Content"
//	@Security		ApiKeyAuth
//	@Router			/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	sessions := getSessionStore(r)
	sessions.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// meHandler godoc
//
//	@Summary		Current user
//	@Produce		json
//	@Success		200	{object}	store.User
//	@Failure		401	{object}	error
//	@Security		ApiKeyAuth
//	@Router			/me [get]
func (app *application) meHandler(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r)

	user, err := app.store.Users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

type RefreshPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// refreshTokenHandler godoc
//
//	@Summary		Refresh authentication tokens
//	@Description	Validates the provided refresh token and issues new access and refresh tokens.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RefreshPayload	true	"Refresh token payload"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Failure		500		{object}	error
//	@Router			/refresh [post]
func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload RefreshPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil || !token.Valid {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid refresh token"))
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid claims"))
		return
	}

	subClaim, ok := claims["sub"].(float64)
	if !ok {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid sub claim"))
		return
	}
	userID := int64(subClaim)

	savedToken, err := app.store.Users.GetRefreshToken(r.Context(), userID)
	if err != nil || savedToken != payload.RefreshToken {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("refresh token mismatch"))
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	accessToken, newRefreshToken, err := app.authenticator.GenerateTokens(userID, string(user.Role))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SaveRefreshToken(r.Context(), userID, newRefreshToken); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         user.SessionUser(),
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=3,max=72"`
}

// changePasswordHandler godoc
//
//	@Summary		Change password
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ChangePasswordPayload	true	"Passwords"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Security		ApiKeyAuth
//	@Router			/change-password [put]
func (app *application) changePasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload ChangePasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	sess := getSession(r)

	user, err := app.store.Users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := user.Password.Compare(payload.CurrentPassword); err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	if err := user.Password.Set(payload.NewPassword); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Update(r.Context(), user); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
