package main

import (
	"errors"
	"net/http"

	"viniloteca/internal/apperrors"
	"viniloteca/internal/domain/users"
)

type RegisterUserPayload struct {
	Token    string `json:"token" validate:"required,max=255,filetoken"`
	Name     string `json:"nombre" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=3,max=72"`
}

// registerUserHandler godoc
//
//	@Summary		Registers a user
//	@Description	Creates an account. The token is generated by the app and identifies the user from then on.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		RegisterUserPayload	true	"User credentials"
//	@Success		201		{object}	envelope			"User registered"
//	@Failure		400		{object}	envelope			"Bad request"
//	@Failure		409		{object}	envelope			"Email or token already taken"
//	@Failure		500		{object}	envelope			"Internal Server Error"
//	@Router			/register [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, errors.New(validationMessage(err)))
		return
	}

	user := &users.User{
		Token: payload.Token,
		Name:  payload.Name,
		Email: payload.Email,
	}
	// hash the user password.
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	app.logger.Infow("user registered", "user_id", user.ID)

	if err := app.jsonResponse(w, http.StatusCreated, "user registered", nil); err != nil {
		app.internalServerError(w, r, err)
	}
}

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=3,max=72"`
}

type LoginResponse struct {
	ID          int64  `json:"id_usuario"`
	Name        string `json:"nombre"`
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// loginHandler godoc
//
//	@Summary		Logs a user in
//	@Description	Checks email and password and returns the user's token plus a bearer access token for /me
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		LoginPayload	true	"User credentials"
//	@Success		200		{object}	envelope{data=LoginResponse}
//	@Failure		400		{object}	envelope
//	@Failure		401		{object}	envelope
//	@Failure		500		{object}	envelope
//	@Router			/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, errors.New(validationMessage(err)))
		return
	}

	user, err := app.store.Users.GetByEmail(r.Context(), payload.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			app.unauthorizedErrorResponse(w, r, apperrors.ErrUnauthorized)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := user.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, apperrors.ErrUnauthorized)
		return
	}

	accessToken, err := app.authenticator.GenerateToken(user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := LoginResponse{
		ID:          user.ID,
		Name:        user.Name,
		Token:       user.Token,
		AccessToken: accessToken,
	}
	if err := app.jsonResponse(w, http.StatusOK, "", resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
