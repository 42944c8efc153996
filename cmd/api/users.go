package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"viniloteca/internal/domain/users"
	"viniloteca/internal/filestore"
)

const (
	maxPictureSize = 5 << 20 // 5MB
	dateLayout     = "02/01/2006"
)

type ProfileResponse struct {
	Token         string  `json:"token"`
	Name          string  `json:"nombre"`
	Contributions int     `json:"aportaciones"`
	Description   string  `json:"descripcion"`
	JoinedAt      string  `json:"fecha_union"`
	PhotoURL      *string `json:"ruta_foto"`
}

func profileOf(u *users.User) ProfileResponse {
	return ProfileResponse{
		Token:         u.Token,
		Name:          u.Name,
		Contributions: u.Contributions,
		Description:   u.DescriptionOrDefault(),
		JoinedAt:      u.JoinedAt.Format(dateLayout),
		PhotoURL:      u.PhotoURL,
	}
}

// getProfileHandler godoc
//
//	@Summary		Fetches a user profile
//	@Tags			users
//	@Produce		json
//	@Param			id	query		int	true	"User ID"
//	@Success		200	{object}	envelope{data=ProfileResponse}
//	@Failure		400	{object}	envelope
//	@Failure		404	{object}	envelope
//	@Failure		500	{object}	envelope
//	@Router			/profile [get]
func (app *application) getProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
	if err != nil || userID <= 0 {
		app.badRequestResponse(w, r, errors.New("id must be a positive integer"))
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, "", profileOf(user)); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getMeHandler godoc
//
//	@Summary		Fetches the authenticated user's profile
//	@Tags			users
//	@Produce		json
//	@Success		200	{object}	envelope{data=ProfileResponse}
//	@Failure		401	{object}	envelope
//	@Security		ApiKeyAuth
//	@Router			/me [get]
func (app *application) getMeHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	if user == nil {
		app.unauthorizedErrorResponse(w, r, errors.New("no user in request context"))
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, "", profileOf(user)); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateDescriptionPayload struct {
	UserID      *int64  `json:"id_usuario" validate:"required"`
	Description *string `json:"descripcion" validate:"required,max=500"`
}

// updateDescriptionHandler godoc
//
//	@Summary		Updates a user's description
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		UpdateDescriptionPayload	true	"New description"
//	@Success		200		{object}	envelope
//	@Failure		400		{object}	envelope
//	@Failure		404		{object}	envelope
//	@Failure		500		{object}	envelope
//	@Router			/update_description [post]
func (app *application) updateDescriptionHandler(w http.ResponseWriter, r *http.Request) {
	var payload UpdateDescriptionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, errors.New(validationMessage(err)))
		return
	}

	description := strings.TrimSpace(*payload.Description)
	if err := app.store.Users.UpdateDescription(r.Context(), *payload.UserID, description); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, "description updated", nil); err != nil {
		app.internalServerError(w, r, err)
	}
}

type PictureResponse struct {
	URL string `json:"url"`
}

// uploadProfilePictureHandler godoc
//
//	@Summary		Uploads a profile picture
//	@Description	Stores the image as <token><ext>, replacing the previous picture of the user
//	@Tags			users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image		formData	file	true	"jpg, jpeg, png or webp, up to 5MB"
//	@Param			id_usuario	formData	int		true	"User ID"
//	@Param			token		formData	string	true	"User token"
//	@Success		200			{object}	envelope{data=PictureResponse}
//	@Failure		400			{object}	envelope
//	@Failure		401			{object}	envelope
//	@Failure		404			{object}	envelope
//	@Failure		500			{object}	envelope
//	@Router			/upload_profile_picture [post]
func (app *application) uploadProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPictureSize+1<<20)
	if err := r.ParseMultipartForm(maxPictureSize); err != nil {
		app.badRequestResponse(w, r, errors.New("image must be a multipart upload of at most 5MB"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("id_usuario")), 10, 64)
	if err != nil || userID <= 0 {
		app.badRequestResponse(w, r, errors.New("id_usuario must be a positive integer"))
		return
	}
	token := strings.TrimSpace(r.FormValue("token"))
	if token == "" {
		app.badRequestResponse(w, r, errors.New("token is required"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		app.badRequestResponse(w, r, errors.New("image is required"))
		return
	}
	defer file.Close()

	if header.Size > maxPictureSize {
		app.badRequestResponse(w, r, errors.New("image must be at most 5MB"))
		return
	}

	ctx := r.Context()

	user, err := app.store.Users.GetByID(ctx, userID)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if user.Token != token {
		app.unauthorizedErrorResponse(w, r, errors.New("token does not belong to user"))
		return
	}

	name, err := filestore.ImageName(user.Token, header.Filename)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	url, err := app.files.Save(ctx, name, file)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.SetPhoto(ctx, user.ID, url); err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, "", PictureResponse{URL: url}); err != nil {
		app.internalServerError(w, r, err)
	}
}
