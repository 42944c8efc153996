package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"viniloteca/internal/apperrors"
	"viniloteca/internal/domain/reviews"
)

type addReviewPayload struct {
	VenueID *int64  `json:"id_tienda" validate:"required"`
	UserID  *int64  `json:"id_usuario" validate:"required"`
	Text    *string `json:"text" validate:"required,max=2000"`
	Rating  *int    `json:"rating" validate:"required"`
}

// addReviewHandler godoc
//
//	@Summary		Add a review
//	@Description	Stores a review of a record store written by an existing user
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		addReviewPayload	true	"Review"
//	@Success		201		{object}	envelope{data=reviews.Review}
//	@Failure		400		{object}	envelope	"Missing field, unknown store or user, empty text or rating out of range"
//	@Failure		500		{object}	envelope
//	@Router			/add_review [post]
func (app *application) addReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload addReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.metrics.RecordReviewRejected("malformed")
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.metrics.RecordReviewRejected("malformed")
		app.badRequestResponse(w, r, errors.New(validationMessage(err)))
		return
	}

	ctx := r.Context()

	review, err := app.ledger.Append(ctx, *payload.VenueID, *payload.UserID, *payload.Text, *payload.Rating)
	if err != nil {
		app.metrics.RecordReviewRejected(rejectionReason(err))
		app.errorResponse(w, r, err)
		return
	}
	app.metrics.RecordReviewAppended()

	// Counted separately from the append; the review stays stored either way.
	if err := app.store.Users.IncrementContributions(ctx, review.AuthorID); err != nil {
		app.logger.Warnw("could not update contribution counter",
			"user_id", review.AuthorID, "review_id", review.ID, "error", err.Error())
	}

	if err := app.jsonResponse(w, http.StatusCreated, "review saved", review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listReviewsHandler godoc
//
//	@Summary		List reviews of a store
//	@Description	Returns every review of a store, newest first unless orden=oldest
//	@Tags			reviews
//	@Produce		json
//	@Param			id_tienda	query		int		true	"Store ID"
//	@Param			orden		query		string	false	"newest (default) or oldest"
//	@Success		200			{object}	envelope{data=[]reviews.Review}
//	@Failure		400			{object}	envelope
//	@Failure		500			{object}	envelope
//	@Router			/reviews [get]
func (app *application) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	raw := strings.TrimSpace(q.Get("id_tienda"))
	if raw == "" {
		app.badRequestResponse(w, r, errors.New("id_tienda is required"))
		return
	}

	venueID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || venueID <= 0 {
		app.badRequestResponse(w, r, errors.New("id_tienda must be a positive integer"))
		return
	}

	ordering, err := reviews.ParseOrdering(q.Get("orden"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	list, err := app.ledger.ListByVenue(r.Context(), venueID, ordering)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, "", list); err != nil {
		app.internalServerError(w, r, err)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidContent):
		return "invalid_content"
	case errors.Is(err, apperrors.ErrInvalidReference):
		return "invalid_reference"
	default:
		return "storage_failure"
	}
}
