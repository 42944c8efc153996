package main

import (
	"errors"
	"net/http"
	"strconv"

	"viniloteca/internal/domain/venues"

	"github.com/go-chi/chi/v5"
)

// listStoresHandler godoc
//
//	@Summary		Lists record stores
//	@Tags			stores
//	@Produce		json
//	@Success		200	{object}	envelope{data=[]venues.Venue}
//	@Failure		500	{object}	envelope
//	@Router			/stores [get]
func (app *application) listStoresHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Venues.List(r.Context())
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}
	if list == nil {
		list = []venues.Venue{}
	}

	if err := app.jsonResponse(w, http.StatusOK, "", list); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getStoreHandler godoc
//
//	@Summary		Fetches a record store
//	@Tags			stores
//	@Produce		json
//	@Param			storeID	path		int	true	"Store ID"
//	@Success		200		{object}	envelope{data=venues.Venue}
//	@Failure		400		{object}	envelope
//	@Failure		404		{object}	envelope
//	@Failure		500		{object}	envelope
//	@Router			/stores/{storeID} [get]
func (app *application) getStoreHandler(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil || storeID <= 0 {
		app.badRequestResponse(w, r, errors.New("store id must be a positive integer"))
		return
	}

	venue, err := app.store.Venues.GetByID(r.Context(), storeID)
	if err != nil {
		app.errorResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, "", venue); err != nil {
		app.internalServerError(w, r, err)
	}
}
