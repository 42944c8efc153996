package main

import "net/http"

type HealthResponse struct {
	Status  string `json:"status"`
	Env     string `json:"env"`
	Version string `json:"version"`
}

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	envelope{data=HealthResponse}
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := HealthResponse{
		Status:  "ok",
		Env:     app.config.env,
		Version: version,
	}

	if err := app.jsonResponse(w, http.StatusOK, "", data); err != nil {
		app.internalServerError(w, r, err)
	}
}
