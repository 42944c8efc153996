package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"viniloteca/internal/filestore"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// Report the JSON field name the client sent, not the Go field name.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Tokens name profile pictures, so they must be safe as a bare file name.
	_ = Validate.RegisterValidation("filetoken", func(fl validator.FieldLevel) bool {
		return filestore.ValidToken(fl.Field().String())
	})
}

// envelope is the shape of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// readJSON parses body into a Go struct, rejecting unknown fields and
// trailing data.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_576 // 1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(data); err != nil {
		return decodeError(err)
	}
	if decoder.More() {
		return errors.New("malformed JSON body: unexpected data after the JSON object")
	}
	return nil
}

// decodeError rewrites encoding/json errors into client-facing messages that
// name JSON fields instead of Go types.
func decodeError(err error) error {
	var (
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("malformed JSON body: badly-formed JSON at character %d", syntaxErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errors.New("malformed JSON body: badly-formed JSON")
	case errors.As(err, &typeErr):
		if typeErr.Field != "" {
			return fmt.Errorf("%s has the wrong type", typeErr.Field)
		}
		return errors.New("malformed JSON body: wrong type")
	case errors.Is(err, io.EOF):
		return errors.New("malformed JSON body: body must not be empty")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return fmt.Errorf("malformed JSON body: unknown field %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("malformed JSON body: must not be larger than %d bytes", maxBytesErr.Limit)
	default:
		return errors.New("malformed JSON body")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, &envelope{
		Success: false,
		Message: message,
	})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, message string, data any) error {
	return writeJSON(w, status, &envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// validationMessage turns validator errors into "field is required" style text.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "filetoken":
			msgs = append(msgs, fmt.Sprintf("%s may only contain letters, digits, '-', '_' and '.', and must not start with '.'", fe.Field()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, "; ")
}
