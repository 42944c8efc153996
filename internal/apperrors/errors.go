package apperrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrInvalidReference is returned when a venue or user id does not resolve.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrInvalidContent is returned for empty or out-of-range fields.
	ErrInvalidContent = errors.New("invalid content")

	// ErrDuplicateEntity is returned when a unique constraint is violated.
	ErrDuplicateEntity = errors.New("resource already exists")

	// ErrNotFound is returned when a lookup misses and the absence matters.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned when credentials do not match.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrStorageFailure wraps any error coming from the database.
	ErrStorageFailure = errors.New("storage failure")
)

// Postgres SQLSTATE codes we translate into the taxonomy.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// InvalidReference builds an ErrInvalidReference with a human readable reason.
func InvalidReference(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidReference, fmt.Sprintf(format, args...))
}

// InvalidContent builds an ErrInvalidContent with a human readable reason.
func InvalidContent(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidContent, fmt.Sprintf(format, args...))
}

// Storage classifies an error returned by pgx for the operation op.
// Constraint violations are mapped onto the domain errors; everything else,
// including cancelled contexts and dropped connections, becomes ErrStorageFailure.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}

	if IsClientError(err) || errors.Is(err, ErrStorageFailure) {
		return fmt.Errorf("%s: %w", op, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrInvalidReference, pgErr.ConstraintName)
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrDuplicateEntity, pgErr.ConstraintName)
		case pgCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, ErrInvalidContent, pgErr.ConstraintName)
		}
	}

	return fmt.Errorf("%s: %w: %v", op, ErrStorageFailure, err)
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrInvalidContent) ||
		errors.Is(err, ErrDuplicateEntity) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized)
}

// Public returns the part of a client error's message that starts at the
// taxonomy sentinel, dropping the internal operation prefixes.
func Public(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrInvalidReference, ErrInvalidContent, ErrDuplicateEntity, ErrNotFound, ErrUnauthorized} {
		if !errors.Is(err, sentinel) {
			continue
		}
		if i := strings.Index(msg, sentinel.Error()); i >= 0 {
			return msg[i:]
		}
	}
	return msg
}
