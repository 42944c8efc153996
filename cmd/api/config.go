package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"viniloteca/internal/domain/reviews"

	"github.com/google/uuid"
)

// loadConfig reads the service configuration through getenv so tests can
// feed a map instead of the process environment.
func loadConfig(getenv func(string) string) (config, error) {
	var errs []error

	intVar := func(key string, def int) int {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %q", key, raw))
			return def
		}
		return v
	}

	durationVar := func(key string, def time.Duration) time.Duration {
		raw := strings.TrimSpace(getenv(key))
		if raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %q", key, raw))
			return def
		}
		return v
	}

	cfg := config{
		addr:   envOr(getenv, "ADDR", ":3000"),
		env:    envOr(getenv, "ENV", "development"),
		apiURL: strings.TrimRight(envOr(getenv, "EXTERNAL_URL", "http://localhost:3000"), "/"),
		db: dbConfig{
			addr:         getenv("DB_ADDR"),
			maxOpenConns: intVar("DB_MAX_OPEN_CONNS", 30),
			maxIdleTime:  envOr(getenv, "DB_MAX_IDLE_TIME", "15m"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: getenv("AUTH_BASIC_USER"),
				pass: getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret: getenv("AUTH_TOKEN_SECRET"),
				exp:    durationVar("AUTH_TOKEN_EXP", 72*time.Hour),
				iss:    envOr(getenv, "AUTH_TOKEN_ISS", "viniloteca"),
			},
		},
		ratings: reviews.RatingBounds{
			Min: intVar("RATING_MIN", reviews.DefaultRatingBounds.Min),
			Max: intVar("RATING_MAX", reviews.DefaultRatingBounds.Max),
		},
		files: fileConfig{
			backend:       strings.ToLower(envOr(getenv, "FILE_STORAGE", fileBackendLocal)),
			uploadDir:     envOr(getenv, "UPLOAD_DIR", "uploads"),
			cloudinaryURL: getenv("CLOUDINARY_URL"),
		},
	}

	if cfg.db.addr == "" {
		errs = append(errs, errors.New("DB_ADDR is required"))
	}
	if cfg.db.maxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	if _, err := time.ParseDuration(cfg.db.maxIdleTime); err != nil {
		errs = append(errs, fmt.Errorf("invalid DB_MAX_IDLE_TIME: %q", cfg.db.maxIdleTime))
	}
	if err := cfg.ratings.Valid(); err != nil {
		errs = append(errs, err)
	}

	switch cfg.files.backend {
	case fileBackendLocal:
	case fileBackendCloudinary:
		if cfg.files.cloudinaryURL == "" {
			errs = append(errs, errors.New("CLOUDINARY_URL is required when FILE_STORAGE=cloudinary"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown FILE_STORAGE %q", cfg.files.backend))
	}

	if cfg.auth.token.secret == "" {
		if cfg.env == "production" {
			errs = append(errs, errors.New("AUTH_TOKEN_SECRET is required in production"))
		}
		// Tokens issued with a per-process secret stop validating on restart.
		cfg.auth.token.secret = uuid.NewString()
	}

	return cfg, errors.Join(errs...)
}

func envOr(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}
