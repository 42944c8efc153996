package venues

import (
	"context"

	"viniloteca/internal/apperrors"
	"viniloteca/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) Store {
	return &Repository{db: q}
}

// Exists reports whether a venue with the given id is in the catalog.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := dbx.WithTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM venues WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperrors.Storage("check venue", err)
	}
	return exists, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Venue, error) {
	query := `
		SELECT id, name, tags, image_url, description, location, created_at
		FROM venues
		WHERE id = $1
	`

	ctx, cancel := dbx.WithTimeout(ctx)
	defer cancel()

	v, err := scanVenue(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, apperrors.Storage("get venue", err)
	}
	return v, nil
}

func (r *Repository) List(ctx context.Context) ([]Venue, error) {
	query := `
		SELECT id, name, tags, image_url, description, location, created_at
		FROM venues
		ORDER BY id
	`

	ctx, cancel := dbx.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperrors.Storage("list venues", err)
	}
	defer rows.Close()

	venues := []Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, apperrors.Storage("list venues", err)
		}
		venues = append(venues, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list venues", err)
	}

	return venues, nil
}

func scanVenue(row pgx.Row) (*Venue, error) {
	var v Venue
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Tags,
		&v.ImageURL,
		&v.Description,
		&v.Location,
		&v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if v.Tags == nil {
		v.Tags = []string{}
	}
	return &v, nil
}
