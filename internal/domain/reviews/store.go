package reviews

import (
	"context"

	"viniloteca/internal/apperrors"
	"viniloteca/internal/infra/dbx"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) Store {
	return &Repository{db: q}
}

func (r *Repository) Insert(ctx context.Context, review *Review) error {
	query := `
        INSERT INTO reviews (venue_id, user_id, body, rating)
        VALUES ($1, $2, $3, $4)
        RETURNING id, likes, dislikes, created_at
    `

	ctx, cancel := dbx.WithTimeout(ctx)
	defer cancel()

	err := r.db.QueryRow(ctx, query,
		review.VenueID,
		review.AuthorID,
		review.Body,
		review.Rating,
	).Scan(&review.ID, &review.Likes, &review.Dislikes, &review.CreatedAt)

	return apperrors.Storage("insert review", err)
}

const listNewestFirst = `
        SELECT id, venue_id, user_id, body, rating, likes, dislikes, created_at
        FROM reviews
        WHERE venue_id = $1
        ORDER BY created_at DESC, id DESC
    `

const listOldestFirst = `
        SELECT id, venue_id, user_id, body, rating, likes, dislikes, created_at
        FROM reviews
        WHERE venue_id = $1
        ORDER BY created_at ASC, id ASC
    `

func (r *Repository) ListByVenue(ctx context.Context, venueID int64, ordering Ordering) ([]Review, error) {
	query := listNewestFirst
	if ordering == OldestFirst {
		query = listOldestFirst
	}

	ctx, cancel := dbx.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, query, venueID)
	if err != nil {
		return nil, apperrors.Storage("list reviews", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var review Review
		err := rows.Scan(
			&review.ID,
			&review.VenueID,
			&review.AuthorID,
			&review.Body,
			&review.Rating,
			&review.Likes,
			&review.Dislikes,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Storage("scan review", err)
		}

		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list reviews", err)
	}

	return reviews, nil
}
