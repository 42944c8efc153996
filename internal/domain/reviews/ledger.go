package reviews

import (
	"context"
	"strings"

	"viniloteca/internal/apperrors"
)

// ReferenceChecker answers whether an id exists. The venue catalog and the
// identity store both satisfy it.
type ReferenceChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Ledger is the append-mostly record of reviews. It validates content and
// references before handing a review to the Store, which performs exactly
// one insert per append.
type Ledger struct {
	store  Store
	venues ReferenceChecker
	users  ReferenceChecker
	bounds RatingBounds
}

func NewLedger(store Store, venues, users ReferenceChecker, bounds RatingBounds) *Ledger {
	return &Ledger{
		store:  store,
		venues: venues,
		users:  users,
		bounds: bounds,
	}
}

// Bounds returns the rating range enforced by Append.
func (l *Ledger) Bounds() RatingBounds {
	return l.bounds
}

// Append validates and persists a new review.
//
// Errors wrap apperrors.ErrInvalidContent for an empty body or a rating
// outside the bounds, apperrors.ErrInvalidReference when the venue or author
// does not exist, and apperrors.ErrStorageFailure for anything the database
// rejected. Nothing is written when an error is returned.
func (l *Ledger) Append(ctx context.Context, venueID, authorID int64, body string, rating int) (*Review, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.InvalidContent("review text must not be empty")
	}
	if !l.bounds.Contains(rating) {
		return nil, apperrors.InvalidContent("rating must be between %d and %d", l.bounds.Min, l.bounds.Max)
	}
	if venueID <= 0 {
		return nil, apperrors.InvalidReference("store id %d is not valid", venueID)
	}
	if authorID <= 0 {
		return nil, apperrors.InvalidReference("user id %d is not valid", authorID)
	}

	ok, err := l.venues.Exists(ctx, venueID)
	if err != nil {
		return nil, apperrors.Storage("append review", err)
	}
	if !ok {
		return nil, apperrors.InvalidReference("store %d does not exist", venueID)
	}

	ok, err = l.users.Exists(ctx, authorID)
	if err != nil {
		return nil, apperrors.Storage("append review", err)
	}
	if !ok {
		return nil, apperrors.InvalidReference("user %d does not exist", authorID)
	}

	review := &Review{
		VenueID:  venueID,
		AuthorID: authorID,
		Body:     body,
		Rating:   rating,
	}
	// A venue or user removed after the checks above still fails here,
	// through the foreign keys, as an invalid reference.
	if err := l.store.Insert(ctx, review); err != nil {
		return nil, apperrors.Storage("append review", err)
	}

	return review, nil
}

// ListByVenue returns every review of a venue in the requested order. A venue
// without reviews, or one missing from the catalog, yields an empty slice.
func (l *Ledger) ListByVenue(ctx context.Context, venueID int64, ordering Ordering) ([]Review, error) {
	if venueID <= 0 {
		return nil, apperrors.InvalidReference("store id %d is not valid", venueID)
	}
	if ordering == "" {
		ordering = NewestFirst
	}

	list, err := l.store.ListByVenue(ctx, venueID, ordering)
	if err != nil {
		return nil, apperrors.Storage("list reviews", err)
	}
	if list == nil {
		list = []Review{}
	}
	return list, nil
}
