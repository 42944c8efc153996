package reviews

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Review is the canonical review record: numeric foreign keys, a server
// assigned timestamp and engagement counters.
type Review struct {
	ID        int64     `json:"id"`
	VenueID   int64     `json:"id_tienda"`
	AuthorID  int64     `json:"id_usuario"`
	Body      string    `json:"texto"`
	Rating    int       `json:"valoracion"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
	CreatedAt time.Time `json:"fecha"`
}

// Ordering selects the sort order of ListByVenue.
type Ordering string

const (
	NewestFirst Ordering = "newest"
	OldestFirst Ordering = "oldest"
)

// ParseOrdering maps a query value onto an Ordering. Empty means NewestFirst.
func ParseOrdering(s string) (Ordering, error) {
	switch Ordering(strings.ToLower(strings.TrimSpace(s))) {
	case "", NewestFirst:
		return NewestFirst, nil
	case OldestFirst:
		return OldestFirst, nil
	default:
		return "", fmt.Errorf("unknown ordering %q", s)
	}
}

// RatingBounds is the inclusive range a rating must fall in.
type RatingBounds struct {
	Min int
	Max int
}

var DefaultRatingBounds = RatingBounds{Min: 1, Max: 5}

func (b RatingBounds) Contains(rating int) bool {
	return rating >= b.Min && rating <= b.Max
}

func (b RatingBounds) Valid() error {
	if b.Min > b.Max {
		return fmt.Errorf("rating bounds min %d greater than max %d", b.Min, b.Max)
	}
	return nil
}

type Store interface {
	// Insert persists r in a single statement and fills ID, counters and CreatedAt.
	Insert(ctx context.Context, r *Review) error
	ListByVenue(ctx context.Context, venueID int64, ordering Ordering) ([]Review, error)
}
