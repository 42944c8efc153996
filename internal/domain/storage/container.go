package storage

import (
	"viniloteca/internal/domain/reviews"
	"viniloteca/internal/domain/users"
	"viniloteca/internal/domain/venues"
	"viniloteca/internal/infra/dbx"
)

// Container groups the repositories sharing one connection pool.
type Container struct {
	Users   users.Store
	Venues  venues.Store
	Reviews reviews.Store
}

func NewContainer(db dbx.Querier) *Container {
	return &Container{
		Users:   users.NewRepository(db),
		Venues:  venues.NewRepository(db),
		Reviews: reviews.NewRepository(db),
	}
}

// Ledger builds the review ledger over the container's repositories.
func (c *Container) Ledger(bounds reviews.RatingBounds) *reviews.Ledger {
	return reviews.NewLedger(c.Reviews, c.Venues, c.Users, bounds)
}
