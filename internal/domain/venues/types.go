package venues

import (
	"context"
	"time"
)

// Venue is a record store. The catalog is maintained outside this API.
type Venue struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nombre"`
	Tags        []string  `json:"etiquetas"`
	ImageURL    *string   `json:"imagen,omitempty"`
	Description *string   `json:"descripcion,omitempty"`
	Location    *string   `json:"ubicacion,omitempty"`
	CreatedAt   time.Time `json:"-"`
}

type Store interface {
	Exists(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*Venue, error)
	List(ctx context.Context) ([]Venue, error)
}
