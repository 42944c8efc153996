package users

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultDescription is shown for users who never wrote one.
const DefaultDescription = "¡Hola! Aún no he escrito una descripción."

// PasswordCost is the bcrypt work factor used for new credentials.
const PasswordCost = 10

type User struct {
	ID            int64     `json:"id_usuario"`
	Token         string    `json:"token"`
	Name          string    `json:"nombre"`
	Email         string    `json:"-"`
	Password      password  `json:"-"`
	Description   *string   `json:"descripcion,omitempty"`
	PhotoURL      *string   `json:"ruta_foto,omitempty"`
	Contributions int       `json:"aportaciones"`
	JoinedAt      time.Time `json:"fecha_union"`
}

// DescriptionOrDefault returns the stored description or the placeholder.
func (u *User) DescriptionOrDefault() string {
	if u.Description == nil || *u.Description == "" {
		return DefaultDescription
	}
	return *u.Description
}

// password keeps the plaintext only for the lifetime of a registration request.
type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), PasswordCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

// Hash exposes the stored digest.
func (p *password) Hash() []byte {
	return p.hash
}

// SetHash loads a digest read from storage.
func (p *password) SetHash(hash []byte) {
	p.hash = hash
	p.text = nil
}

type Store interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	UpdateDescription(ctx context.Context, id int64, description string) error
	SetPhoto(ctx context.Context, id int64, url string) error
	IncrementContributions(ctx context.Context, id int64) error
}
