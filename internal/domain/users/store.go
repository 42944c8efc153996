package users

import (
	"context"
	"fmt"
	"strings"

	"viniloteca/internal/apperrors"
	"viniloteca/internal/infra/dbx"
)

type Repository struct {
	db dbx.Querier
}

func NewRepository(q dbx.Querier) Store {
	return &Repository{db: q}
}

// Create inserts a new user. A taken email or token yields ErrDuplicateEntity.
func (r *Repository) Create(ctx context.Context, user *User) error {
	query := `
	  INSERT INTO users (token, nombre, email, password_hash)
	  VALUES ($1, $2, $3, $4)
	  RETURNING id, aportaciones, fecha_union
	`

	ctx, cancel := dbx.WithTimeout(ctx)
	defer cancel()

	user.Email = NormalizeEmail(user.Email)

	err := r.db.QueryRow(
		ctx, query, user.Token, user.Name, user.Email, user.Password.Hash(),
	).Scan(&user.ID, &user.Contributions, &user.JoinedAt)

	return apperrors.Storage("create user", err)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, token, nombre, email, password_hash, descripcion, ruta_foto,
		       aportaciones, fecha_union
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, "get user by id", query, id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, token, nombre, email, password_hash, descripcion, ruta_foto,
		       aportaciones, fecha_union
		FROM users
		WHERE email = $1
	`
	return r.getOne(ctx, "get user by email", query, NormalizeEmail(email))
}

func (r *Repository) getOne(ctx context.Context, op, query string, arg any) (*User, error) {
	ctx, cancel := dbx.WithTimeout(ctx)
	defer cancel()

	var (
		user User
		hash []byte
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Token,
		&user.Name,
		&user.Email,
		&hash,
		&user.Description,
		&user.PhotoURL,
		&user.Contributions,
		&user.JoinedAt,
	)
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	user.Password.SetHash(hash)

	return &user, nil
}

func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := dbx.WithTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperrors.Storage("check user", err)
	}
	return exists, nil
}

func (r *Repository) UpdateDescription(ctx context.Context, id int64, description string) error {
	return r.execOne(ctx, "update description",
		`UPDATE users SET descripcion = $1 WHERE id = $2`, description, id)
}

func (r *Repository) SetPhoto(ctx context.Context, id int64, url string) error {
	return r.execOne(ctx, "set photo",
		`UPDATE users SET ruta_foto = $1 WHERE id = $2`, url, id)
}

// IncrementContributions bumps the contribution counter by one. It is never
// called implicitly by the review ledger.
func (r *Repository) IncrementContributions(ctx context.Context, id int64) error {
	return r.execOne(ctx, "increment contributions",
		`UPDATE users SET aportaciones = aportaciones + 1 WHERE id = $1`, id)
}

// execOne runs an update that must touch exactly one user row.
func (r *Repository) execOne(ctx context.Context, op, query string, args ...any) error {
	ctx, cancel := dbx.WithTimeout(ctx)
	defer cancel()

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperrors.Storage(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotFound)
	}
	return nil
}

// NormalizeEmail lowercases and trims an address before it is stored or compared.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
