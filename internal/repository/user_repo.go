package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"arrive/internal/db"
	apperrors "arrive/internal/errors"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(database *sql.DB) *UserRepository {
	return &UserRepository{DB: database}
}

func (r *UserRepository) CreateUser(ctx context.Context, u *db.User) error {
	query := `
		INSERT INTO users (user_id, email, password_hash, first_name, last_name, phone_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		u.UserID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.PhoneNumber, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	query := `
		SELECT user_id, email, password_hash, first_name, last_name, phone_number, created_at
		FROM users WHERE email = $1`
	return r.scanUser(r.DB.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*db.User, error) {
	query := `
		SELECT user_id, email, password_hash, first_name, last_name, phone_number, created_at
		FROM users WHERE user_id = $1`
	return r.scanUser(r.DB.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) scanUser(row *sql.Row) (*db.User, error) {
	var u db.User
	err := row.Scan(&u.UserID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.PhoneNumber, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &u, nil
}
