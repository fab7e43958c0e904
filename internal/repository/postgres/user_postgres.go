package postgres

import (
	"context"
	"database/sql"

	"docuvault/internal/model"
	"docuvault/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, email, password_hash, name, role, is_verified, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var name sql.NullString
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&name,
		&u.Role,
		&u.IsVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Name = name.String
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email, password_hash, name, role, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.Name,
		u.Role,
		u.IsVerified,
		u.CreatedAt,
	)
	return scanUser(row)
}

// FindByEmail fetches a user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// FindByID fetches a user by id.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// UpdateRole changes a user's role and returns the stored row.
func (r *UserPostgres) UpdateRole(ctx context.Context, id, role string) (*model.User, error) {
	const q = `
		UPDATE users SET role = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, q, id, role))
}

// MarkVerified flags the account as email-verified.
func (r *UserPostgres) MarkVerified(ctx context.Context, email string) error {
	const q = `UPDATE users SET is_verified = TRUE, updated_at = now() WHERE email = $1`
	res, err := r.db.ExecContext(ctx, q, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetVerificationCode upserts the pending code for an email.
func (r *UserPostgres) SetVerificationCode(ctx context.Context, vc *model.VerificationCode) error {
	const q = `
		INSERT INTO verification_codes (email, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at
	`
	_, err := r.db.ExecContext(ctx, q, vc.Email, vc.Code, vc.ExpiresAt)
	return err
}

// GetVerificationCode returns the pending code for an email.
func (r *UserPostgres) GetVerificationCode(ctx context.Context, email string) (*model.VerificationCode, error) {
	const q = `SELECT email, code, expires_at FROM verification_codes WHERE email = $1`
	var vc model.VerificationCode
	if err := r.db.QueryRowContext(ctx, q, email).Scan(&vc.Email, &vc.Code, &vc.ExpiresAt); err != nil {
		return nil, err
	}
	return &vc, nil
}

// DeleteVerificationCode removes the pending code; a missing row is not an error.
func (r *UserPostgres) DeleteVerificationCode(ctx context.Context, email string) error {
	const q = `DELETE FROM verification_codes WHERE email = $1`
	_, err := r.db.ExecContext(ctx, q, email)
	return err
}
