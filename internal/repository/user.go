package repository

import (
	"context"

	"docuvault/internal/model"
)

// UserRepository defines data access for user accounts and their email
// verification codes.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)

	// UpdateRole changes a user's role and returns the stored row.
	UpdateRole(ctx context.Context, id, role string) (*model.User, error)

	// MarkVerified flags the account as email-verified.
	MarkVerified(ctx context.Context, email string) error

	// SetVerificationCode upserts the pending code for an email.
	SetVerificationCode(ctx context.Context, vc *model.VerificationCode) error

	// GetVerificationCode returns the pending code, or sql.ErrNoRows.
	GetVerificationCode(ctx context.Context, email string) (*model.VerificationCode, error)

	// DeleteVerificationCode removes the pending code; missing rows are not
	// an error.
	DeleteVerificationCode(ctx context.Context, email string) error
}
