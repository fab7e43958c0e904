package repository

import (
	"context"

	"docuvault/internal/model"
)

// CommunityRepository defines read access to communities.
type CommunityRepository interface {
	List(ctx context.Context) ([]model.Community, error)
	FindByNumber(ctx context.Context, number int) (*model.Community, error)
}
