package service

import (
	"context"
	"database/sql"
	"errors"

	"docuvault/internal/model"
	"docuvault/internal/repository"
)

var ErrCommunityNotFound = errors.New("community not found")

// CommunityService exposes the community directory. Reads require a
// verified account; the HTTP layer enforces that.
type CommunityService interface {
	List(ctx context.Context) ([]model.Community, error)
	GetByNumber(ctx context.Context, number int) (*model.Community, error)
}

type communityService struct {
	repo repository.CommunityRepository
}

// NewCommunityService constructs a CommunityService.
func NewCommunityService(repo repository.CommunityRepository) CommunityService {
	return &communityService{repo: repo}
}

func (s *communityService) List(ctx context.Context) ([]model.Community, error) {
	return s.repo.List(ctx)
}

func (s *communityService) GetByNumber(ctx context.Context, number int) (*model.Community, error) {
	c, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	return c, nil
}
