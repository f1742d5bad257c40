package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medik/hospital-api/internal/model"
	"github.com/medik/hospital-api/internal/repository"
)

const (
	doctorsCacheKey = "doctors"
	doctorsCacheTTL = 5 * time.Minute
)

// Service reads the externally-owned identity store. The doctor directory is
// cached: it backs a public staff page and changes rarely.
type Service struct {
	repo  repository.UserRepository
	cache *gocache.Cache
}

func NewService(repo repository.UserRepository) *Service {
	return &Service{
		repo:  repo,
		cache: gocache.New(doctorsCacheTTL, 10*time.Minute),
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	if cached, ok := s.cache.Get(doctorsCacheKey); ok {
		return cached.([]*model.Doctor), nil
	}

	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	s.cache.Set(doctorsCacheKey, doctors, gocache.DefaultExpiration)
	return doctors, nil
}
