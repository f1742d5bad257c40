package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medik/hospital-api/internal/model"
	"github.com/medik/hospital-api/internal/repository"
)

// Tokens are issued by the external identity provider; this service only
// verifies the shared-secret signature and resolves the actor it names.

var (
	ErrInvalidToken = errors.New("invalid token")
)

type Config struct {
	Secret string `yaml:"secret"`
}

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type Service struct {
	userRepo repository.UserRepository
	secret   []byte
}

func NewService(userRepo repository.UserRepository, cfg Config) *Service {
	return &Service{
		userRepo: userRepo,
		secret:   []byte(cfg.Secret),
	}
}

// Authenticate validates a bearer token and loads the actor with its role
// set from the identity store.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return user, nil
}
