package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/medik/hospital-api/pkg/errors"

	"github.com/medik/hospital-api/internal/model"
)

// The users and user_roles tables belong to the identity provider; this
// repository only reads them.

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, email, first_name, last_name, specialty, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("user", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	roles, err := r.GetRoles(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	return &user, nil
}

func (r *userRepository) GetRoles(ctx context.Context, id uuid.UUID) ([]model.Role, error) {
	query := `
		SELECT role
		FROM user_roles
		WHERE user_id = $1
	`
	var roles []model.Role
	if err := r.db.SelectContext(ctx, &roles, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	return roles, nil
}

func (r *userRepository) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.specialty
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		WHERE ur.role = $1
		ORDER BY u.last_name, u.first_name
	`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, model.RoleDoctor); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
