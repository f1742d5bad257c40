package model

import (
	"github.com/google/uuid"
)

// Role is a flat membership tag on a user. Roles are not exclusive: a user
// may hold several at once, and every permission check is a set intersection
// against the roles a view allows.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleStaff   Role = "staff"
	RoleRoot    Role = "root"
)

// User mirrors a row of the externally-owned identity store. This service
// never writes users; it only resolves the actor behind a token and lists
// the doctor directory.
type User struct {
	Base
	Email     string  `json:"email" db:"email"`
	FirstName string  `json:"first_name" db:"first_name"`
	LastName  string  `json:"last_name" db:"last_name"`
	Specialty *string `json:"specialty,omitempty" db:"specialty"`
	Roles     []Role  `json:"roles" db:"-"`
}

// FullName returns the display name used in appointment summaries.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// IsElevated reports staff or root membership, which bypasses the
// assigned-doctor check on the response workflow.
func (u *User) IsElevated() bool {
	return u.HasAnyRole(RoleStaff, RoleRoot)
}

// Doctor is the directory projection of a user holding the doctor role.
type Doctor struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Specialty *string   `json:"specialty,omitempty" db:"specialty"`
}
