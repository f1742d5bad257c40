package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/medik/hospital-api/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type userRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}
