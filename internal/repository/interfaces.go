package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medik/hospital-api/internal/model"
)

// ConflictParty selects which leg of a booking the overlap check runs
// against. Both legs are checked independently at booking time.
type ConflictParty string

const (
	ConflictPatient ConflictParty = "patient"
	ConflictDoctor  ConflictParty = "doctor"
)

// All repository interfaces in one file
type (
	// AppointmentRepository handles appointment persistence.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		UpdateReadings(ctx context.Context, id uuid.UUID, readings string) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentSummary, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID, answered bool) ([]*model.AppointmentSummary, error)
		ListForDoctor(ctx context.Context, doctorID uuid.UUID, answered bool) ([]*model.AppointmentSummary, error)
		// CheckConflict reports whether any appointment of the given party
		// intersects [start, end]. Bounds are inclusive: back-to-back
		// bookings count as conflicting.
		CheckConflict(ctx context.Context, party ConflictParty, actorID uuid.UUID, start, end time.Time) (bool, error)
	}

	// UserRepository reads the externally-owned identity store.
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetRoles(ctx context.Context, id uuid.UUID) ([]model.Role, error)
		ListDoctors(ctx context.Context) ([]*model.Doctor, error)
	}
)
