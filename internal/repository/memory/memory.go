// Package memory provides in-memory repository implementations used by
// tests. They mirror the SQL semantics of the postgres package, including
// the closed-interval conflict test and the descending listing order.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medik/hospital-api/internal/model"
	"github.com/medik/hospital-api/internal/repository"
	apperrors "github.com/medik/hospital-api/pkg/errors"
)

type AppointmentRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*model.Appointment
	users repository.UserRepository
}

func NewAppointmentRepository(users repository.UserRepository) *AppointmentRepository {
	return &AppointmentRepository{
		byID:  make(map[uuid.UUID]*model.Appointment),
		users: users,
	}
}

func (r *AppointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt.ID = uuid.New()
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = time.Now()
	stored := *apt
	r.byID[apt.ID] = &stored
	return nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	apt, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	copied := *apt
	return &copied, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[apt.ID]; !ok {
		return apperrors.NewNotFound("appointment", nil)
	}
	apt.UpdatedAt = time.Now()
	stored := *apt
	r.byID[apt.ID] = &stored
	return nil
}

func (r *AppointmentRepository) UpdateReadings(ctx context.Context, id uuid.UUID, readings string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	apt, ok := r.byID[id]
	if !ok {
		return apperrors.NewNotFound("appointment", nil)
	}
	apt.Readings = readings
	apt.UpdatedAt = time.Now()
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return apperrors.NewNotFound("appointment", nil)
	}
	delete(r.byID, id)
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentSummary, error) {
	return r.collect(ctx, func(a *model.Appointment) bool {
		if filters == nil {
			return true
		}
		if filters.PatientID != uuid.Nil && a.PatientID != filters.PatientID {
			return false
		}
		if filters.DoctorID != uuid.Nil && a.DoctorID != filters.DoctorID {
			return false
		}
		if filters.Answered != nil && a.Answered() != *filters.Answered {
			return false
		}
		return true
	})
}

func (r *AppointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID, answered bool) ([]*model.AppointmentSummary, error) {
	return r.collect(ctx, func(a *model.Appointment) bool {
		return a.PatientID == patientID && a.Answered() == answered
	})
}

func (r *AppointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID, answered bool) ([]*model.AppointmentSummary, error) {
	return r.collect(ctx, func(a *model.Appointment) bool {
		return a.DoctorID == doctorID && a.Answered() == answered
	})
}

func (r *AppointmentRepository) CheckConflict(ctx context.Context, party repository.ConflictParty, actorID uuid.UUID, start, end time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		id := a.PatientID
		if party == repository.ConflictDoctor {
			id = a.DoctorID
		}
		if id != actorID {
			continue
		}
		// Closed interval on both sides.
		if !a.StartTime.After(end) && !a.EndTime.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *AppointmentRepository) collect(ctx context.Context, match func(*model.Appointment) bool) ([]*model.AppointmentSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := []*model.AppointmentSummary{}
	for _, a := range r.byID {
		if !match(a) {
			continue
		}
		summaries = append(summaries, r.summarize(ctx, a))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})
	return summaries, nil
}

func (r *AppointmentRepository) summarize(ctx context.Context, a *model.Appointment) *model.AppointmentSummary {
	s := &model.AppointmentSummary{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		StartTime: a.StartTime,
		EndTime:   a.EndTime,
		Complaint: a.Complaint,
		Readings:  a.Readings,
	}
	if r.users != nil {
		if p, err := r.users.Get(ctx, a.PatientID); err == nil {
			s.PatientName = p.FullName()
		}
		if d, err := r.users.Get(ctx, a.DoctorID); err == nil {
			s.DoctorName = d.FullName()
		}
	}
	return s
}

type UserRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: make(map[uuid.UUID]*model.User)}
}

func (r *UserRepository) Add(user *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[user.ID] = user
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	copied := *user
	return &copied, nil
}

func (r *UserRepository) GetRoles(ctx context.Context, id uuid.UUID) ([]model.Role, error) {
	user, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Roles, nil
}

func (r *UserRepository) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doctors := []*model.Doctor{}
	for _, u := range r.byID {
		if u.HasAnyRole(model.RoleDoctor) {
			doctors = append(doctors, &model.Doctor{
				ID:        u.ID,
				FirstName: u.FirstName,
				LastName:  u.LastName,
				Specialty: u.Specialty,
			})
		}
	}
	sort.Slice(doctors, func(i, j int) bool {
		return doctors[i].LastName < doctors[j].LastName
	})
	return doctors, nil
}
