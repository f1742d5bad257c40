package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/medik/hospital-api/pkg/errors"

	"github.com/medik/hospital-api/internal/model"
	"github.com/medik/hospital-api/internal/repository"
)

const summaryColumns = `
	a.id, a.patient_id, a.doctor_id, a.start_time, a.end_time,
	a.complaint, a.readings,
	trim(p.first_name || ' ' || p.last_name) AS patient_name,
	trim(d.first_name || ' ' || d.last_name) AS doctor_name
`

const summaryJoins = `
	FROM appointments a
	JOIN users p ON p.id = a.patient_id
	JOIN users d ON d.id = a.doctor_id
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id,
			start_time, end_time, complaint, readings,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Complaint,
		appointment.Readings,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id,
			   start_time, end_time, complaint, readings,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, complaint = $3, readings = $4, updated_at = $5
		WHERE id = $6
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Complaint,
		appointment.Readings,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", nil)
	}

	return nil
}

// UpdateReadings is the response workflow's whole write path: nothing except
// the readings column is ever touched by a doctor's answer.
func (r *appointmentRepository) UpdateReadings(ctx context.Context, id uuid.UUID, readings string) error {
	query := `
		UPDATE appointments
		SET readings = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, readings, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update readings: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", nil)
	}

	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM appointments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", nil)
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentSummary, error) {
	query := "SELECT " + summaryColumns + summaryJoins + " WHERE 1=1"
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND a.patient_id = $%d", argCount)
			args = append(args, filters.PatientID)
			argCount++
		}
		if filters.DoctorID != uuid.Nil {
			query += fmt.Sprintf(" AND a.doctor_id = $%d", argCount)
			args = append(args, filters.DoctorID)
			argCount++
		}
		if filters.Answered != nil {
			if *filters.Answered {
				query += " AND a.readings <> ''"
			} else {
				query += " AND a.readings = ''"
			}
		}
	}

	query += " ORDER BY a.start_time DESC"

	var appointments []*model.AppointmentSummary
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID, answered bool) ([]*model.AppointmentSummary, error) {
	return r.listForParty(ctx, "a.patient_id", patientID, answered)
}

func (r *appointmentRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID, answered bool) ([]*model.AppointmentSummary, error) {
	return r.listForParty(ctx, "a.doctor_id", doctorID, answered)
}

func (r *appointmentRepository) listForParty(ctx context.Context, column string, actorID uuid.UUID, answered bool) ([]*model.AppointmentSummary, error) {
	predicate := "a.readings = ''"
	if answered {
		predicate = "a.readings <> ''"
	}

	query := "SELECT " + summaryColumns + summaryJoins +
		" WHERE " + column + " = $1 AND " + predicate +
		" ORDER BY a.start_time DESC"

	var appointments []*model.AppointmentSummary
	if err := r.db.SelectContext(ctx, &appointments, query, actorID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// CheckConflict runs the closed-interval overlap test: an existing booking
// conflicts when existing.start <= new.end AND existing.end >= new.start,
// so a booking that starts exactly when another ends still conflicts.
func (r *appointmentRepository) CheckConflict(ctx context.Context, party repository.ConflictParty, actorID uuid.UUID, start, end time.Time) (bool, error) {
	column := "patient_id"
	if party == repository.ConflictDoctor {
		column = "doctor_id"
	}

	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE %s = $1
			AND start_time <= $3
			AND end_time >= $2
		)
	`, column)

	var hasConflict bool
	if err := r.db.GetContext(ctx, &hasConflict, query, actorID, start, end); err != nil {
		return false, fmt.Errorf("failed to check conflicts: %w", err)
	}
	return hasConflict, nil
}
