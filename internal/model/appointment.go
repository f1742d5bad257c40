package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultAppointmentDuration is applied whenever an appointment is saved
// without an explicit end time. The patient-facing flow never supplies one.
const DefaultAppointmentDuration = 30 * time.Minute

type Appointment struct {
	Base
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Complaint string    `db:"complaint" json:"complaint"`
	Readings  string    `db:"readings" json:"readings"`
}

// Answered reports whether a doctor has filled in the readings. There is no
// stored status column: the empty string is the sole discriminator between
// pending and answered.
func (a *Appointment) Answered() bool {
	return a.Readings != ""
}

// DeriveEndTime fills in the end time when it was not explicitly supplied.
func (a *Appointment) DeriveEndTime() {
	if a.EndTime.IsZero() {
		a.EndTime = a.StartTime.Add(DefaultAppointmentDuration)
	}
}

// AppointmentSummary is the read model of the listing views: an appointment
// joined with both participants' names.
type AppointmentSummary struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DoctorName  string    `db:"doctor_name" json:"doctor_name"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	Complaint   string    `db:"complaint" json:"complaint"`
	Readings    string    `db:"readings" json:"readings"`
}

type CreateAppointmentRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	Complaint string    `json:"complaint" binding:"required,max=500,cyrillictext"`
}

type RespondRequest struct {
	Readings string `json:"readings" binding:"required,cyrillictext"`
}

// AdminCreateAppointmentRequest is the back-office creation surface. Unlike
// the patient flow it may pin both participants and an explicit end time.
type AdminCreateAppointmentRequest struct {
	PatientID uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID  `json:"doctor_id" binding:"required"`
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   *time.Time `json:"end_time"`
	Complaint string     `json:"complaint" binding:"omitempty,max=500,cyrillictext"`
	Readings  string     `json:"readings" binding:"omitempty,cyrillictext"`
}

// AdminUpdateAppointmentRequest carries partial edits. EndTime is absent on
// purpose: it is always derived from the start time.
type AdminUpdateAppointmentRequest struct {
	StartTime *time.Time `json:"start_time"`
	Complaint *string    `json:"complaint" binding:"omitempty,max=500,cyrillictext"`
	Readings  *string    `json:"readings" binding:"omitempty,cyrillictext"`
}

// AppointmentFilters narrows the admin listing.
type AppointmentFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Answered  *bool
}
