package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/medik/hospital-api/internal/email"
	"github.com/medik/hospital-api/internal/model"
	"github.com/medik/hospital-api/internal/repository"
	apperrors "github.com/medik/hospital-api/pkg/errors"
	"github.com/medik/hospital-api/pkg/messaging"
	"github.com/medik/hospital-api/pkg/validator"
)

// Booking rejections. Each guard produces its own error so the handler can
// surface a distinct user-facing message; the first failing guard wins and
// nothing is persisted.
var (
	ErrPastStartTime   = errors.New("cannot book in the past")
	ErrPatientConflict = errors.New("you already have a booking at this time")
	ErrDoctorConflict  = errors.New("the doctor is unavailable at this time")
	ErrNotADoctor      = errors.New("selected user is not a doctor")
	ErrNotAssigned     = errors.New("only the assigned doctor may answer this appointment")
	ErrComplaintLocked = errors.New("doctors may not edit the complaint")
)

type Service struct {
	repo     repository.AppointmentRepository
	userRepo repository.UserRepository
	emailSvc email.Service
	broker   messaging.Broker
	now      func() time.Time
}

func NewService(repo repository.AppointmentRepository, userRepo repository.UserRepository, emailSvc email.Service, broker messaging.Broker) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		emailSvc: emailSvc,
		broker:   broker,
		now:      time.Now,
	}
}

type appointmentEvent struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
}

// Book runs the patient booking workflow. The guards run in a fixed order:
// past start time, then the patient's own calendar, then the doctor's.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := validator.ValidateComplaint(req.Complaint); err != nil {
		return nil, apperrors.NewBadRequest(err.Error(), err)
	}

	doctor, err := s.userRepo.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve doctor: %w", err)
	}
	if !doctor.HasAnyRole(model.RoleDoctor) {
		return nil, ErrNotADoctor
	}

	if req.StartTime.Before(s.now()) {
		return nil, ErrPastStartTime
	}

	end := req.StartTime.Add(model.DefaultAppointmentDuration)

	conflict, err := s.repo.CheckConflict(ctx, repository.ConflictPatient, patientID, req.StartTime, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check patient conflicts: %w", err)
	}
	if conflict {
		return nil, ErrPatientConflict
	}

	conflict, err = s.repo.CheckConflict(ctx, repository.ConflictDoctor, req.DoctorID, req.StartTime, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check doctor conflicts: %w", err)
	}
	if conflict {
		return nil, ErrDoctorConflict
	}

	apt := &model.Appointment{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		StartTime: req.StartTime,
		Complaint: req.Complaint,
	}
	apt.DeriveEndTime()

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.publish(ctx, messaging.ChannelAppointmentCreated, apt)
	s.notifyBooking(ctx, apt, doctor)

	return apt, nil
}

// Respond fills in the readings of an appointment. Only the assigned doctor
// (or staff/root) may perform the transition, and the write path touches the
// readings column alone.
func (s *Service) Respond(ctx context.Context, actor *model.User, id uuid.UUID, readings string) (*model.Appointment, error) {
	if err := validator.ValidateReadings(readings); err != nil {
		return nil, apperrors.NewBadRequest(err.Error(), err)
	}

	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.DoctorID != actor.ID && !actor.IsElevated() {
		return nil, ErrNotAssigned
	}

	if err := s.repo.UpdateReadings(ctx, id, readings); err != nil {
		return nil, err
	}
	apt.Readings = readings

	s.publish(ctx, messaging.ChannelAppointmentAnswered, apt)
	s.notifyAnswered(ctx, apt)

	return apt, nil
}

func (s *Service) ListPatientPending(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentSummary, error) {
	return s.repo.ListForPatient(ctx, patientID, false)
}

func (s *Service) ListPatientAnswered(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentSummary, error) {
	return s.repo.ListForPatient(ctx, patientID, true)
}

func (s *Service) ListDoctorPending(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentSummary, error) {
	return s.repo.ListForDoctor(ctx, doctorID, false)
}

func (s *Service) ListDoctorAnswered(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentSummary, error) {
	return s.repo.ListForDoctor(ctx, doctorID, true)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) AdminList(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentSummary, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// AdminCreate is the back-office insert. Staff may pin an explicit end time;
// when none is given the usual derivation applies.
func (s *Service) AdminCreate(ctx context.Context, req *model.AdminCreateAppointmentRequest) (*model.Appointment, error) {
	if req.Complaint != "" && !validator.FreeText(req.Complaint) {
		return nil, apperrors.NewBadRequest("complaint contains disallowed characters", nil)
	}
	if req.Readings != "" && !validator.FreeText(req.Readings) {
		return nil, apperrors.NewBadRequest("readings contains disallowed characters", nil)
	}

	apt := &model.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		StartTime: req.StartTime,
		Complaint: req.Complaint,
		Readings:  req.Readings,
	}
	if req.EndTime != nil {
		apt.EndTime = *req.EndTime
	}
	apt.DeriveEndTime()

	if apt.EndTime.Before(apt.StartTime) {
		return nil, apperrors.NewBadRequest("end time precedes start time", nil)
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return apt, nil
}

// AdminUpdate applies partial edits. The end time is never client-settable:
// moving the start moves the end with it. An actor whose only elevated role
// is doctor may not touch the complaint.
func (s *Service) AdminUpdate(ctx context.Context, actor *model.User, id uuid.UUID, req *model.AdminUpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Complaint != nil && *req.Complaint != apt.Complaint {
		if !actor.IsElevated() {
			return nil, ErrComplaintLocked
		}
		if *req.Complaint != "" && !validator.FreeText(*req.Complaint) {
			return nil, apperrors.NewBadRequest("complaint contains disallowed characters", nil)
		}
		apt.Complaint = *req.Complaint
	}

	if req.Readings != nil {
		if *req.Readings != "" && !validator.FreeText(*req.Readings) {
			return nil, apperrors.NewBadRequest("readings contains disallowed characters", nil)
		}
		apt.Readings = *req.Readings
	}

	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
		apt.EndTime = apt.StartTime.Add(model.DefaultAppointmentDuration)
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) AdminDelete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) publish(ctx context.Context, channel string, apt *model.Appointment) {
	if s.broker == nil {
		return
	}
	evt := appointmentEvent{
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		DoctorID:      apt.DoctorID,
		StartTime:     apt.StartTime,
		EndTime:       apt.EndTime,
	}
	if err := s.broker.Publish(ctx, channel, evt); err != nil {
		log.Warn().Err(err).Str("channel", channel).Stringer("appointment_id", apt.ID).Msg("event publish failed")
	}
}

func (s *Service) notifyBooking(ctx context.Context, apt *model.Appointment, doctor *model.User) {
	if s.emailSvc == nil {
		return
	}
	patient, err := s.userRepo.Get(ctx, apt.PatientID)
	if err != nil {
		log.Warn().Err(err).Msg("skipping booking emails, patient lookup failed")
		return
	}
	if err := s.emailSvc.SendBookingConfirmation(ctx, patient.Email, apt); err != nil {
		log.Warn().Err(err).Str("to", patient.Email).Msg("booking confirmation failed")
	}
	if err := s.emailSvc.SendBookingNotice(ctx, doctor.Email, patient.FullName(), apt); err != nil {
		log.Warn().Err(err).Str("to", doctor.Email).Msg("booking notice failed")
	}
}

func (s *Service) notifyAnswered(ctx context.Context, apt *model.Appointment) {
	if s.emailSvc == nil {
		return
	}
	patient, err := s.userRepo.Get(ctx, apt.PatientID)
	if err != nil {
		log.Warn().Err(err).Msg("skipping answer email, patient lookup failed")
		return
	}
	doctor, err := s.userRepo.Get(ctx, apt.DoctorID)
	if err != nil {
		log.Warn().Err(err).Msg("skipping answer email, doctor lookup failed")
		return
	}
	if err := s.emailSvc.SendReadingsReady(ctx, patient.Email, doctor.FullName(), apt); err != nil {
		log.Warn().Err(err).Str("to", patient.Email).Msg("answer email failed")
	}
}
