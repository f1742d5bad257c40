package email

import (
	"context"
	"time"

	"github.com/medik/hospital-api/internal/model"
)

// Service sends appointment notifications to the participants. Delivery is
// best-effort: the booking and response workflows never fail on a mail error.
type Service interface {
	SendBookingConfirmation(ctx context.Context, to string, apt *model.Appointment) error
	SendBookingNotice(ctx context.Context, to string, patientName string, apt *model.Appointment) error
	SendReadingsReady(ctx context.Context, to string, doctorName string, apt *model.Appointment) error
}

func formatSlot(apt *model.Appointment) string {
	return apt.StartTime.Format("02.01.2006 15:04") + " – " + apt.EndTime.Format("15:04")
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
