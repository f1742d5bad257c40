package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medik/hospital-api/internal/model"
)

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendBookingConfirmation(ctx context.Context, to string, apt *model.Appointment) error {
	subject := "Запись подтверждена"
	body := fmt.Sprintf("Ваша запись на приём создана: %s.", formatSlot(apt))
	return s.send(to, subject, body)
}

func (s *smtpService) SendBookingNotice(ctx context.Context, to string, patientName string, apt *model.Appointment) error {
	subject := "Новая запись на приём"
	body := fmt.Sprintf("Пациент %s записан к вам на %s.", patientName, formatSlot(apt))
	return s.send(to, subject, body)
}

func (s *smtpService) SendReadingsReady(ctx context.Context, to string, doctorName string, apt *model.Appointment) error {
	subject := "Ответ доктора готов"
	body := fmt.Sprintf("Доктор %s ответил на ваше обращение от %s.", doctorName, formatDate(apt.StartTime))
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
