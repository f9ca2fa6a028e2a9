package email

import (
	"context"
	"fmt"
	"net/smtp"

	"library-backend/pkg/logger"
)

// OTPEmailData is everything the templates need to deliver a one-time code.
type OTPEmailData struct {
	Email     string
	Code      string
	Purpose   string
	ExpiresIn string
}

type EmailService interface {
	SendOTPEmail(ctx context.Context, data OTPEmailData) error
	SendOverdueReminder(ctx context.Context, email, bookTitle string, daysLate int) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

// NewSMTPEmailService talks plain SMTP with no auth. Intended for a local
// relay or a capture tool like MailHog in development.
func NewSMTPEmailService(smtpHost, smtpPort, from string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
	}
}

var otpSubjects = map[string]string{
	"activation":         "Activate your library account",
	"login":              "Your library sign-in code",
	"password_reset":     "Reset your library password",
	"phone_verification": "Verify your phone number",
}

func (s *smtpEmailService) SendOTPEmail(_ context.Context, data OTPEmailData) error {
	subject, ok := otpSubjects[data.Purpose]
	if !ok {
		subject = "Your library verification code"
	}

	body := fmt.Sprintf(`Hello,

Your one-time code is:

	%s

The code expires in %s and can be used once.

If you did not request this, you can safely ignore this email.`, data.Code, data.ExpiresIn)

	return s.send(data.Email, subject, body)
}

func (s *smtpEmailService) SendOverdueReminder(_ context.Context, email, bookTitle string, daysLate int) error {
	subject := "Overdue book reminder"
	body := fmt.Sprintf(`Hello,

"%s" was due back %d day(s) ago. Late fees accrue daily until the copy
is returned.

Please return it at your earliest convenience.`, bookTitle, daysLate)

	return s.send(email, subject, body)
}

func (s *smtpEmailService) send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, to, subject, body))

	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{to}, msg); err != nil {
		logger.Warn("failed to send email", map[string]interface{}{
			"to":        to,
			"smtp_addr": s.smtpAddr,
			"error":     err.Error(),
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
