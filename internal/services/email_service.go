package services

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendSubscriptionCode(email, code string, expiresAt time.Time) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendSubscriptionCode(email, code string, expiresAt time.Time) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Confirm your newsletter subscription")

	minutes := int(time.Until(expiresAt).Round(time.Minute).Minutes())
	body := fmt.Sprintf(`
		<h2>Confirm your subscription</h2>
		<p>Use the following code to confirm your newsletter subscription:</p>
		<p style="font-size:24px"><strong>%s</strong></p>
		<p>The code is valid for %d minutes. If you did not request it, you can ignore this email.</p>
		<p>Best regards,<br>The TourSite Team</p>
	`, code, minutes)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send subscription code email: %w", err)
	}

	return nil
}
