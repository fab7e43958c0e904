package email

import (
	"fmt"
	"log"
	"net/smtp"

	"docuvault/internal/config"
)

// Sender delivers account emails. The service layer depends on this
// interface so tests can stub delivery.
type Sender interface {
	SendVerificationCode(to, name, code string) error
}

// SMTPSender sends mail through a plain-auth SMTP relay. When disabled it
// logs the message instead of sending, which keeps local development working
// without a mail server.
type SMTPSender struct {
	cfg config.EmailConfig
}

// NewSMTPSender creates a sender from configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) send(to, subject, body string) error {
	if !s.cfg.Enabled {
		log.Printf("email (disabled): to=%s subject=%q", to, subject)
		return nil
	}
	if s.cfg.SMTPHost == "" || s.cfg.SMTPUser == "" || s.cfg.SMTPPassword == "" {
		return fmt.Errorf("smtp not configured")
	}

	message := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.cfg.FromEmail, to, subject, body,
	))

	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	addr := s.cfg.SMTPHost + ":" + s.cfg.SMTPPort

	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// SendVerificationCode emails the 6-digit confirmation code a new account
// must enter before accessing documents. Codes expire after 24 hours.
func (s *SMTPSender) SendVerificationCode(to, name, code string) error {
	if name == "" {
		name = "there"
	}

	subject := "Confirm your email address"
	body := fmt.Sprintf(`
		<html>
		<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
			<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
				<h2>Confirm your email address</h2>
				<p>Hi %s,</p>
				<p>Thanks for signing up. Enter the following code on the verification page to complete your registration:</p>
				<p style="font-size: 32px; font-weight: bold; text-align: center; padding: 15px; border: 2px dashed #007bff; border-radius: 8px;">%s</p>
				<p><strong>This code expires in 24 hours.</strong></p>
				<p style="color: #666; font-size: 0.85em;">If you did not sign up, you can safely ignore this message.</p>
			</div>
		</body>
		</html>`, name, code)

	return s.send(to, subject, body)
}
