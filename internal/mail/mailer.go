package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, username, password, fromEmail, fromName string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   fmt.Sprintf("%s <%s>", fromName, fromEmail),
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("email could not be sent: %w", err)
	}
	return nil
}
