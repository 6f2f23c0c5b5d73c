// Package mailer delivers outgoing email over SMTP.  Delivery is always
// best-effort from the caller's point of view: the dispatcher logs a
// failure and moves on, so this package only has to report it.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer sends a single message.  The interface exists so handlers and
// the notification dispatcher can take a fake in tests.
type Mailer interface {
	Send(subject, body, from string, to []string) error
}

// SMTPMailer talks to a plain AUTH/STARTTLS SMTP relay, the setup used by
// institutional mail servers.  An empty Host disables sending: Send
// becomes a silent no-op so the service runs without a relay in dev.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
}

func NewSMTP(host, port, user, pass string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, User: user, Pass: pass}
}

// Send composes a minimal RFC 5322 message and submits it to the relay.
func (m *SMTPMailer) Send(subject, body, from string, to []string) error {
	if m.Host == "" {
		return nil
	}
	if len(to) == 0 {
		return fmt.Errorf("mailer: no recipients")
	}
	msg := strings.Builder{}
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := m.Host + ":" + m.Port
	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	return smtp.SendMail(addr, auth, from, to, []byte(msg.String()))
}
