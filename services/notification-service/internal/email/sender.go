package email

import (
	"net"
	"net/smtp"
	"strings"
)

const defaultFrom = "no-reply@bookly.local"

type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender delivers through a plain, unauthenticated relay. Local
// development points it at Mailpit; production fronts it with a real
// relay that handles auth and TLS.
type SMTPSender struct {
	addr string
	from string
}

func NewSMTPSender(host, port, from string) *SMTPSender {
	if from = strings.TrimSpace(from); from == "" {
		from = defaultFrom
	}
	return &SMTPSender{
		addr: net.JoinHostPort(strings.TrimSpace(host), strings.TrimSpace(port)),
		from: from,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	return smtp.SendMail(s.addr, nil, s.from, []string{to}, s.compose(to, subject, body))
}

func (s *SMTPSender) compose(to, subject, body string) []byte {
	var b strings.Builder
	writeHeader := func(name, value string) {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}
	writeHeader("From", s.from)
	writeHeader("To", to)
	writeHeader("Subject", subject)
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", "text/plain; charset=utf-8")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// NoopSender drops mail; wired in when no SMTP relay is configured so the
// consumer keeps producing in-app notifications.
type NoopSender struct{}

func (NoopSender) Send(string, string, string) error { return nil }
