package email

import (
	"strings"
	"testing"
)

func TestCompose(t *testing.T) {
	s := NewSMTPSender("localhost", "1025", "")
	msg := string(s.compose("maria@example.com", "Appointment confirmed", "See you at 10:00."))

	headers, body, found := strings.Cut(msg, "\r\n\r\n")
	if !found {
		t.Fatal("message must separate headers from body with a blank line")
	}
	for _, want := range []string{
		"From: " + defaultFrom,
		"To: maria@example.com",
		"Subject: Appointment confirmed",
		"Content-Type: text/plain; charset=utf-8",
	} {
		if !strings.Contains(headers, want) {
			t.Errorf("headers missing %q:\n%s", want, headers)
		}
	}
	if !strings.Contains(body, "See you at 10:00.") {
		t.Errorf("body missing text: %q", body)
	}
}

func TestNewSMTPSenderDefaults(t *testing.T) {
	s := NewSMTPSender(" smtp.internal ", " 25 ", "  ")
	if s.addr != "smtp.internal:25" {
		t.Errorf("addr = %q", s.addr)
	}
	if s.from != defaultFrom {
		t.Errorf("from = %q", s.from)
	}
}
