package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/go-mail"
)

var change = CustodyChange{
	AssetCode: "TV001",
	AssetName: "Projector",
	Value:     45000,
	FromName:  "Alice",
	ToName:    "Bob",
	ToEmail:   "bob@example.com",
	Note:      "moved to lab",
	By:        "admin",
	At:        time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
}

func TestBody(t *testing.T) {
	body := Body(change)
	for _, want := range []string{"TV001 Projector", "450.00", "Alice", "Bob", "admin", "2024-03-01 10:00:00", "moved to lab"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}

	first := change
	first.FromName = ""
	if !strings.Contains(Body(first), "(nobody)") {
		t.Error("expected placeholder for missing previous custodian")
	}
}

func TestSMTPRecipients(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "mail.example.com", From: "assets@example.com", To: []string{"office@example.com"}})

	var sent *mail.Msg
	s.send = func(_ context.Context, msg *mail.Msg) error {
		sent = msg
		return nil
	}

	if err := s.NotifyCustodyChange(context.Background(), change); err != nil {
		t.Fatalf("NotifyCustodyChange: %v", err)
	}
	if sent == nil {
		t.Fatal("expected a message to be sent")
	}

	rcpts, err := sent.GetRecipients()
	if err != nil {
		t.Fatalf("GetRecipients: %v", err)
	}
	if len(rcpts) != 2 || rcpts[0] != "bob@example.com" || rcpts[1] != "office@example.com" {
		t.Errorf("unexpected recipients: %v", rcpts)
	}
	if subj := sent.GetGenHeader(mail.HeaderSubject); len(subj) != 1 || subj[0] != Subject(change) {
		t.Errorf("unexpected subject: %v", subj)
	}
}

func TestSMTPNobodyToMail(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "mail.example.com", From: "assets@example.com"})
	s.send = func(context.Context, *mail.Msg) error {
		t.Fatal("send should not be called")
		return nil
	}

	c := change
	c.ToEmail = ""
	if err := s.NotifyCustodyChange(context.Background(), c); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestSMTPSendError(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "mail.example.com", From: "assets@example.com"})
	s.send = func(context.Context, *mail.Msg) error { return errors.New("connection refused") }

	err := s.NotifyCustodyChange(context.Background(), change)
	if err == nil || !strings.Contains(err.Error(), "TV001") {
		t.Errorf("expected wrapped send error, got %v", err)
	}
}

func TestEnabled(t *testing.T) {
	if (SMTPConfig{}).Enabled() {
		t.Error("empty config should be disabled")
	}
	if !(SMTPConfig{Host: "h", From: "f@example.com"}).Enabled() {
		t.Error("expected enabled")
	}
}

func TestNoopAndLog(t *testing.T) {
	if err := (Noop{}).NotifyCustodyChange(context.Background(), change); err != nil {
		t.Errorf("Noop: %v", err)
	}

	var buf bytes.Buffer
	l := Log{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	if err := l.NotifyCustodyChange(context.Background(), change); err != nil {
		t.Fatalf("Log: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"custody changed", "asset=TV001", "from=Alice", "to=Bob"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output %q", want, out)
		}
	}
}
