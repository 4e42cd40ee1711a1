package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds mail server settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	// To receives a copy of every notice in addition to the new custodian.
	To []string `yaml:"to"`
}

// Enabled reports whether a mail server is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// SMTP sends custody-change notices by email.
type SMTP struct {
	cfg     SMTPConfig
	timeout time.Duration
	send    func(ctx context.Context, msg *mail.Msg) error
}

// NewSMTP returns an SMTP notifier.
func NewSMTP(cfg SMTPConfig) *SMTP {
	s := &SMTP{cfg: cfg, timeout: 10 * time.Second}
	s.send = s.dialAndSend
	return s
}

// NotifyCustodyChange mails the new custodian and the configured recipients.
// It is a no-op when there is nobody to mail.
func (s *SMTP) NotifyCustodyChange(ctx context.Context, c CustodyChange) error {
	msg, err := s.message(c)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}
	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("sending custody notice for %s: %w", c.AssetCode, err)
	}
	return nil
}

func (s *SMTP) message(c CustodyChange) (*mail.Msg, error) {
	var rcpts []string
	if c.ToEmail != "" {
		rcpts = append(rcpts, c.ToEmail)
	}
	rcpts = append(rcpts, s.cfg.To...)
	if len(rcpts) == 0 {
		return nil, nil
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(rcpts...); err != nil {
		return nil, fmt.Errorf("setting recipients: %w", err)
	}
	msg.Subject(Subject(c))
	msg.SetBodyString(mail.TypeTextPlain, Body(c))
	return msg, nil
}

func (s *SMTP) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithTimeout(s.timeout),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Port != 0 {
		opts = append(opts, mail.WithPort(s.cfg.Port))
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
