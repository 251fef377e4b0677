package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 465
)

// SMTPConfig holds the relay settings shared by every tenant.
type SMTPConfig struct {
	Host          string
	Port          int
	TLSSkipVerify bool
	Timeout       time.Duration
}

// SMTP sends over implicit TLS, authenticating with the tenant's own
// sender address and credential.
type SMTP struct {
	cfg SMTPConfig
}

var _ Sender = (*SMTP)(nil)

// NewSMTP creates an SMTP sender. Zero values fall back to the Gmail relay.
func NewSMTP(cfg SMTPConfig) *SMTP {
	if cfg.Host == "" {
		cfg.Host = DefaultSMTPHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultSMTPPort
	}
	return &SMTP{cfg: cfg}
}

func (s *SMTP) Name() string { return TransportSMTP }

// SendBulk opens one authenticated session and sends a single message
// listing every recipient.
func (s *SMTP) SendBulk(ctx context.Context, msg Message) error {
	m, err := buildMIME(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.clientOptions(msg)...)
	if err != nil {
		return fmt.Errorf("%w: smtp client: %v", ErrSendFailed, err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("%w: smtp: %v", ErrSendFailed, err)
	}
	return nil
}

func (s *SMTP) clientOptions(msg Message) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(msg.From),
		mail.WithPassword(msg.Credential),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         s.cfg.Host,
			InsecureSkipVerify: s.cfg.TLSSkipVerify, //nolint:gosec // opt-in for legacy relays
			MinVersion:         tls.VersionTLS12,
		}),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	return opts
}

// buildMIME renders msg as multipart/alternative with the plain text part
// first and the HTML part second.
func buildMIME(msg Message) (*mail.Msg, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("%w: from: %v", ErrInvalidMessage, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("%w: to: %v", ErrInvalidMessage, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}
