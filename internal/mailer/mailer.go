// Package mailer delivers one broadcast message to a list of recipients.
//
// Each tenant sends as itself: the sender address and credential travel with
// the Message, so a single Sender serves every tenant.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Transport kinds accepted by New.
const (
	TransportSMTP     = "smtp"
	TransportSES      = "ses"
	TransportPostmark = "postmark"
	TransportOutbox   = "outbox"
)

var (
	ErrSendFailed       = errors.New("mail send failed")
	ErrInvalidMessage   = errors.New("invalid mail message")
	ErrUnknownTransport = errors.New("unknown mail transport")
)

// Message is one email addressed to all recipients at once.
type Message struct {
	From       string
	Credential string
	To         []string
	Subject    string
	HTML       string
	Text       string
}

// Validate checks the fields every transport needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.From) == "" {
		return fmt.Errorf("%w: sender address is required", ErrInvalidMessage)
	}
	if len(m.To) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidMessage)
	}
	return nil
}

// Sender hands a message to a mail transport.
type Sender interface {
	SendBulk(ctx context.Context, msg Message) error
	Name() string
}

// Options configures the transport chosen by New.
type Options struct {
	Transport string

	SMTPHost          string
	SMTPPort          int
	SMTPTLSSkipVerify bool
	SMTPTimeout       time.Duration

	SESRegion          string
	SESAccessKeyID     string
	SESSecretAccessKey string

	OutboxDir string
}

// New builds the Sender named by opts.Transport.
func New(ctx context.Context, opts Options) (Sender, error) {
	switch opts.Transport {
	case TransportSMTP, "":
		return NewSMTP(SMTPConfig{
			Host:          opts.SMTPHost,
			Port:          opts.SMTPPort,
			TLSSkipVerify: opts.SMTPTLSSkipVerify,
			Timeout:       opts.SMTPTimeout,
		}), nil
	case TransportSES:
		return NewSES(ctx, SESConfig{
			Region:          opts.SESRegion,
			AccessKeyID:     opts.SESAccessKeyID,
			SecretAccessKey: opts.SESSecretAccessKey,
		})
	case TransportPostmark:
		return NewPostmark(), nil
	case TransportOutbox:
		return NewOutbox(opts.OutboxDir), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, opts.Transport)
	}
}
