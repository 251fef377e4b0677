package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"
)

// Postmark sends through the Postmark API. The tenant credential is used as
// the Postmark server token.
type Postmark struct {
	newClient func(serverToken string) postmarkAPI
}

type postmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

var _ Sender = (*Postmark)(nil)

func NewPostmark() *Postmark {
	return &Postmark{
		newClient: func(serverToken string) postmarkAPI {
			return postmark.NewClient(serverToken, "")
		},
	}
}

func (p *Postmark) Name() string { return TransportPostmark }

func (p *Postmark) SendBulk(ctx context.Context, msg Message) error {
	email, err := postmarkEmail(msg)
	if err != nil {
		return err
	}
	if msg.Credential == "" {
		return fmt.Errorf("%w: postmark server token is required", ErrInvalidMessage)
	}

	resp, err := p.newClient(msg.Credential).SendEmail(ctx, email)
	if err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(
			ErrSendFailed,
			fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message),
		)
	}
	return nil
}

func postmarkEmail(msg Message) (postmark.Email, error) {
	if err := msg.Validate(); err != nil {
		return postmark.Email{}, err
	}
	return postmark.Email{
		From:     msg.From,
		To:       strings.Join(msg.To, ", "),
		Subject:  msg.Subject,
		HTMLBody: msg.HTML,
		TextBody: msg.Text,
	}, nil
}
