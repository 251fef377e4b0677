package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSES_SendBulk(t *testing.T) {
	t.Parallel()

	fake := &fakeSES{}
	s := &SES{client: fake}

	err := s.SendBulk(context.Background(), Message{
		From:    "sender@example.com",
		To:      []string{"a@example.com", "b@example.com"},
		Subject: "Hi",
		HTML:    "<b>hi</b>",
		Text:    "hi",
	})
	require.NoError(t, err)
	require.NotNil(t, fake.input)

	assert.Equal(t, "sender@example.com", aws.ToString(fake.input.FromEmailAddress))
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "Hi", aws.ToString(fake.input.Content.Simple.Subject.Data))
	assert.Equal(t, "<b>hi</b>", aws.ToString(fake.input.Content.Simple.Body.Html.Data))
	assert.Equal(t, "hi", aws.ToString(fake.input.Content.Simple.Body.Text.Data))
}

func TestSES_SendBulkFailure(t *testing.T) {
	t.Parallel()

	s := &SES{client: &fakeSES{err: errors.New("throttled")}}
	err := s.SendBulk(context.Background(), Message{From: "sender@example.com", To: []string{"a@example.com"}})
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.Contains(t, err.Error(), "throttled")
}

func TestSESInput_OmitsEmptyText(t *testing.T) {
	t.Parallel()

	input, err := sesInput(Message{From: "sender@example.com", To: []string{"a@example.com"}, HTML: "<p/>"})
	require.NoError(t, err)
	assert.Nil(t, input.Content.Simple.Body.Text)
}
