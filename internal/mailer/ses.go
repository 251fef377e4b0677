package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const charsetUTF8 = "UTF-8"

// SESConfig selects the region and, optionally, static credentials.
// Without static credentials the default AWS chain is used.
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES sends through Amazon SES v2. The tenant's sender address must be a
// verified identity in the account.
type SES struct {
	client sesAPI
}

var _ Sender = (*SES)(nil)

// NewSES loads the AWS configuration and creates an SES client.
func NewSES(ctx context.Context, cfg SESConfig) (*SES, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &SES{client: sesv2.NewFromConfig(awsCfg)}, nil
}

func (s *SES) Name() string { return TransportSES }

// SendBulk issues one SendEmail call with every recipient in ToAddresses.
func (s *SES) SendBulk(ctx context.Context, msg Message) error {
	input, err := sesInput(msg)
	if err != nil {
		return err
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("%w: ses: %v", ErrSendFailed, err)
	}
	return nil
}

func sesInput(msg Message) (*sesv2.SendEmailInput, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	body := &types.Body{
		Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(charsetUTF8)},
	}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String(charsetUTF8)}
	}

	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(msg.From),
		Destination:      &types.Destination{ToAddresses: append([]string(nil), msg.To...)},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charsetUTF8)},
				Body:    body,
			},
		},
	}, nil
}
