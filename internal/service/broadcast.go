package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mailcast/mailcast/internal/directory"
	"github.com/mailcast/mailcast/internal/logutil"
	"github.com/mailcast/mailcast/internal/mailer"
	"github.com/mailcast/mailcast/internal/metrics"
	"github.com/mailcast/mailcast/internal/model"
)

// DefaultSendTimeout bounds one transport call when none is configured.
const DefaultSendTimeout = 30 * time.Second

// BroadcastService sends one message to every subscriber of a tenant.
type BroadcastService struct {
	tenants     *directory.TenantDirectory
	sender      mailer.Sender
	sendTimeout time.Duration
	logger      *slog.Logger
	metrics     metrics.Recorder
}

// NewBroadcastService creates a new BroadcastService.
func NewBroadcastService(tenants *directory.TenantDirectory, sender mailer.Sender, sendTimeout time.Duration, logger *slog.Logger, recorder metrics.Recorder) *BroadcastService {
	if sendTimeout <= 0 {
		sendTimeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BroadcastService{
		tenants:     tenants,
		sender:      sender,
		sendTimeout: sendTimeout,
		logger:      logger,
		metrics:     recorder,
	}
}

// Send dispatches b to the tenant's current subscribers. With no
// subscribers it reports Sent=false and never touches the transport.
// The directory lock is not held while the transport runs.
func (s *BroadcastService) Send(ctx context.Context, key model.APIKey, b model.Broadcast) (*model.DispatchResult, error) {
	tenant, err := s.tenants.Get(key)
	if err != nil && !errors.Is(err, directory.ErrTenantNotFound) {
		return nil, fmt.Errorf("load tenant: %w", err)
	}
	if err != nil || tenant.SubscriberCount() == 0 {
		s.metrics.IncBroadcast(metrics.BroadcastSkipped)
		return &model.DispatchResult{Message: MessageNoRecipients}, nil
	}

	id := ulid.Make().String()
	log := s.logger.With(
		"broadcast_id", id,
		"tenant", logutil.RedactKey(key),
		"sender", logutil.RedactEmail(tenant.SenderEmail),
		"recipients", tenant.SubscriberCount(),
		"transport", s.sender.Name(),
	)

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	start := time.Now()
	err = s.sender.SendBulk(sendCtx, mailer.Message{
		From:       tenant.SenderEmail,
		Credential: tenant.SenderCredential,
		To:         tenant.Subscribers,
		Subject:    b.Subject,
		HTML:       b.BodyHTML,
		Text:       b.BodyText,
	})
	s.metrics.ObserveSendDuration(time.Since(start))

	if err != nil {
		s.metrics.IncBroadcast(metrics.BroadcastFailed)
		log.Warn("broadcast failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	s.metrics.IncBroadcast(metrics.BroadcastSent)
	s.metrics.ObserveRecipients(tenant.SubscriberCount())
	log.Info("broadcast sent", "duration_ms", time.Since(start).Milliseconds())

	return &model.DispatchResult{
		ID:         id,
		Sent:       true,
		Recipients: tenant.SubscriberCount(),
		Transport:  s.sender.Name(),
		Message:    MessageBroadcastSent,
	}, nil
}
