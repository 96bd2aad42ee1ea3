package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"fleet-service/internal/deadline"
	"fleet-service/internal/mailer"
	"fleet-service/internal/metrics"
	"fleet-service/internal/repository"
)

// Sender delivers a rendered digest; *mailer.SMTPMailer implements it.
type Sender interface {
	Send(ctx context.Context, digest mailer.Digest) error
}

type NotificationService struct {
	store       VehicleStore
	engine      *deadline.Engine
	sender      Sender
	horizonDays int
	log         zerolog.Logger
	now         func() time.Time
}

// NewNotificationService builds the digest use case. sender may be nil, in
// which case digests can be previewed but not sent.
func NewNotificationService(
	store VehicleStore,
	engine *deadline.Engine,
	sender Sender,
	horizonDays int,
	log zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		store:       store,
		engine:      engine,
		sender:      sender,
		horizonDays: horizonDays,
		log:         log,
		now:         time.Now,
	}
}

type DigestResult struct {
	Sent       bool   `json:"sent"`
	EventCount int    `json:"event_count"`
	Subject    string `json:"subject,omitempty"`
}

// Preview builds the digest for today without sending it. A nil horizon
// selects the configured one.
func (s *NotificationService) Preview(ctx context.Context, horizonDays *int) (*mailer.Digest, error) {
	h := s.horizonDays
	if horizonDays != nil {
		h = *horizonDays
	}
	digest, err := s.Build(ctx, deadline.Today(s.now()), h)
	if err != nil {
		return nil, err
	}
	return &digest, nil
}

// Run builds today's digest with the configured horizon and delivers it.
func (s *NotificationService) Run(ctx context.Context) (*DigestResult, error) {
	digest, err := s.Build(ctx, deadline.Today(s.now()), s.horizonDays)
	if err != nil {
		metrics.DigestRunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	return s.Deliver(ctx, digest)
}

// Build selects every event due on or before today+horizonDays.
func (s *NotificationService) Build(ctx context.Context, today deadline.Date, horizonDays int) (mailer.Digest, error) {
	vehicles, err := s.store.List(ctx, repository.VehicleFilter{})
	if err != nil {
		return mailer.Digest{}, err
	}
	due, err := s.engine.SelectDue(vehicles, today, horizonDays)
	if err != nil {
		if errors.Is(err, deadline.ErrNegativeHorizon) {
			return mailer.Digest{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return mailer.Digest{}, err
	}
	return mailer.NewDigest(today, horizonDays, due), nil
}

// Deliver sends the digest when anything is due. Failed deliveries are
// logged and reported, never retried.
func (s *NotificationService) Deliver(ctx context.Context, digest mailer.Digest) (*DigestResult, error) {
	metrics.DigestEvents.Set(float64(digest.EventCount))

	if digest.EventCount == 0 {
		s.log.Info().Str("target_date", digest.TargetDate.String()).Msg("no upcoming or due events, digest skipped")
		metrics.DigestRunsTotal.WithLabelValues("skipped").Inc()
		return &DigestResult{}, nil
	}

	if s.sender == nil {
		s.log.Warn().Int("events", digest.EventCount).Msg("digest not sent, mail delivery is not configured")
		metrics.DigestRunsTotal.WithLabelValues("skipped").Inc()
		return nil, ErrMailerDisabled
	}

	if err := s.sender.Send(ctx, digest); err != nil {
		s.log.Error().Err(err).Int("events", digest.EventCount).Msg("failed to send digest")
		metrics.DigestRunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	s.log.Info().
		Int("events", digest.EventCount).
		Int("vehicles", len(digest.Vehicles)).
		Str("target_date", digest.TargetDate.String()).
		Msg("digest sent")
	metrics.DigestRunsTotal.WithLabelValues("sent").Inc()

	return &DigestResult{Sent: true, EventCount: digest.EventCount, Subject: digest.Subject()}, nil
}
