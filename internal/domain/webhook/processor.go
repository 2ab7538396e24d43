// internal/domain/webhook/processor.go
package webhook

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// Verifier authenticates and decodes a raw gateway webhook
type Verifier interface {
	VerifyEvent(payload []byte, signatureHeader string) (*payment.Event, error)
}

// Fulfiller turns a completed session into an order
type Fulfiller interface {
	Fulfill(ctx context.Context, session *payment.CompletedSession, raw []byte) (*order.Result, error)
}

// Outcome describes how an event was handled
type Outcome struct {
	EventID            string
	EventType          string
	Duplicate          bool
	Ignored            bool
	NotificationFailed bool
	Result             *order.Result
}

// Processor verifies gateway events and dispatches completed checkouts to fulfillment
type Processor struct {
	verifier  Verifier
	fulfiller Fulfiller
	ledger    Ledger
	logger    *logrus.Logger
}

// NewProcessor creates a new webhook processor
func NewProcessor(verifier Verifier, fulfiller Fulfiller, ledger Ledger, logger *logrus.Logger) *Processor {
	return &Processor{
		verifier:  verifier,
		fulfiller: fulfiller,
		ledger:    ledger,
		logger:    logger,
	}
}

// Handle processes one webhook delivery. UnhandledEventType and
// DuplicateFulfillment errors mean the event should be acknowledged.
func (p *Processor) Handle(ctx context.Context, raw []byte, signatureHeader string) (*Outcome, error) {
	const op = "webhook.handle"

	event, err := p.verifier.VerifyEvent(raw, signatureHeader)
	if err != nil {
		if !errors.As(err, new(*apperror.Error)) {
			err = apperror.Wrap(apperror.KindInvalidSignature, op, err)
		}
		p.logger.WithError(err).Warn("Rejected webhook with invalid signature")
		return nil, err
	}

	outcome := &Outcome{EventID: event.ID, EventType: event.Type}
	log := p.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	seen, err := p.ledger.Seen(ctx, event.ID)
	if err != nil {
		// The unique session index still guards against double fulfillment
		log.WithError(err).Warn("Processed-event ledger unavailable")
	}
	if seen {
		log.Info("Skipping already processed event")
		outcome.Duplicate = true
		return outcome, apperror.New(apperror.KindDuplicateFulfillment, op, "event already processed")
	}

	if event.Type != payment.EventCheckoutSessionCompleted {
		log.Warn("Ignoring unhandled webhook event type")
		outcome.Ignored = true
		return outcome, apperror.New(apperror.KindUnhandledEventType, op, "unhandled event type "+event.Type)
	}

	if event.Session == nil || event.Session.Metadata["cart_id"] == "" {
		log.Error("Completed session carries no cart_id")
		return outcome, apperror.New(apperror.KindMissingCorrelation, op, "session metadata has no cart_id")
	}

	log = log.WithFields(logrus.Fields{
		"session_id": event.Session.ID,
		"cart_id":    event.Session.Metadata["cart_id"],
	})

	result, err := p.fulfiller.Fulfill(ctx, event.Session, event.Raw)
	outcome.Result = result
	if err != nil {
		if apperror.IsKind(err, apperror.KindDuplicateFulfillment) {
			outcome.Duplicate = true
			p.mark(ctx, log, event.ID)
			log.Info("Order already exists for session")
			return outcome, err
		}
		log.WithError(err).Error("Fulfillment failed")
		return outcome, err
	}

	outcome.NotificationFailed = result.NotificationErr != nil
	p.mark(ctx, log, event.ID)
	log.WithField("state", result.State).Info("Webhook processed")
	return outcome, nil
}

func (p *Processor) mark(ctx context.Context, log *logrus.Entry, eventID string) {
	if err := p.ledger.Mark(ctx, eventID); err != nil {
		log.WithError(err).Warn("Failed to record processed event")
	}
}
