// internal/domain/payment/stripe_service.go
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// StripeService talks to Stripe with an explicitly constructed client.
// The package-level stripe.Key is never set.
type StripeService struct {
	api           *client.API
	webhookSecret string
	breaker       *gobreaker.CircuitBreaker[any]
	logger        *logrus.Logger
}

// NewStripeService creates a Stripe gateway from configuration
func NewStripeService(cfg config.StripeConfig, logger *logrus.Logger) *StripeService {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	api := client.New(cfg.SecretKey, stripe.NewBackends(httpClient))
	return newStripeService(api, cfg, logger)
}

func newStripeService(api *client.API, cfg config.StripeConfig, logger *logrus.Logger) *StripeService {
	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Payment gateway circuit breaker changed state")
		},
		// Client errors say nothing about gateway health
		IsSuccessful: func(err error) bool {
			var stripeErr *stripe.Error
			if errors.As(err, &stripeErr) {
				return stripeErr.HTTPStatusCode > 0 && stripeErr.HTTPStatusCode < 500 && stripeErr.HTTPStatusCode != http.StatusTooManyRequests
			}
			return err == nil
		},
	})

	return &StripeService{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		breaker:       breaker,
		logger:        logger,
	}
}

// FindCustomerByEmail returns the first customer with the email, or nil
func (s *StripeService) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		params := &stripe.CustomerListParams{Email: stripe.String(email)}
		params.Context = ctx
		params.Limit = stripe.Int64(1)

		iter := s.api.Customers.List(params)
		if iter.Next() {
			c := iter.Customer()
			return &Customer{ID: c.ID, Email: c.Email}, nil
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
		return (*Customer)(nil), nil
	})
	if err != nil {
		return nil, gatewayError("payment.find_customer", err)
	}
	return result.(*Customer), nil
}

// CreateCustomer creates a tax-exempt customer seeded with the delivery address
func (s *StripeService) CreateCustomer(ctx context.Context, in NewCustomer) (*Customer, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		params := &stripe.CustomerParams{
			Email:     stripe.String(in.Email),
			TaxExempt: stripe.String(string(stripe.CustomerTaxExemptExempt)),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(in.Address.Line1),
				Line2:      stripe.String(in.Address.Line2),
				City:       stripe.String(in.Address.City),
				State:      stripe.String(in.Address.State),
				PostalCode: stripe.String(in.Address.PostalCode),
				Country:    stripe.String(in.Address.Country),
			},
		}
		if in.Name != "" {
			params.Name = stripe.String(in.Name)
		}
		params.Context = ctx

		c, err := s.api.Customers.New(params)
		if err != nil {
			return nil, err
		}
		return &Customer{ID: c.ID, Email: c.Email}, nil
	})
	if err != nil {
		return nil, gatewayError("payment.create_customer", err)
	}

	customer := result.(*Customer)
	s.logger.WithField("customer_id", customer.ID).Info("Created payment gateway customer")
	return customer, nil
}

// CreateCheckoutSession opens a hosted payment-mode checkout session
func (s *StripeService) CreateCheckoutSession(ctx context.Context, in SessionParams) (*Session, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.LineItems))
		for _, item := range in.LineItems {
			lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
				Price:    stripe.String(item.PriceReference),
				Quantity: stripe.Int64(item.Quantity),
			})
		}

		params := &stripe.CheckoutSessionParams{
			Customer:            stripe.String(in.CustomerID),
			LineItems:           lineItems,
			Mode:                stripe.String(string(stripe.CheckoutSessionModePayment)),
			SuccessURL:          stripe.String(in.SuccessURL),
			CancelURL:           stripe.String(in.CancelURL),
			AllowPromotionCodes: stripe.Bool(true),
		}
		if in.ShippingRate != "" {
			params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{
				{ShippingRate: stripe.String(in.ShippingRate)},
			}
		}
		for k, v := range in.Metadata {
			params.AddMetadata(k, v)
		}
		params.Context = ctx

		sess, err := s.api.CheckoutSessions.New(params)
		if err != nil {
			return nil, err
		}
		return &Session{ID: sess.ID, URL: sess.URL}, nil
	})
	if err != nil {
		return nil, gatewayError("payment.create_session", err)
	}
	return result.(*Session), nil
}

// VerifyEvent checks the Stripe-Signature header against the webhook secret and decodes the event
func (s *StripeService) VerifyEvent(payload []byte, signatureHeader string) (*Event, error) {
	return verifyEvent(payload, signatureHeader, s.webhookSecret)
}

func verifyEvent(payload []byte, signatureHeader, secret string) (*Event, error) {
	const op = "payment.verify_event"

	if secret == "" {
		return nil, apperror.New(apperror.KindInvalidSignature, op, "webhook secret is not configured")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, apperror.Wrapf(apperror.KindInvalidSignature, op, err, "webhook signature verification failed")
	}

	out := &Event{
		ID:   event.ID,
		Type: string(event.Type),
		Raw:  payload,
	}

	if out.Type != EventCheckoutSessionCompleted {
		return out, nil
	}
	if event.Data == nil {
		return nil, apperror.New(apperror.KindInvalidRequest, op, "event carries no data")
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, apperror.Wrapf(apperror.KindInvalidRequest, op, err, "failed to decode checkout session")
	}
	out.Session = completedSessionFrom(&sess)
	return out, nil
}

func completedSessionFrom(sess *stripe.CheckoutSession) *CompletedSession {
	out := &CompletedSession{
		ID:          sess.ID,
		AmountTotal: sess.AmountTotal,
		Currency:    string(sess.Currency),
		Metadata:    sess.Metadata,
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	if d := sess.CustomerDetails; d != nil {
		out.CustomerEmail = d.Email
		out.CustomerName = d.Name
		out.CustomerPhone = d.Phone
		if a := d.Address; a != nil {
			out.Address = Address{
				Line1:      a.Line1,
				Line2:      a.Line2,
				City:       a.City,
				State:      a.State,
				PostalCode: a.PostalCode,
				Country:    a.Country,
			}
		}
	}
	return out
}

func gatewayError(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperror.Wrapf(apperror.KindGatewayUnavailable, op, err, "payment provider is temporarily unavailable")
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 500 {
		return apperror.Wrapf(apperror.KindInvalidRequest, op, err, "payment provider rejected the request: %s", stripeErr.Msg)
	}
	return apperror.Wrap(apperror.KindGatewayUnavailable, op, fmt.Errorf("payment provider call failed: %w", err))
}
