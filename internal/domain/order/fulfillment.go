// internal/domain/order/fulfillment.go
package order

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/database"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// Session metadata keys written at checkout
const (
	metaCartID         = "cart_id"
	metaUserID         = "user_id"
	metaAuthenticated  = "authenticated"
	metaShippingMethod = "shipping_method"
	metaShippingFee    = "shipping_fee"
	metaComment        = "comment"
)

const (
	maxIDAttempts     = 5
	maxInsertAttempts = 3
)

// State is how far a fulfillment run got
type State string

const (
	StatePending          State = "pending"
	StateOrderCreated     State = "order_created"
	StateItemsSnapshotted State = "items_snapshotted"
	StateCartFinalized    State = "cart_finalized"
	StateNotified         State = "notified"
)

// Result reports the outcome of a fulfillment run
type Result struct {
	State           State
	Order           *Order
	Items           []OrderItem
	NotificationErr error
}

var errEmptyCart = errors.New("cart has no active items")

// Fulfill turns a completed checkout session into an order. Steps run in order:
// idempotency check, then order creation, item snapshot and cart finalization
// in one transaction, then notification. A notification failure is reported on
// the result and leaves the earlier steps in place.
func (s *Service) Fulfill(ctx context.Context, session *payment.CompletedSession, raw []byte) (*Result, error) {
	const op = "order.fulfill"
	result := &Result{State: StatePending}

	if session == nil || session.ID == "" {
		return result, apperror.New(apperror.KindInvalidRequest, op, "completed session is required")
	}
	cartID := session.Metadata[metaCartID]
	if cartID == "" {
		return result, apperror.New(apperror.KindMissingCorrelation, op, "session metadata has no cart_id")
	}

	log := s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"cart_id":    cartID,
	})

	existing, err := s.GetBySessionID(ctx, session.ID)
	switch {
	case err == nil:
		return duplicateResult(op, result, existing)
	case !apperror.IsKind(err, apperror.KindNotFound):
		return result, err
	}

	order := s.orderFromSession(session, raw, log)

	for attempt := 1; ; attempt++ {
		err = s.createOrder(ctx, order, cartID, result)
		if err == nil || !database.IsUniqueViolation(err) {
			break
		}
		// Only a taken session id means another delivery already fulfilled it
		if winner, lookupErr := s.GetBySessionID(ctx, session.ID); lookupErr == nil {
			log.WithError(err).Warn("Concurrent fulfillment won the insert race")
			return duplicateResult(op, result, winner)
		}
		if attempt == maxInsertAttempts {
			break
		}
		log.WithError(err).WithField("attempt", attempt).Warn("Order insert collided, retrying")
	}
	if err != nil {
		result.State = StatePending
		result.Order = nil
		result.Items = nil
		switch {
		case errors.Is(err, errEmptyCart):
			return result, apperror.Wrap(apperror.KindEmptyCartFulfillment, op, err)
		case database.IsUniqueViolation(err):
			log.WithError(err).Error("Order insert kept colliding")
			return result, apperror.Wrapf(apperror.KindStorageUnavailable, op, err, "order insert collided %d times", maxInsertAttempts)
		case errors.As(err, new(*apperror.Error)):
			return result, err
		default:
			return result, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
		}
	}

	result.Order = order
	result.Items = order.Items
	log = log.WithField("order_id", order.CustomerFacingID)
	log.WithField("state", result.State).Info("Order created")

	if err := s.notifier.SendOrderConfirmation(ctx, s.confirmationData(order)); err != nil {
		result.NotificationErr = apperror.Wrap(apperror.KindNotificationFailed, op, err)
		log.WithError(err).Error("Order confirmation failed")
	} else {
		result.State = StateNotified
	}

	if err := s.publisher.Publish(ctx, order.CustomerFacingID, newOrderCreatedEvent(order)); err != nil {
		log.WithError(err).Warn("Failed to publish order event")
	}

	log.WithField("state", result.State).Info("Fulfillment finished")
	return result, nil
}

// createOrder writes the order, snapshots the active cart lines and marks the
// cart purchased. Either all of it commits or none of it does.
func (s *Service) createOrder(ctx context.Context, order *Order, cartID string, result *Result) error {
	order.ID = 0
	order.Items = nil

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := s.uniqueCustomerFacingID(ctx, tx)
		if err != nil {
			return err
		}
		order.CustomerFacingID = id

		if err := tx.Create(order).Error; err != nil {
			return err
		}
		result.State = StateOrderCreated

		carts := cart.NewGormStore(tx)
		active, err := carts.ListActiveItems(ctx, cartID)
		if err != nil {
			return err
		}
		if len(active) == 0 {
			return errEmptyCart
		}

		items := make([]OrderItem, 0, len(active))
		for _, line := range active {
			items = append(items, OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Name:      line.Name,
				Includes:  line.Includes,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Price:     line.LineTotal(),
			})
		}
		if err := tx.CreateInBatches(&items, 100).Error; err != nil {
			return err
		}
		order.Items = items
		result.State = StateItemsSnapshotted

		if err := cart.NewFinalizer(carts).Finalize(ctx, cartID); err != nil {
			return err
		}
		result.State = StateCartFinalized
		return nil
	})
}

func duplicateResult(op string, result *Result, existing *Order) (*Result, error) {
	result.State = StateCartFinalized
	result.Order = existing
	result.Items = existing.Items
	return result, apperror.New(apperror.KindDuplicateFulfillment, op,
		fmt.Sprintf("order %s already exists for session", existing.CustomerFacingID))
}

func (s *Service) orderFromSession(session *payment.CompletedSession, raw []byte, log *logrus.Entry) *Order {
	meta := session.Metadata

	order := &Order{
		GatewaySessionID: session.ID,
		CustomerEmail:    session.CustomerEmail,
		CustomerName:     session.CustomerName,
		TotalPrice:       session.AmountTotal,
		Currency:         strings.ToLower(session.Currency),
		DeliveryAddress: Address{
			Line1:      session.Address.Line1,
			Line2:      session.Address.Line2,
			City:       session.Address.City,
			State:      session.Address.State,
			PostalCode: session.Address.PostalCode,
			Country:    session.Address.Country,
			Phone:      session.CustomerPhone,
		},
		ShippingMethod:  meta[metaShippingMethod],
		Comment:         meta[metaComment],
		CartID:          meta[metaCartID],
		RawGatewayEvent: string(raw),
	}
	if order.Currency == "" {
		order.Currency = "usd"
	}

	if meta[metaAuthenticated] == "true" {
		if id, err := strconv.ParseUint(meta[metaUserID], 10, 64); err == nil {
			owner := uint(id)
			order.OwnerID = &owner
		} else {
			log.WithField("user_id", meta[metaUserID]).Warn("Authenticated session carries an unreadable user id")
		}
	}

	fee, err := parseShippingFee(meta[metaShippingFee])
	if err != nil {
		log.WithError(err).Warn("Unreadable shipping fee, recording zero")
	}
	order.ShippingFee = fee

	return order
}

// parseShippingFee reads cents, or dollars when the value has a decimal point
func parseShippingFee(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	if strings.Contains(v, ".") {
		dollars, err := strconv.ParseFloat(v, 64)
		if err != nil || dollars < 0 {
			return 0, fmt.Errorf("invalid shipping fee %q", v)
		}
		return int64(math.Round(dollars * 100)), nil
	}
	cents, err := strconv.ParseInt(v, 10, 64)
	if err != nil || cents < 0 {
		return 0, fmt.Errorf("invalid shipping fee %q", v)
	}
	return cents, nil
}

func (s *Service) uniqueCustomerFacingID(ctx context.Context, tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return "", apperror.Wrap(apperror.KindInternal, "order.customer_facing_id", err)
		}

		var count int64
		if err := tx.WithContext(ctx).Model(&Order{}).Where("customer_facing_id = ?", id).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", apperror.New(apperror.KindInternal, "order.customer_facing_id",
		fmt.Sprintf("no free order id after %d attempts", maxIDAttempts))
}

func randomCustomerFacingID(prefix string) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return prefix + strings.ToUpper(hex.EncodeToString(b)), nil
}

func (s *Service) confirmationData(order *Order) email.OrderConfirmationData {
	lines := make([]email.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, email.OrderLine{
			Name:      item.Name,
			Includes:  item.Includes,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.Price,
		})
	}

	return email.OrderConfirmationData{
		StoreName:        s.checkout.StoreName,
		SupportEmail:     s.checkout.SupportEmail,
		CustomerEmail:    order.CustomerEmail,
		CustomerName:     order.CustomerName,
		CustomerFacingID: order.CustomerFacingID,
		Items:            lines,
		Subtotal:         order.Subtotal(),
		ShippingFee:      order.ShippingFee,
		Total:            order.TotalPrice,
	}
}
