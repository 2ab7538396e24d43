// internal/domain/order/events.go
package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventTypeOrderCreated is published once per fulfilled order
const EventTypeOrderCreated = "order.created"

// OrderCreatedEvent is the envelope published after fulfillment
type OrderCreatedEvent struct {
	EventID          string           `json:"event_id"`
	Type             string           `json:"type"`
	OccurredAt       time.Time        `json:"occurred_at"`
	OrderID          uint             `json:"order_id"`
	CustomerFacingID string           `json:"customer_facing_id"`
	CartID           string           `json:"cart_id"`
	OwnerID          *uint            `json:"owner_id,omitempty"`
	TotalPrice       int64            `json:"total_price"`
	ShippingFee      int64            `json:"shipping_fee"`
	Currency         string           `json:"currency"`
	Items            []OrderEventItem `json:"items"`
}

// OrderEventItem is one line of an order event
type OrderEventItem struct {
	ProductID uint  `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}

func newOrderCreatedEvent(o *Order) OrderCreatedEvent {
	items := make([]OrderEventItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return OrderCreatedEvent{
		EventID:          uuid.NewString(),
		Type:             EventTypeOrderCreated,
		OccurredAt:       time.Now().UTC(),
		OrderID:          o.ID,
		CustomerFacingID: o.CustomerFacingID,
		CartID:           o.CartID,
		OwnerID:          o.OwnerID,
		TotalPrice:       o.TotalPrice,
		ShippingFee:      o.ShippingFee,
		Currency:         o.Currency,
		Items:            items,
	}
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return nil
}
