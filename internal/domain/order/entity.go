// internal/domain/order/entity.go
package order

import (
	"time"
)

// Order is the durable record of a paid checkout session. It is never mutated after creation.
type Order struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	CustomerFacingID string `gorm:"uniqueIndex;not null;size:32" json:"customer_facing_id"`
	GatewaySessionID string `gorm:"uniqueIndex;not null;size:255" json:"gateway_session_id"`
	OwnerID          *uint  `gorm:"index" json:"owner_id"` // Nullable for guest orders
	CustomerEmail    string `gorm:"size:255" json:"customer_email"`
	CustomerName     string `gorm:"size:255" json:"customer_name"`

	// Financial Information, in cents
	TotalPrice  int64  `gorm:"not null" json:"total_price"`
	ShippingFee int64  `gorm:"default:0" json:"shipping_fee"`
	Currency    string `gorm:"size:3;default:'usd'" json:"currency"`

	DeliveryAddress Address `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery_address"`

	ShippingMethod string `gorm:"size:100" json:"shipping_method"`
	Comment        string `gorm:"type:text" json:"comment"`
	CartID         string `gorm:"size:64;not null;index" json:"cart_id"`

	// Full gateway event payload for audit and replay
	RawGatewayEvent string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem is a snapshot of one active cart line at fulfillment time
type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	Name      string    `gorm:"size:255" json:"name"`
	Includes  string    `gorm:"size:500" json:"includes,omitempty"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"` // Price per unit in cents
	Price     int64     `gorm:"not null" json:"price"`      // Quantity * UnitPrice
	CreatedAt time.Time `json:"created_at"`
}

// Address is the delivery address reported by the payment gateway
type Address struct {
	Line1      string `gorm:"size:255" json:"line1"`
	Line2      string `gorm:"size:255" json:"line2"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:100" json:"state"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
	Country    string `gorm:"size:2" json:"country"`
	Phone      string `gorm:"size:32" json:"phone"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// Subtotal sums the item snapshot
func (o *Order) Subtotal() int64 {
	var sum int64
	for _, item := range o.Items {
		sum += item.Price
	}
	return sum
}
