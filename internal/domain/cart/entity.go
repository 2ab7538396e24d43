// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Status is the lifecycle state of a cart. It is the only persisted activity flag.
type Status string

const (
	StatusActive    Status = "active"
	StatusPurchased Status = "purchased"
	StatusAbandoned Status = "abandoned"
	StatusCleared   Status = "cleared"
)

// IsTerminal reports whether the cart can no longer change
func (s Status) IsTerminal() bool {
	return s != StatusActive
}

// Cart is a shopping cart owned by a user or addressed by a guest cart id
type Cart struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	OwnerID   *uint     `gorm:"index" json:"owner_id,omitempty"`
	Status    Status    `gorm:"size:20;not null;default:'active';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// TableName overrides the table name
func (Cart) TableName() string {
	return "carts"
}

// IsActive is derived from Status
func (c *Cart) IsActive() bool {
	return c.Status == StatusActive
}

// CartItem is one product line in a cart. Quantity 0 marks a removed line;
// rows are never hard-deleted.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    string    `gorm:"size:64;not null;uniqueIndex:idx_cart_items_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// ActiveItem is an active cart line joined with its current catalog data
type ActiveItem struct {
	ProductID      uint   `json:"product_id"`
	Name           string `json:"name"`
	Image          string `json:"image,omitempty"`
	Includes       string `json:"includes,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPrice      int64  `json:"unit_price"`
	PriceReference string `json:"price_reference,omitempty"`
}

// LineTotal is quantity times the current unit price
func (i ActiveItem) LineTotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// Identity is the caller identity a cart is resolved for
type Identity struct {
	OwnerID *uint
	CartID  string
}

// IsZero reports whether neither identifier is present
func (id Identity) IsZero() bool {
	return id.OwnerID == nil && id.CartID == ""
}

// CartTotals represents calculated cart totals
type CartTotals struct {
	ItemCount     int   `json:"item_count"`     // Number of active lines
	TotalQuantity int   `json:"total_quantity"` // Sum of active quantities
	SubTotal      int64 `json:"sub_total"`
}

// CartView is a cart with its active items
type CartView struct {
	ID       string       `json:"id"`
	OwnerID  *uint        `json:"owner_id,omitempty"`
	Status   Status       `json:"status"`
	IsActive bool         `json:"is_active"`
	Items    []ActiveItem `json:"items"`
	Totals   CartTotals   `json:"totals"`
}

func newCartView(c *Cart, items []ActiveItem) *CartView {
	view := &CartView{
		ID:       c.ID,
		OwnerID:  c.OwnerID,
		Status:   c.Status,
		IsActive: c.IsActive(),
		Items:    items,
	}
	if view.Items == nil {
		view.Items = []ActiveItem{}
	}
	for _, item := range view.Items {
		view.Totals.ItemCount++
		view.Totals.TotalQuantity += item.Quantity
		view.Totals.SubTotal += item.LineTotal()
	}
	return view
}
