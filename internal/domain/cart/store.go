// internal/domain/cart/store.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when no cart matches the lookup
	ErrNotFound = errors.New("cart not found")
	// ErrConflict is returned when an insert loses a uniqueness race
	ErrConflict = errors.New("cart already exists")
)

// Store persists carts and cart items
type Store interface {
	FindActiveByOwner(ctx context.Context, ownerID uint) (*Cart, error)
	FindByID(ctx context.Context, id string) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	ListActiveItems(ctx context.Context, cartID string) ([]ActiveItem, error)
	AddItemQuantity(ctx context.Context, cartID string, productID uint, delta int) error
	SetItemQuantity(ctx context.Context, cartID string, productID uint, quantity int) (bool, error)
	TransitionStatus(ctx context.Context, cartID string, from, to Status) (bool, error)
	Transaction(ctx context.Context, fn func(Store) error) error
}

// GormStore is the gorm-backed Store
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a cart store over db. db may be a transaction handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// FindActiveByOwner returns the owner's active cart
func (s *GormStore) FindActiveByOwner(ctx context.Context, ownerID uint) (*Cart, error) {
	var c Cart
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, StatusActive).
		First(&c).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active cart for owner %d: %w", ownerID, err)
	}
	return &c, nil
}

// FindByID returns the cart with the given id in any status
func (s *GormStore) FindByID(ctx context.Context, id string) (*Cart, error) {
	var c Cart
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cart %s: %w", id, err)
	}
	return &c, nil
}

// Create inserts a new cart
func (s *GormStore) Create(ctx context.Context, c *Cart) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// ListActiveItems returns the cart's active lines with current catalog prices.
// A cart that is not active has no active items.
func (s *GormStore) ListActiveItems(ctx context.Context, cartID string) ([]ActiveItem, error) {
	var items []ActiveItem
	err := s.db.WithContext(ctx).
		Table("cart_items AS ci").
		Select("ci.product_id, p.name, p.image, p.includes, ci.quantity, p.price AS unit_price, p.price_reference").
		Joins("JOIN carts c ON c.id = ci.cart_id").
		Joins("JOIN products p ON p.id = ci.product_id").
		Where("ci.cart_id = ? AND ci.quantity > 0 AND c.status = ?", cartID, StatusActive).
		Order("ci.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

// AddItemQuantity adds delta to the line for productID, creating it if needed
func (s *GormStore) AddItemQuantity(ctx context.Context, cartID string, productID uint, delta int) error {
	item := CartItem{CartID: cartID, ProductID: productID, Quantity: delta}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// SetItemQuantity overwrites the quantity of an existing line.
// It reports false when the cart has no line for productID.
func (s *GormStore) SetItemQuantity(ctx context.Context, cartID string, productID uint, quantity int) (bool, error) {
	result := s.db.WithContext(ctx).Model(&CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Updates(map[string]interface{}{
			"quantity":   quantity,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// TransitionStatus moves the cart from one status to another.
// It reports false when the cart was not in the from status.
func (s *GormStore) TransitionStatus(ctx context.Context, cartID string, from, to Status) (bool, error) {
	result := s.db.WithContext(ctx).Model(&Cart{}).
		Where("id = ? AND status = ?", cartID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to move cart %s to %s: %w", cartID, to, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Transaction runs fn against a store bound to a single database transaction
func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}
