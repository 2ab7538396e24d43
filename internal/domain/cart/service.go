// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// ProductLookup is the catalog view the cart needs
type ProductLookup interface {
	GetActiveProduct(ctx context.Context, id uint) (*product.Product, error)
}

// Service handles cart business logic
type Service struct {
	store    Store
	resolver *Resolver
	products ProductLookup
	logger   *logrus.Logger
}

// NewService creates a new cart service
func NewService(store Store, resolver *Resolver, products ProductLookup, logger *logrus.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		products: products,
		logger:   logger,
	}
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateItemRequest represents update cart item request
type UpdateItemRequest struct {
	Quantity    int  `json:"quantity" binding:"min=0"`
	DisableCart bool `json:"disable_cart"`
}

// ItemQuantity is one entry of a batch update
type ItemQuantity struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"min=0"`
}

// BatchUpdateRequest represents a batch quantity update
type BatchUpdateRequest struct {
	Items   []ItemQuantity `json:"items" binding:"required,min=1,dive"`
	Disable bool           `json:"disable"`
}

// Get resolves the identity's active cart and its active items
func (s *Service) Get(ctx context.Context, id Identity) (*CartView, error) {
	c, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// AddItem adds quantity of a product to the cart, reactivating a removed line
func (s *Service) AddItem(ctx context.Context, id Identity, req *AddItemRequest) (*CartView, error) {
	const op = "cart.add_item"

	if req.Quantity < 1 {
		return nil, apperror.New(apperror.KindInvalidRequest, op, "quantity must be at least 1")
	}
	if _, err := s.products.GetActiveProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	c, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.AddItemQuantity(ctx, c.ID, req.ProductID, req.Quantity); err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}

	s.logger.WithFields(logrus.Fields{
		"cart_id":    c.ID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	}).Debug("Added item to cart")

	return s.view(ctx, c)
}

// UpdateItem sets the quantity of a line. Quantity 0 removes it; with
// DisableCart the whole cart is cleared as well.
func (s *Service) UpdateItem(ctx context.Context, id Identity, productID uint, req *UpdateItemRequest) (*CartView, error) {
	const op = "cart.update_item"

	if req.Quantity < 0 {
		return nil, apperror.New(apperror.KindInvalidRequest, op, "quantity cannot be negative")
	}

	c, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	found, err := s.store.SetItemQuantity(ctx, c.ID, productID, req.Quantity)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}
	if !found {
		return nil, apperror.New(apperror.KindNotFound, op, "item not found in cart")
	}

	if req.DisableCart && req.Quantity == 0 {
		return s.clear(ctx, c)
	}
	return s.view(ctx, c)
}

// UpdateItems applies a batch of quantity updates in one transaction
func (s *Service) UpdateItems(ctx context.Context, id Identity, req *BatchUpdateRequest) (*CartView, error) {
	const op = "cart.update_items"

	if len(req.Items) == 0 {
		return nil, apperror.New(apperror.KindInvalidRequest, op, "no items to update")
	}

	allZero := true
	for _, item := range req.Items {
		if item.Quantity < 0 {
			return nil, apperror.New(apperror.KindInvalidRequest, op, "quantity cannot be negative")
		}
		if item.Quantity > 0 {
			allZero = false
		}
	}

	c, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(tx Store) error {
		for _, item := range req.Items {
			found, err := tx.SetItemQuantity(ctx, c.ID, item.ProductID, item.Quantity)
			if err != nil {
				return apperror.Wrap(apperror.KindStorageUnavailable, op, err)
			}
			if !found {
				return apperror.New(apperror.KindNotFound, op, "item not found in cart")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Disable && allZero {
		return s.clear(ctx, c)
	}
	return s.view(ctx, c)
}

// Clear marks the identity's active cart as cleared
func (s *Service) Clear(ctx context.Context, id Identity) (*CartView, error) {
	c, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.clear(ctx, c)
}

func (s *Service) clear(ctx context.Context, c *Cart) (*CartView, error) {
	const op = "cart.clear"

	moved, err := s.store.TransitionStatus(ctx, c.ID, StatusActive, StatusCleared)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}
	if !moved {
		return nil, apperror.New(apperror.KindInvalidRequest, op, "cart is no longer active")
	}

	s.logger.WithField("cart_id", c.ID).Info("Cart cleared")

	cleared := *c
	cleared.Status = StatusCleared
	return newCartView(&cleared, nil), nil
}

func (s *Service) view(ctx context.Context, c *Cart) (*CartView, error) {
	items, err := s.store.ListActiveItems(ctx, c.ID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, "cart.view", err)
	}
	return newCartView(c, items), nil
}

// Finalizer moves carts out of active once their order exists
type Finalizer struct {
	store Store
}

// NewFinalizer creates a finalizer over store
func NewFinalizer(store Store) *Finalizer {
	return &Finalizer{store: store}
}

// Finalize marks the cart purchased. Finalizing an already purchased cart is a no-op;
// a cart in any other terminal status is left untouched and reported.
func (f *Finalizer) Finalize(ctx context.Context, cartID string) error {
	const op = "cart.finalize"

	moved, err := f.store.TransitionStatus(ctx, cartID, StatusActive, StatusPurchased)
	if err != nil {
		return apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}
	if moved {
		return nil
	}

	c, err := f.store.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.New(apperror.KindNotFound, op, "cart not found")
		}
		return apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}
	switch {
	case c.Status == StatusPurchased:
		return nil
	case c.Status.IsTerminal():
		return apperror.Wrapf(apperror.KindInvalidRequest, op, nil, "cart is %s, not purchasable", c.Status)
	default:
		return apperror.New(apperror.KindStorageUnavailable, op, "cart changed state during finalization")
	}
}
