// internal/domain/cart/resolver.go
package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

const maxCartIDLength = 64

// Resolver finds or creates the single active cart for an identity
type Resolver struct {
	store  Store
	logger *logrus.Logger
	newID  func() string
}

// NewResolver creates a new cart resolver
func NewResolver(store Store, logger *logrus.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Resolve returns the active cart for the identity, creating one on a miss.
// An owner id takes precedence over a guest cart id.
func (r *Resolver) Resolve(ctx context.Context, id Identity) (*Cart, error) {
	const op = "cart.resolve"

	if id.IsZero() {
		return nil, apperror.New(apperror.KindInvalidIdentity, op, "no cart or user identifier provided")
	}

	if id.OwnerID != nil {
		return r.resolveOwner(ctx, *id.OwnerID)
	}

	if len(id.CartID) > maxCartIDLength {
		return nil, apperror.New(apperror.KindInvalidIdentity, op, "cart identifier is too long")
	}
	return r.resolveGuest(ctx, id.CartID)
}

func (r *Resolver) resolveOwner(ctx context.Context, ownerID uint) (*Cart, error) {
	const op = "cart.resolve"

	existing, err := r.store.FindActiveByOwner(ctx, ownerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}

	owner := ownerID
	created := &Cart{ID: r.newID(), OwnerID: &owner, Status: StatusActive}
	err = r.store.Create(ctx, created)
	if err == nil {
		r.logger.WithFields(logrus.Fields{"cart_id": created.ID, "owner_id": ownerID}).Info("Created cart for owner")
		return created, nil
	}
	if !errors.Is(err, ErrConflict) {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}

	// Lost the race against a concurrent resolve; the winner's cart is the one
	winner, err := r.store.FindActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}
	return winner, nil
}

func (r *Resolver) resolveGuest(ctx context.Context, cartID string) (*Cart, error) {
	const op = "cart.resolve"

	existing, err := r.store.FindByID(ctx, cartID)
	switch {
	case err == nil && existing.IsActive():
		return existing, nil
	case err == nil:
		// The id is taken by a finished cart, so the guest starts over under a new id
		return r.createGuest(ctx, r.newID())
	case errors.Is(err, ErrNotFound):
		return r.createGuest(ctx, cartID)
	default:
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}
}

func (r *Resolver) createGuest(ctx context.Context, cartID string) (*Cart, error) {
	const op = "cart.resolve"

	created := &Cart{ID: cartID, Status: StatusActive}
	err := r.store.Create(ctx, created)
	if err == nil {
		r.logger.WithField("cart_id", created.ID).Info("Created guest cart")
		return created, nil
	}
	if !errors.Is(err, ErrConflict) {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}

	winner, err := r.store.FindByID(ctx, cartID)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}
	if !winner.IsActive() {
		return nil, apperror.New(apperror.KindStorageUnavailable, op, "cart changed state while being created")
	}
	return winner, nil
}
