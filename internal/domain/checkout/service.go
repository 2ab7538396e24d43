// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
)

// Metadata keys written onto every checkout session. Fulfillment reads them back.
const (
	MetaCartID         = "cart_id"
	MetaUserID         = "user_id"
	MetaAuthenticated  = "authenticated"
	MetaShippingMethod = "shipping_method"
	MetaShippingFee    = "shipping_fee"
	MetaComment        = "comment"
)

// Gateway limits on session metadata
const (
	maxMetadataKeys     = 50
	maxMetadataKeyLen   = 40
	maxMetadataValueLen = 500
)

// Gateway is the payment gateway surface the builder needs
type Gateway interface {
	FindCustomerByEmail(ctx context.Context, email string) (*payment.Customer, error)
	CreateCustomer(ctx context.Context, in payment.NewCustomer) (*payment.Customer, error)
	CreateCheckoutSession(ctx context.Context, in payment.SessionParams) (*payment.Session, error)
}

// PriceCatalog resolves gateway price references for products
type PriceCatalog interface {
	LookupPriceReferences(ctx context.Context, ids []uint) (map[uint]string, error)
}

// Service builds hosted checkout sessions. It persists nothing locally.
type Service struct {
	gateway       Gateway
	catalog       PriceCatalog
	defaultOrigin string
	logger        *logrus.Logger
}

// NewService creates a new checkout service
func NewService(gateway Gateway, catalog PriceCatalog, defaultOrigin string, logger *logrus.Logger) *Service {
	return &Service{
		gateway:       gateway,
		catalog:       catalog,
		defaultOrigin: strings.TrimRight(defaultOrigin, "/"),
		logger:        logger,
	}
}

// CheckoutItem is one line the customer is paying for
type CheckoutItem struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int64 `json:"quantity" binding:"required,min=1"`
}

// DeliveryOptions is the delivery address and fee chosen at checkout
type DeliveryOptions struct {
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	PostalCode   string `json:"postal_code" binding:"required"`
	State        string `json:"state"`
	Country      string `json:"country" binding:"required,len=2"`
	ShippingFee  int64  `json:"shipping_fee" binding:"min=0"` // In cents
}

// CustomerInfo identifies the paying customer
type CustomerInfo struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// SessionRequest represents a checkout session request
type SessionRequest struct {
	CheckoutItems   []CheckoutItem    `json:"checkout_items" binding:"required,min=1,dive"`
	ShippingRate    string            `json:"shipping_rate"`
	DeliveryOptions DeliveryOptions   `json:"delivery_options" binding:"required"`
	UserMetadata    CustomerInfo      `json:"user_metadata" binding:"required"`
	OrderMetadata   map[string]string `json:"order_metadata"`
}

// SessionResult is returned to the client for the redirect
type SessionResult struct {
	URL             string          `json:"url"`
	SessionID       string          `json:"session_id"`
	DeliveryOptions DeliveryOptions `json:"delivery_options"`
}

// CreateSession opens a payment session for the cart. Any item without a
// resolvable price fails the whole build.
func (s *Service) CreateSession(ctx context.Context, cartID string, ownerID *uint, req *SessionRequest, origin string) (*SessionResult, error) {
	const op = "checkout.create_session"

	if cartID == "" {
		return nil, apperror.New(apperror.KindInvalidIdentity, op, "cart identifier is required")
	}
	if len(req.CheckoutItems) == 0 {
		return nil, apperror.New(apperror.KindInvalidRequest, op, "no items to check out")
	}

	metadata, err := buildMetadata(cartID, ownerID, req)
	if err != nil {
		return nil, err
	}

	lineItems, err := s.resolveLineItems(ctx, req.CheckoutItems)
	if err != nil {
		return nil, err
	}

	customer, err := s.findOrCreateCustomer(ctx, req.UserMetadata, req.DeliveryOptions)
	if err != nil {
		return nil, err
	}

	origin = strings.TrimRight(origin, "/")
	if origin == "" {
		origin = s.defaultOrigin
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionParams{
		CustomerID:   customer.ID,
		LineItems:    lineItems,
		ShippingRate: req.ShippingRate,
		SuccessURL:   origin + "/checkout_result?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:    origin + "/cart",
		Metadata:     metadata,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cart_id":    cartID,
		"session_id": session.ID,
		"lines":      len(lineItems),
	}).Info("Checkout session created")

	return &SessionResult{
		URL:             session.URL,
		SessionID:       session.ID,
		DeliveryOptions: req.DeliveryOptions,
	}, nil
}

func (s *Service) resolveLineItems(ctx context.Context, items []CheckoutItem) ([]payment.LineItem, error) {
	const op = "checkout.resolve_prices"

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, apperror.New(apperror.KindInvalidRequest, op, "quantity must be at least 1")
		}
		ids = append(ids, item.ProductID)
	}

	refs, err := s.catalog.LookupPriceReferences(ctx, ids)
	if err != nil {
		return nil, err
	}

	var missing []string
	lineItems := make([]payment.LineItem, 0, len(items))
	for _, item := range items {
		ref := refs[item.ProductID]
		if ref == "" {
			missing = append(missing, strconv.FormatUint(uint64(item.ProductID), 10))
			continue
		}
		lineItems = append(lineItems, payment.LineItem{PriceReference: ref, Quantity: item.Quantity})
	}
	if len(missing) > 0 {
		return nil, apperror.New(apperror.KindPriceResolutionFailed, op,
			fmt.Sprintf("no price available for products: %s", strings.Join(missing, ", ")))
	}
	return lineItems, nil
}

func (s *Service) findOrCreateCustomer(ctx context.Context, info CustomerInfo, delivery DeliveryOptions) (*payment.Customer, error) {
	existing, err := s.gateway.FindCustomerByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	return s.gateway.CreateCustomer(ctx, payment.NewCustomer{
		Email: info.Email,
		Name:  info.Name,
		Address: payment.Address{
			Line1:      delivery.AddressLine1,
			Line2:      delivery.AddressLine2,
			City:       delivery.City,
			State:      delivery.State,
			PostalCode: delivery.PostalCode,
			Country:    delivery.Country,
		},
	})
}

// buildMetadata merges caller metadata with the correlation keys. Server-side
// keys always win over caller-supplied values.
func buildMetadata(cartID string, ownerID *uint, req *SessionRequest) (map[string]string, error) {
	const op = "checkout.metadata"

	metadata := make(map[string]string, len(req.OrderMetadata)+4)
	for k, v := range req.OrderMetadata {
		metadata[k] = v
	}

	metadata[MetaCartID] = cartID
	metadata[MetaShippingFee] = strconv.FormatInt(req.DeliveryOptions.ShippingFee, 10)
	if ownerID != nil {
		metadata[MetaUserID] = strconv.FormatUint(uint64(*ownerID), 10)
		metadata[MetaAuthenticated] = "true"
	} else {
		delete(metadata, MetaUserID)
		metadata[MetaAuthenticated] = "false"
	}

	if len(metadata) > maxMetadataKeys {
		return nil, apperror.New(apperror.KindInvalidRequest, op, "too many order metadata entries")
	}
	for k, v := range metadata {
		if len(k) > maxMetadataKeyLen || len(v) > maxMetadataValueLen {
			return nil, apperror.New(apperror.KindInvalidRequest, op, fmt.Sprintf("order metadata entry %q is too long", k))
		}
	}
	return metadata, nil
}
