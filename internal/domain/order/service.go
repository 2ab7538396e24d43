// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// Notifier sends the order confirmation to the customer
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, data email.OrderConfirmationData) error
}

// Publisher emits order events to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// Service handles order fulfillment and order queries
type Service struct {
	db        *gorm.DB
	notifier  Notifier
	publisher Publisher
	logger    *logrus.Logger
	checkout  config.CheckoutConfig
	newID     func() (string, error)
}

// NewService creates a new order service
func NewService(db *gorm.DB, notifier Notifier, publisher Publisher, cfg config.CheckoutConfig, logger *logrus.Logger) *Service {
	if cfg.OrderIDPrefix == "" {
		cfg.OrderIDPrefix = "ORDER-"
	}
	return &Service{
		db:        db,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		checkout:  cfg,
		newID:     func() (string, error) { return randomCustomerFacingID(cfg.OrderIDPrefix) },
	}
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=20"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetBySessionID returns the order created for a checkout session
func (s *Service) GetBySessionID(ctx context.Context, sessionID string) (*Order, error) {
	const op = "order.get_by_session"
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperror.New(apperror.KindInvalidRequest, op, "session id is required")
	}
	return s.first(ctx, op, "gateway_session_id = ?", sessionID)
}

// GetByCustomerFacingID returns an order by the id shown to customers
func (s *Service) GetByCustomerFacingID(ctx context.Context, id string) (*Order, error) {
	const op = "order.get_by_customer_facing_id"
	if strings.TrimSpace(id) == "" {
		return nil, apperror.New(apperror.KindInvalidRequest, op, "order id is required")
	}
	return s.first(ctx, op, "customer_facing_id = ?", id)
}

func (s *Service) first(ctx context.Context, op, query string, arg interface{}) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).Preload("Items").Where(query, arg).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, op, "order not found")
		}
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}
	return &order, nil
}

// ListByOwner returns the owner's orders, newest first
func (s *Service) ListByOwner(ctx context.Context, ownerID uint, req *OrderListRequest) (*OrderResponse, error) {
	const op = "order.list_by_owner"

	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	owned := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&Order{}).Where("owner_id = ?", ownerID)
	}

	var total int64
	if err := owned().Count(&total).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	if err := owned().Preload("Items").Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, op, err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &OrderResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}
