// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// Service exposes read-only catalog lookups
type Service struct {
	db *gorm.DB
}

// NewService creates a new product service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
	Search string `form:"search"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
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

// GetProducts lists active products with pagination
func (s *Service) GetProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	listed := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&Product{}).Where("is_active = ?", true)
		if req.Search != "" {
			query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+req.Search+"%")
		}
		return query
	}

	var total int64
	if err := listed().Count(&total).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, "product.list", err)
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	if err := listed().Order("id ASC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, "product.list", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductResponse{
		Products: products,
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

// GetActiveProduct retrieves a single active product by ID
func (s *Service) GetActiveProduct(ctx context.Context, id uint) (*Product, error) {
	var product Product
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindNotFound, "product.get", "product not found or inactive")
		}
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, "product.get", err)
	}
	return &product, nil
}

// LookupPriceReferences returns the payment gateway price id for each requested product.
// Products without a reference are absent from the result.
func (s *Service) LookupPriceReferences(ctx context.Context, ids []uint) (map[uint]string, error) {
	if len(ids) == 0 {
		return map[uint]string{}, nil
	}

	var rows []Product
	err := s.db.WithContext(ctx).
		Select("id", "price_reference").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, apperror.Wrap(apperror.KindStorageUnavailable, "product.price_references", fmt.Errorf("failed to load price references: %w", err))
	}

	refs := make(map[uint]string, len(rows))
	for _, row := range rows {
		if row.PriceReference != "" {
			refs[row.ID] = row.PriceReference
		}
	}
	return refs, nil
}
