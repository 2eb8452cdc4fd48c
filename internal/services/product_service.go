package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"acp_checkout_echo/internal/models"
)

// ErrProductNotFound is returned by Get for ids not in the catalog.
var ErrProductNotFound = errors.New("product not found")

const (
	defaultProductPageSize = 50
	maxProductPageSize     = 100
)

// ProductFilter narrows the catalog listing. Nil pointer fields are
// "not filtered".
type ProductFilter struct {
	Available *bool
	MaxPrice  *float64
	Query     string
	Limit     int
	Offset    int
}

// ProductService is the read-only catalog layer. Prices served from here
// are the only amounts the checkout service trusts.
type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// List returns catalog rows matching the filter, title-ordered.
func (s *ProductService) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultProductPageSize
	}
	if limit > maxProductPageSize {
		limit = maxProductPageSize
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Model(&models.Product{})
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Query != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+filter.Query+"%")
	}

	var products []models.Product
	if err := query.Order("title").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Get returns a single product by id.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// priceLookup builds the pricing capability over the given handle, so it
// can run against either the pooled connection or an open transaction.
func priceLookup(db *gorm.DB) PriceLookup {
	return func(productID string) (float64, error) {
		var product models.Product
		if err := db.Select("price").First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrUnknownProduct
			}
			return 0, err
		}
		return product.Price, nil
	}
}
