package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/K-sous4/scarf-store/models"
	"github.com/K-sous4/scarf-store/repositories"
)

// ErrDuplicateSKU is returned when creating a product whose SKU is taken
var ErrDuplicateSKU = errors.New("sku already exists")

// ErrProductNotFound is returned for operations on a missing product
var ErrProductNotFound = errors.New("product not found")

// ErrInsufficientStock is returned when a removal exceeds the available stock
var ErrInsufficientStock = errors.New("insufficient available stock")

// ErrInvalidStockOperation is returned for an unrecognized stock operation
var ErrInvalidStockOperation = errors.New("invalid stock operation")

// Stock adjustment operations
const (
	StockAdd    = "add"
	StockRemove = "remove"
	StockSet    = "set"
)

// ProductService handles product management
type ProductService struct {
	products repositories.ProductRepository
}

// NewProductService creates a ProductService
func NewProductService(products repositories.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// Create inserts a new product. SKUs are normalized to upper case and must
// be unique; the discounted price is derived, never supplied by the client.
func (s *ProductService) Create(ctx context.Context, product *models.Product) error {
	product.SKU = strings.ToUpper(strings.TrimSpace(product.SKU))

	existing, err := s.products.FindBySKU(ctx, product.SKU)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateSKU
	}

	product.DiscountPrice = discountPrice(product.Price, product.DiscountPercent)
	product.ReservedStock = 0

	return s.products.Create(ctx, product)
}

// Get retrieves a product by id
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// List returns products matching the filter plus the total match count
func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	return s.products.List(ctx, filter)
}

// Update replaces the mutable fields of an existing product
func (s *ProductService) Update(ctx context.Context, product *models.Product) error {
	current, err := s.products.FindByID(ctx, product.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrProductNotFound
	}

	product.SKU = strings.ToUpper(strings.TrimSpace(product.SKU))
	if product.SKU != current.SKU {
		existing, err := s.products.FindBySKU(ctx, product.SKU)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateSKU
		}
	}

	product.DiscountPrice = discountPrice(product.Price, product.DiscountPercent)
	product.ReservedStock = current.ReservedStock
	product.CreatedAt = current.CreatedAt

	return s.products.Update(ctx, product)
}

// AdjustStock applies a stock mutation without touching the rest of the
// product. Removal is bounded by the available stock so reservations can
// always be honored.
func (s *ProductService) AdjustStock(ctx context.Context, id int64, quantity int, operation string) (*models.Product, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidStockOperation)
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	switch operation {
	case StockAdd:
		product.Stock += quantity
	case StockRemove:
		if product.Stock-product.ReservedStock < quantity {
			return nil, ErrInsufficientStock
		}
		product.Stock -= quantity
	case StockSet:
		product.Stock = quantity
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStockOperation, operation)
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// LowStock returns active products at or below their low stock threshold
func (s *ProductService) LowStock(ctx context.Context) ([]models.Product, error) {
	return s.products.ListLowStock(ctx)
}

// Delete removes a product by id
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	current, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrProductNotFound
	}
	return s.products.Delete(ctx, id)
}

// discountPrice applies a percentage discount, rounded to cents
func discountPrice(price, percent float64) float64 {
	if percent <= 0 {
		return price
	}
	if percent > 100 {
		percent = 100
	}
	discounted := price * (1 - percent/100)
	return math.Round(discounted*100) / 100
}
