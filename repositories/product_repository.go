package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/K-sous4/scarf-store/models"
)

// ProductRepository interface defines product database operations
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error)
	ListLowStock(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, sku, name, description, short_description, category, material, color,
	price, discount_percentage, discount_price, stock, reserved_stock, low_stock_threshold,
	is_active, is_featured, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	var description, shortDescription, category, material, color sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&description,
		&shortDescription,
		&category,
		&material,
		&color,
		&p.Price,
		&p.DiscountPercent,
		&p.DiscountPrice,
		&p.Stock,
		&p.ReservedStock,
		&p.LowStockThreshold,
		&p.IsActive,
		&p.IsFeatured,
		&p.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	p.ShortDescription = shortDescription.String
	p.Category = category.String
	p.Material = material.String
	p.Color = color.String
	if updatedAt.Valid {
		p.UpdatedAt = &updatedAt.Time
	}
	p.AvailableStock = p.Stock - p.ReservedStock

	return &p, nil
}

// FindByID retrieves a product by id
func (r *productRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// FindBySKU retrieves a product by its SKU
func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = ?`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, sku))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by sku: %w", err)
	}

	return product, nil
}

// List retrieves products matching the filter, plus the total match count
func (r *productRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int, error) {
	where := "WHERE 1=1"
	args := []any{}

	if filter.ActiveOnly {
		where += " AND is_active = 1"
	}
	if filter.Category != "" {
		where += " AND category = ?"
		args = append(args, filter.Category)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + productColumns + ` FROM products ` + where + ` ORDER BY id ASC LIMIT ? OFFSET ?`
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// ListLowStock retrieves active products whose available stock has fallen to
// or below their threshold
func (r *productRepository) ListLowStock(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE is_active = 1 AND (stock - reserved_stock) <= low_stock_threshold
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	return products, rows.Err()
}

// Create inserts a new product and sets its generated id
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (sku, name, description, short_description, category, material, color,
			price, discount_percentage, discount_price, stock, reserved_stock, low_stock_threshold,
			is_active, is_featured, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, query,
		product.SKU,
		product.Name,
		product.Description,
		product.ShortDescription,
		product.Category,
		product.Material,
		product.Color,
		product.Price,
		product.DiscountPercent,
		product.DiscountPrice,
		product.Stock,
		product.ReservedStock,
		product.LowStockThreshold,
		product.IsActive,
		product.IsFeatured,
		product.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get product id: %w", err)
	}
	product.ID = id
	product.AvailableStock = product.Stock - product.ReservedStock

	return nil
}

// Update persists all mutable product fields
func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET sku = ?, name = ?, description = ?, short_description = ?, category = ?,
			material = ?, color = ?, price = ?, discount_percentage = ?, discount_price = ?,
			stock = ?, reserved_stock = ?, low_stock_threshold = ?, is_active = ?,
			is_featured = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		product.SKU,
		product.Name,
		product.Description,
		product.ShortDescription,
		product.Category,
		product.Material,
		product.Color,
		product.Price,
		product.DiscountPercent,
		product.DiscountPrice,
		product.Stock,
		product.ReservedStock,
		product.LowStockThreshold,
		product.IsActive,
		product.IsFeatured,
		now,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product with ID %d not found", product.ID)
	}

	product.UpdatedAt = &now
	product.AvailableStock = product.Stock - product.ReservedStock
	return nil
}

// Delete removes a product by id
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product with ID %d not found", id)
	}

	return nil
}
