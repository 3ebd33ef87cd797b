package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/K-sous4/scarf-store/models"
	"github.com/K-sous4/scarf-store/services"
)

// ProductController handles the public catalog and the admin product CRUD
type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// defaultLowStockThreshold is used when a client does not set one
const defaultLowStockThreshold = 10

type productRequest struct {
	SKU               string  `json:"sku" validate:"required,max=64"`
	Name              string  `json:"name" validate:"required,max=200"`
	Description       string  `json:"description"`
	ShortDescription  string  `json:"short_description" validate:"max=500"`
	Category          string  `json:"category" validate:"required,max=100"`
	Material          string  `json:"material" validate:"max=100"`
	Color             string  `json:"color" validate:"max=100"`
	Price             float64 `json:"price" validate:"required,gt=0"`
	DiscountPercent   float64 `json:"discount_percentage" validate:"gte=0,lte=100"`
	Stock             int     `json:"stock" validate:"gte=0"`
	LowStockThreshold *int    `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	IsActive          *bool   `json:"is_active"`
	IsFeatured        bool    `json:"is_featured"`
}

func (req *productRequest) toModel() *models.Product {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	threshold := defaultLowStockThreshold
	if req.LowStockThreshold != nil {
		threshold = *req.LowStockThreshold
	}
	return &models.Product{
		SKU:               req.SKU,
		Name:              req.Name,
		Description:       req.Description,
		ShortDescription:  req.ShortDescription,
		Category:          req.Category,
		Material:          req.Material,
		Color:             req.Color,
		Price:             req.Price,
		DiscountPercent:   req.DiscountPercent,
		Stock:             req.Stock,
		LowStockThreshold: threshold,
		IsActive:          active,
		IsFeatured:        req.IsFeatured,
	}
}

type productListResponse struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
	Offset   int              `json:"offset"`
	Limit    int              `json:"limit"`
}

// List returns the catalog filtered by query parameters. Anonymous callers
// only see active products.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	filter := models.ProductFilter{
		Category:   r.URL.Query().Get("category"),
		ActiveOnly: true,
		Offset:     queryInt(r, "offset", 0),
		Limit:      queryInt(r, "limit", 20),
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, total, err := c.products.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondJSON(w, http.StatusOK, productListResponse{
		Products: products,
		Total:    total,
		Offset:   filter.Offset,
		Limit:    filter.Limit,
	})
}

// Get returns a single product by id. Inactive products are indistinguishable
// from missing ones for anonymous callers.
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := c.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to load product")
		return
	}
	if !product.IsActive {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// AdminList returns the full catalog, inactive products included. Admin only.
func (c *ProductController) AdminList(w http.ResponseWriter, r *http.Request) {
	filter := models.ProductFilter{
		Category:   r.URL.Query().Get("category"),
		ActiveOnly: r.URL.Query().Get("active_only") == "true",
		Offset:     queryInt(r, "offset", 0),
		Limit:      queryInt(r, "limit", 20),
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, total, err := c.products.List(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondJSON(w, http.StatusOK, productListResponse{
		Products: products,
		Total:    total,
		Offset:   filter.Offset,
		Limit:    filter.Limit,
	})
}

// AdminGet returns a product regardless of its active flag. Admin only.
func (c *ProductController) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := c.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to load product")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Create adds a new product. Admin only.
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product := req.toModel()
	if err := c.products.Create(r.Context(), product); err != nil {
		if errors.Is(err, services.ErrDuplicateSKU) {
			respondError(w, http.StatusConflict, "SKU already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

// Update replaces a product's fields. Admin only.
func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req productRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product := req.toModel()
	product.ID = id
	if err := c.products.Update(r.Context(), product); err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			respondError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, services.ErrDuplicateSKU):
			respondError(w, http.StatusConflict, "SKU already exists")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to update product")
		}
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Delete removes a product. Admin only.
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := c.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

type stockRequest struct {
	Quantity  *int   `json:"quantity" validate:"required,gte=0"`
	Operation string `json:"operation" validate:"omitempty,oneof=add remove set"`
}

// AdjustStock adds, removes, or sets a product's stock. Admin only.
func (c *ProductController) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req stockRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	operation := req.Operation
	if operation == "" {
		operation = services.StockAdd
	}

	product, err := c.products.AdjustStock(r.Context(), id, *req.Quantity, operation)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			respondError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, services.ErrInsufficientStock):
			respondError(w, http.StatusBadRequest, "Insufficient available stock")
		case errors.Is(err, services.ErrInvalidStockOperation):
			respondError(w, http.StatusBadRequest, "Invalid stock operation")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to adjust stock")
		}
		return
	}

	respondJSON(w, http.StatusOK, product)
}

type lowStockItem struct {
	ID                int64  `json:"id"`
	SKU               string `json:"sku"`
	Name              string `json:"name"`
	AvailableStock    int    `json:"available_stock"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

// LowStock lists active products that need restocking. Admin only.
func (c *ProductController) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := c.products.LowStock(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list low stock products")
		return
	}

	items := make([]lowStockItem, 0, len(products))
	for _, p := range products {
		items = append(items, lowStockItem{
			ID:                p.ID,
			SKU:               p.SKU,
			Name:              p.Name,
			AvailableStock:    p.AvailableStock,
			LowStockThreshold: p.LowStockThreshold,
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{"total": len(items), "products": items})
}

// urlID parses the {id} URL parameter.
func urlID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// queryInt reads an integer query parameter, falling back on a default.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
