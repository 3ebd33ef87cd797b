package models

import "time"

// Product represents a store item
type Product struct {
	ID                int64      `json:"id"`
	SKU               string     `json:"sku"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	ShortDescription  string     `json:"short_description,omitempty"`
	Category          string     `json:"category,omitempty"`
	Material          string     `json:"material,omitempty"`
	Color             string     `json:"color,omitempty"`
	Price             float64    `json:"price"`
	DiscountPercent   float64    `json:"discount_percentage"`
	DiscountPrice     float64    `json:"discount_price,omitempty"`
	Stock             int        `json:"stock"`
	ReservedStock     int        `json:"reserved_stock"`
	AvailableStock    int        `json:"available_stock"`
	LowStockThreshold int        `json:"low_stock_threshold"`
	IsActive          bool       `json:"is_active"`
	IsFeatured        bool       `json:"is_featured"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}

// ProductFilter narrows product listings
type ProductFilter struct {
	Category   string
	ActiveOnly bool
	Offset     int
	Limit      int
}
