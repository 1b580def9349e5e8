// Package domain contains persistence models and contracts for the
// product catalog.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ProductStatus represents product lifecycle states.
type ProductStatus string

const (
	StatusActive     ProductStatus = "active"
	StatusInactive   ProductStatus = "inactive"
	StatusDraft      ProductStatus = "draft"
	StatusOutOfStock ProductStatus = "out_of_stock"
)

// Product is a catalog item. Stock is mutated by order workflows through
// conditional updates only; see Repository.DecrementStock.
type Product struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"type:text;not null"`
	Slug        string `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_products_slug"`
	Description string `json:"description" gorm:"type:text"`
	Brand       string `json:"brand" gorm:"type:text"`
	CategoryID  *int64 `json:"category_id" gorm:"index"`

	Price       int64      `json:"price" gorm:"not null"`
	SalePrice   *int64     `json:"sale_price,omitempty"`
	SaleEndsAt  *time.Time `json:"sale_ends_at,omitempty"`
	Stock       int64      `json:"stock" gorm:"not null;default:0"`
	LowStockAt  int64      `json:"low_stock_at" gorm:"not null;default:5"`
	Status      ProductStatus `json:"status" gorm:"type:text;not null;default:'draft'"`

	Images datatypes.JSONSlice[string] `json:"images" gorm:"type:jsonb"`

	MetaTitle       string                      `json:"meta_title" gorm:"type:text"`
	MetaDescription string                      `json:"meta_description" gorm:"type:text"`
	Keywords        datatypes.JSONSlice[string] `json:"keywords" gorm:"type:jsonb"`

	Views     int64   `json:"views" gorm:"not null;default:0"`
	Sales     int64   `json:"sales" gorm:"not null;default:0"`
	Rating    float64 `json:"rating" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// EffectivePrice returns the sale price while the sale window is open,
// otherwise the regular price.
func (p *Product) EffectivePrice(now time.Time) int64 {
	if p.SalePrice == nil {
		return p.Price
	}
	if p.SaleEndsAt != nil && !now.Before(*p.SaleEndsAt) {
		return p.Price
	}
	return *p.SalePrice
}

/// DeriveStatus applies the stock-driven status rule: reaching zero stock
// forces out_of_stock, restocking an out_of_stock product reactivates it.
// Draft and inactive products keep their status.
func (p *Product) DeriveStatus() {
	switch {
	case p.Stock <= 0 && p.Status == StatusActive:
		p.Status = StatusOutOfStock
	case p.Stock > 0 && p.Status == StatusOutOfStock:
		p.Status = StatusActive
	}
}

func (s ProductStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusDraft, StatusOutOfStock:
		return true
	default:
		return false
	}
}
