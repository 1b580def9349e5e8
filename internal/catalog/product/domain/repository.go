package domain

import (
	"context"

	"github.com/bondexsafety/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CategoryID *int64
	Status     ProductStatus
	Search     string
	LowStock   bool
	SortBy     string
	OrderBy    string
	Page       pagination.Pagination
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Product, int64, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error

	// DecrementStock decrements conditionally and reports whether the row
	// was updated. The guard `stock >= qty` runs inside the statement so
	// concurrent orders cannot drive stock negative.
	DecrementStock(ctx context.Context, db *gorm.DB, id, qty int64) (bool, error)
	// IncrementStock restores stock and bumps status out of out_of_stock.
	IncrementStock(ctx context.Context, db *gorm.DB, id, qty int64) error
	IncrementViews(ctx context.Context, db *gorm.DB, id int64) error
	IncrementSales(ctx context.Context, db *gorm.DB, id, qty int64) error
	CountByCategory(ctx context.Context, db *gorm.DB, categoryID int64) (int64, error)
}
