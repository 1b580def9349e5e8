package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bondexsafety/backoffice/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetBySlug(ctx context.Context, slug string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, *pagination.PageInfo, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	AttachImage(ctx context.Context, id string, url string) (*Response, error)
}

type CreateRequest struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Brand           string     `json:"brand"`
	CategoryID      *string    `json:"category_id"`
	Price           int64      `json:"price"`
	SalePrice       *int64     `json:"sale_price"`
	SaleEndsAt      *time.Time `json:"sale_ends_at"`
	Stock           int64      `json:"stock"`
	LowStockAt      *int64     `json:"low_stock_at"`
	Status          string     `json:"status"`
	Images          []string   `json:"images"`
	MetaTitle       string     `json:"meta_title"`
	MetaDescription string     `json:"meta_description"`
	Keywords        []string   `json:"keywords"`
}

type UpdateRequest struct {
	ID              string
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	Brand           *string    `json:"brand"`
	CategoryID      *string    `json:"category_id"`
	Price           *int64     `json:"price"`
	SalePrice       *int64     `json:"sale_price"`
	SaleEndsAt      *time.Time `json:"sale_ends_at"`
	ClearSale       bool       `json:"clear_sale"`
	Stock           *int64     `json:"stock"`
	LowStockAt      *int64     `json:"low_stock_at"`
	Status          *string    `json:"status"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	Keywords        []string   `json:"keywords"`
}

type ListRequest struct {
	CategoryID string
	Status     string
	Search     string
	LowStock   bool
	SortBy     string
	OrderBy    string
	Page       pagination.Pagination
}

type Response struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Slug            string     `json:"slug"`
	Description     string     `json:"description,omitempty"`
	Brand           string     `json:"brand,omitempty"`
	CategoryID      *string    `json:"category_id,omitempty"`
	Price           int64      `json:"price"`
	SalePrice       *int64     `json:"sale_price,omitempty"`
	SaleEndsAt      *time.Time `json:"sale_ends_at,omitempty"`
	EffectivePrice  int64      `json:"effective_price"`
	Stock           int64      `json:"stock"`
	LowStockAt      int64      `json:"low_stock_at"`
	LowStock        bool       `json:"low_stock"`
	Status          string     `json:"status"`
	Images          []string   `json:"images,omitempty"`
	MetaTitle       string     `json:"meta_title,omitempty"`
	MetaDescription string     `json:"meta_description,omitempty"`
	Keywords        []string   `json:"keywords,omitempty"`
	Views           int64      `json:"views"`
	Sales           int64      `json:"sales"`
	Rating          float64    `json:"rating"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

var (
	ErrNotFound         = errors.New("product_not_found")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrInvalidSalePrice = errors.New("invalid_sale_price")
	ErrInvalidStock     = errors.New("invalid_stock")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrNameTaken        = errors.New("name_taken")
	ErrCategoryNotFound = errors.New("category_not_found")
)
