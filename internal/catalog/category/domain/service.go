package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Type            string  `json:"type"`
	ParentID        *string `json:"parent_id"`
	Icon            string  `json:"icon"`
	Color           string  `json:"color"`
	SortOrder       int     `json:"sort_order"`
	MetaTitle       string  `json:"meta_title"`
	MetaDescription string  `json:"meta_description"`
}

type UpdateRequest struct {
	ID              string
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Icon            *string `json:"icon"`
	Color           *string `json:"color"`
	Status          *string `json:"status"`
	SortOrder       *int    `json:"sort_order"`
	MetaTitle       *string `json:"meta_title"`
	MetaDescription *string `json:"meta_description"`
}

type ListRequest struct {
	Type     string
	ParentID string
	Status   string
	RootOnly bool
}

type Response struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description,omitempty"`
	Type            string    `json:"type"`
	ParentID        *string   `json:"parent_id,omitempty"`
	Icon            string    `json:"icon,omitempty"`
	Color           string    `json:"color,omitempty"`
	Status          string    `json:"status"`
	SortOrder       int       `json:"sort_order"`
	MetaTitle       string    `json:"meta_title,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

var (
	ErrNotFound       = errors.New("category_not_found")
	ErrInvalidID      = errors.New("invalid_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidType    = errors.New("invalid_type")
	ErrInvalidStatus  = errors.New("invalid_status")
	ErrNameTaken      = errors.New("name_taken")
	ErrParentNotFound = errors.New("parent_not_found")
	ErrNestedParent   = errors.New("nested_parent")
)

// DeleteBlockedError reports why a category delete was refused, carrying
// the dependent counts for the response message.
type DeleteBlockedError struct {
	Products      int64
	Subcategories int64
}

func (e *DeleteBlockedError) Error() string {
	return fmt.Sprintf("category has %d products and %d subcategories", e.Products, e.Subcategories)
}
