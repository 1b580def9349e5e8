package domain

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	Type     CategoryType
	ParentID *int64
	Status   CategoryStatus
	RootOnly bool
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, category *Category) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Category, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Category, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Category, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Category, error)
	Update(ctx context.Context, db *gorm.DB, category *Category) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	CountChildren(ctx context.Context, db *gorm.DB, parentID int64) (int64, error)
}
