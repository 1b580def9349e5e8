package domain

import (
	"context"

	"gorm.io/gorm"

	"github.com/bondexsafety/backoffice/pkg/db/pagination"
)

type UserFilter struct {
	Role   Role
	Status UserStatus
	Search string
	Page   pagination.Pagination
}

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, user *User) error
	Find(ctx context.Context, tx *gorm.DB, id int64) (*User, error)
	FindByEmail(ctx context.Context, tx *gorm.DB, email string) (*User, error)
	Update(ctx context.Context, tx *gorm.DB, user *User) error
	List(ctx context.Context, tx *gorm.DB, f UserFilter) ([]User, int64, error)
}
