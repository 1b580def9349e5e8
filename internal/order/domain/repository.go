package domain

import (
	"context"
	"time"

	"github.com/bondexsafety/backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
	Search        string
	From          *time.Time
	To            *time.Time
	Page          pagination.Pagination
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Order, int64, error)
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error

	// MaxDailySequence returns the highest sequence already issued for
	// the given day prefix. Runs with a row lock on backends that
	// support it so two concurrent creations cannot draw the same
	// number.
	MaxDailySequence(ctx context.Context, db *gorm.DB, prefix string) (int, error)

	AppendTimeline(ctx context.Context, db *gorm.DB, entry *TimelineEntry) error
	AppendPaymentEvent(ctx context.Context, db *gorm.DB, event *PaymentEvent) error
}
