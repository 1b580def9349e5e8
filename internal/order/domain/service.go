package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bondexsafety/backoffice/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetByNumber(ctx context.Context, number, email string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, *pagination.PageInfo, error)
	UpdateStatus(ctx context.Context, req StatusRequest) (*Response, error)
	UpdateTracking(ctx context.Context, req TrackingRequest) (*Response, error)
	UpdatePayment(ctx context.Context, req PaymentRequest) (*Response, error)
	Refund(ctx context.Context, req RefundRequest) (*Response, error)
	Delete(ctx context.Context, id string, actorID *int64) error
}

type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CreateRequest struct {
	CustomerID      *string          `json:"customer_id"`
	Customer        CustomerSnapshot `json:"customer"`
	Items           []ItemRequest    `json:"items"`
	ShippingAddress Address          `json:"shipping_address"`
	BillingAddress  *Address         `json:"billing_address"`
	PaymentMethod   string           `json:"payment_method"`
	ShippingMethod  string           `json:"shipping_method"`
	Notes           string           `json:"notes"`
}

type ListRequest struct {
	Status        string
	PaymentStatus string
	Search        string
	From          *time.Time
	To            *time.Time
	Page          pagination.Pagination
}

type StatusRequest struct {
	ID      string
	Status  string `json:"status"`
	Note    string `json:"note"`
	ActorID *int64 `json:"-"`

	// Optional shipping details accepted alongside a `shipped` transition.
	TrackingNumber    string     `json:"tracking_number"`
	Carrier           string     `json:"carrier"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
}

type TrackingRequest struct {
	ID                string
	TrackingNumber    string     `json:"tracking_number"`
	Carrier           string     `json:"carrier"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	ActorID           *int64     `json:"-"`
}

type PaymentRequest struct {
	ID            string
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	Note          string `json:"note"`
	ActorID       *int64 `json:"-"`
}

type RefundRequest struct {
	ID      string
	Amount  int64  `json:"amount"`
	Reason  string `json:"reason"`
	ActorID *int64 `json:"-"`
}

type ItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Total     int64  `json:"total"`
}

type PricingResponse struct {
	Subtotal     int64 `json:"subtotal"`
	ShippingCost int64 `json:"shipping_cost"`
	Tax          int64 `json:"tax"`
	Discount     int64 `json:"discount"`
	TotalAmount  int64 `json:"total_amount"`
}

type PaymentResponse struct {
	Method        string     `json:"method"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	RefundedAt    *time.Time `json:"refunded_at,omitempty"`
	RefundAmount  int64      `json:"refund_amount"`
}

type ShippingResponse struct {
	Method            string     `json:"method,omitempty"`
	Cost              int64      `json:"cost"`
	TrackingNumber    string     `json:"tracking_number,omitempty"`
	Carrier           string     `json:"carrier,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	ShippedAt         *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
}

type TimelineResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type PaymentEventResponse struct {
	Status        string    `json:"status"`
	Amount        int64     `json:"amount,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Note          string    `json:"note,omitempty"`
	ActorID       *string   `json:"actor_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type Response struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"order_number"`
	CustomerID      *string                `json:"customer_id,omitempty"`
	Customer        CustomerSnapshot       `json:"customer"`
	Items           []ItemResponse         `json:"items"`
	ShippingAddress Address                `json:"shipping_address"`
	BillingAddress  *Address               `json:"billing_address,omitempty"`
	Pricing         PricingResponse        `json:"pricing"`
	Payment         PaymentResponse        `json:"payment"`
	Shipping        ShippingResponse       `json:"shipping"`
	Status          string                 `json:"status"`
	Notes           string                 `json:"notes,omitempty"`
	Timeline        []TimelineResponse     `json:"timeline,omitempty"`
	PaymentEvents   []PaymentEventResponse `json:"payment_events,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

var (
	ErrNotFound             = errors.New("order_not_found")
	ErrInvalidID            = errors.New("invalid_id")
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrNoItems              = errors.New("no_items")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidAddress       = errors.New("invalid_address")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrInvalidStatus        = errors.New("invalid_status")
	ErrInvalidPaymentStatus = errors.New("invalid_payment_status")
	ErrInvalidRefundAmount  = errors.New("invalid_refund_amount")
	ErrMissingRefundReason  = errors.New("missing_refund_reason")
	ErrAlreadyRefunded      = errors.New("already_refunded")
	ErrProductNotFound      = errors.New("order_product_not_found")
	ErrDeleteNotAllowed     = errors.New("delete_not_allowed")
)

// ProductUnavailableError rejects an order line for an inactive product.
type ProductUnavailableError struct {
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %q is not available for ordering", e.ProductName)
}

// InsufficientStockError carries everything the response message needs:
// product name, available stock and the requested quantity.
type InsufficientStockError struct {
	ProductName string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d requested",
		e.ProductName, e.Available, e.Requested)
}

// IllegalTransitionError rejects a status change out of a terminal state.
type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// RefundExceedsBalanceError states the requested and the maximum
// refundable amounts.
type RefundExceedsBalanceError struct {
	Requested     int64
	MaxRefundable int64
}

func (e *RefundExceedsBalanceError) Error() string {
	return fmt.Sprintf("refund of %d exceeds refundable balance of %d",
		e.Requested, e.MaxRefundable)
}
