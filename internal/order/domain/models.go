// Package domain contains the order aggregate: persistence models,
// state machines and service contracts.
package domain

import "time"

// OrderStatus represents order lifecycle states.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// PaymentStatus is tracked independently of the order status.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

type PaymentMethod string

const (
	MethodMpesa          PaymentMethod = "mpesa"
	MethodCard           PaymentMethod = "card"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	MethodBankTransfer   PaymentMethod = "bank_transfer"
)

// Address is embedded into orders as shipping_ and billing_ columns.
type Address struct {
	Street     string `json:"street" gorm:"type:text"`
	City       string `json:"city" gorm:"type:text"`
	State      string `json:"state" gorm:"type:text"`
	PostalCode string `json:"postal_code" gorm:"type:text"`
	Country    string `json:"country" gorm:"type:text"`
}

// CustomerSnapshot captures contact details at order time so later edits
// to the user record never rewrite order history.
type CustomerSnapshot struct {
	Name  string `json:"name" gorm:"type:text;not null"`
	Email string `json:"email" gorm:"type:text;not null"`
	Phone string `json:"phone" gorm:"type:text"`
}

// Order is the aggregate root. Monetary amounts are whole Kenyan
// Shillings.
type Order struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	OrderNumber string `json:"order_number" gorm:"type:text;not null;uniqueIndex:ux_orders_number"`
	// Daily sequence parsed out of OrderNumber, kept as a column so the
	// next number can be derived with a MAX query.
	DailySequence int    `json:"-" gorm:"not null"`
	CustomerID    *int64 `json:"customer_id" gorm:"index"`

	Customer CustomerSnapshot `json:"customer" gorm:"embedded;embeddedPrefix:customer_"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`

	ShippingAddress Address  `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_addr_"`
	BillingAddress  *Address `json:"billing_address,omitempty" gorm:"embedded;embeddedPrefix:billing_addr_"`

	Subtotal     int64 `json:"subtotal" gorm:"not null"`
	ShippingCost int64 `json:"shipping_cost" gorm:"not null"`
	Tax          int64 `json:"tax" gorm:"not null"`
	Discount     int64 `json:"discount" gorm:"not null;default:0"`
	TotalAmount  int64 `json:"total_amount" gorm:"not null"`

	PaymentMethod        PaymentMethod `json:"payment_method" gorm:"type:text;not null"`
	PaymentStatus        PaymentStatus `json:"payment_status" gorm:"type:text;not null;default:'pending'"`
	PaymentTransactionID string        `json:"payment_transaction_id,omitempty" gorm:"type:text"`
	PaidAt               *time.Time    `json:"paid_at,omitempty"`
	RefundedAt           *time.Time    `json:"refunded_at,omitempty"`
	RefundAmount         int64         `json:"refund_amount" gorm:"not null;default:0"`

	ShippingMethod    string     `json:"shipping_method" gorm:"type:text"`
	TrackingNumber    string     `json:"tracking_number,omitempty" gorm:"type:text"`
	Carrier           string     `json:"carrier,omitempty" gorm:"type:text"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
	ShippedAt         *time.Time `json:"shipped_at,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`

	Status OrderStatus `json:"status" gorm:"type:text;not null;default:'pending'"`

	// StockRestored records whether decremented stock has been handed
	// back; it prevents a cancel-then-refund double restore.
	StockRestored bool `json:"-" gorm:"not null;default:false"`

	Notes string `json:"notes,omitempty" gorm:"type:text"`

	Timeline      []TimelineEntry `json:"timeline,omitempty" gorm:"foreignKey:OrderID"`
	PaymentEvents []PaymentEvent  `json:"payment_events,omitempty" gorm:"foreignKey:OrderID"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderItem is a line item with product details snapshotted at order time.
type OrderItem struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	OrderID   int64  `json:"-" gorm:"not null;index"`
	ProductID int64  `json:"product_id" gorm:"not null;index"`
	Name      string `json:"name" gorm:"type:text;not null"`
	Image     string `json:"image,omitempty" gorm:"type:text"`
	Quantity  int64  `json:"quantity" gorm:"not null"`
	UnitPrice int64  `json:"unit_price" gorm:"not null"`
	Total     int64  `json:"total" gorm:"not null"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }

// TimelineEntry is one append-only status-change record.
type TimelineEntry struct {
	ID      int64       `json:"-" gorm:"primaryKey"`
	OrderID int64       `json:"-" gorm:"not null;index"`
	Status  OrderStatus `json:"status" gorm:"type:text;not null"`
	Note    string      `json:"note,omitempty" gorm:"type:text"`
	ActorID *int64      `json:"actor_id,omitempty"`

	CreatedAt time.Time `json:"timestamp" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (TimelineEntry) TableName() string { return "order_timeline" }

// PaymentEvent is one append-only payment-change record.
type PaymentEvent struct {
	ID            int64         `json:"-" gorm:"primaryKey"`
	OrderID       int64         `json:"-" gorm:"not null;index"`
	Status        PaymentStatus `json:"status" gorm:"type:text;not null"`
	Amount        int64         `json:"amount" gorm:"not null;default:0"`
	TransactionID string        `json:"transaction_id,omitempty" gorm:"type:text"`
	Note          string        `json:"note,omitempty" gorm:"type:text"`
	ActorID       *int64        `json:"actor_id,omitempty"`

	CreatedAt time.Time `json:"timestamp" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PaymentEvent) TableName() string { return "order_payment_events" }

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed,
		PaymentRefunded, PaymentPartiallyRefunded:
		return true
	default:
		return false
	}
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodMpesa, MethodCard, MethodCashOnDelivery, MethodBankTransfer:
		return true
	default:
		return false
	}
}
