package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	productdomain "github.com/bondexsafety/backoffice/internal/catalog/product/domain"
	"github.com/bondexsafety/backoffice/internal/clock"
	"github.com/bondexsafety/backoffice/internal/config"
	"github.com/bondexsafety/backoffice/internal/notify"
	"github.com/bondexsafety/backoffice/internal/order/domain"
	"github.com/bondexsafety/backoffice/internal/order/pricing"
	"github.com/bondexsafety/backoffice/pkg/db"
	"github.com/bondexsafety/backoffice/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxNumberAttempts bounds retries when a drawn order number loses a
// race to the unique index.
const maxNumberAttempts = 3

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	ProductRepo productdomain.Repository
	Mailer      notify.Sender
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         config.Config
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	productRepo productdomain.Repository
	mailer      notify.Sender
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		cfg:         p.Cfg,
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		productRepo: p.ProductRepo,
		mailer:      p.Mailer,
	}
}

// Create validates the request, prices the basket and persists the order.
// The order insert, the order-number draw and every stock decrement run in
// one transaction: a single unavailable item rolls the whole batch back
// with no stock mutation.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	if strings.TrimSpace(req.Customer.Name) == "" || strings.TrimSpace(req.Customer.Email) == "" {
		return nil, domain.ErrInvalidCustomer
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, domain.ErrInvalidQuantity
		}
	}
	if strings.TrimSpace(req.ShippingAddress.Street) == "" || strings.TrimSpace(req.ShippingAddress.City) == "" {
		return nil, domain.ErrInvalidAddress
	}

	method := domain.PaymentMethod(strings.TrimSpace(req.PaymentMethod))
	if method == "" {
		method = domain.MethodMpesa
	}
	if !method.Valid() {
		return nil, domain.ErrInvalidPaymentMethod
	}

	var customerID *int64
	if req.CustomerID != nil && strings.TrimSpace(*req.CustomerID) != "" {
		id, err := snowflake.ParseString(strings.TrimSpace(*req.CustomerID))
		if err != nil {
			return nil, domain.ErrInvalidCustomer
		}
		value := id.Int64()
		customerID = &value
	}

	now := s.clock.Now()
	order := &domain.Order{
		ID:         s.genID.Generate().Int64(),
		CustomerID: customerID,
		Customer: domain.CustomerSnapshot{
			Name:  strings.TrimSpace(req.Customer.Name),
			Email: strings.TrimSpace(req.Customer.Email),
			Phone: strings.TrimSpace(req.Customer.Phone),
		},
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   method,
		PaymentStatus:   domain.PaymentPending,
		ShippingMethod:  strings.TrimSpace(req.ShippingMethod),
		Status:          domain.OrderPending,
		Notes:           strings.TrimSpace(req.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// Two concurrent first orders of a day can draw the same sequence;
	// the loser hits the unique order-number index and retries with the
	// next one.
	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		err = s.createTx(ctx, order, req, now, attempt)
		if err == nil || !db.IsDuplicateKeyErr(err) {
			break
		}
		s.log.Warn("order number taken, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(order)

	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) createTx(ctx context.Context, order *domain.Order, req domain.CreateRequest, now time.Time, attempt int) error {
	order.Items = nil
	order.Timeline = nil

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subtotal int64
		for _, item := range req.Items {
			productID, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
			if err != nil {
				return domain.ErrProductNotFound
			}
			product, err := s.productRepo.FindByID(ctx, tx, productID.Int64())
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrProductNotFound
			}
			if product.Status != productdomain.StatusActive {
				return &domain.ProductUnavailableError{ProductName: product.Name}
			}
			if product.Stock < item.Quantity {
				return &domain.InsufficientStockError{
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   item.Quantity,
				}
			}

			unitPrice := product.EffectivePrice(now)
			image := ""
			if len(product.Images) > 0 {
				image = product.Images[0]
			}
			order.Items = append(order.Items, domain.OrderItem{
				ID:        s.genID.Generate().Int64(),
				ProductID: product.ID,
				Name:      product.Name,
				Image:     image,
				Quantity:  item.Quantity,
				UnitPrice: unitPrice,
				Total:     unitPrice * item.Quantity,
			})
			subtotal += unitPrice * item.Quantity
		}

		breakdown := pricing.Compute(subtotal, order.ShippingAddress.City, 0)
		order.Subtotal = breakdown.Subtotal
		order.ShippingCost = breakdown.ShippingCost
		order.Tax = breakdown.Tax
		order.Discount = breakdown.Discount
		order.TotalAmount = breakdown.TotalAmount

		number, sequence, err := s.nextOrderNumber(ctx, tx, now, attempt)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		order.DailySequence = sequence

		order.Timeline = []domain.TimelineEntry{{
			ID:        s.genID.Generate().Int64(),
			OrderID:   order.ID,
			Status:    domain.OrderPending,
			Note:      "order placed",
			CreatedAt: now,
		}}

		if err := s.repo.Create(ctx, tx, order); err != nil {
			return err
		}

		// The conditional decrement re-checks stock inside the statement;
		// a concurrent order that drained stock since the read above
		// fails the batch here.
		for _, item := range order.Items {
			ok, err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				product, ferr := s.productRepo.FindByID(ctx, tx, item.ProductID)
				available := int64(0)
				if ferr == nil && product != nil {
					available = product.Stock
				}
				return &domain.InsufficientStockError{
					ProductName: item.Name,
					Available:   available,
					Requested:   item.Quantity,
				}
			}
			if err := s.productRepo.IncrementSales(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		return nil
	})
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	order, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(order)
	return &resp, nil
}

// GetByNumber serves guest order lookup; the caller must present the
// email the order was placed with.
func (s *Service) GetByNumber(ctx context.Context, number, email string) (*domain.Response, error) {
	order, err := s.repo.FindByNumber(ctx, s.db, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !strings.EqualFold(order.Customer.Email, strings.TrimSpace(email)) {
		return nil, domain.ErrNotFound
	}
	resp := s.toResponse(order)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, *pagination.PageInfo, error) {
	filter := domain.ListFilter{
		Search: strings.TrimSpace(req.Search),
		From:   req.From,
		To:     req.To,
		Page:   req.Page.Normalize(),
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		if !domain.OrderStatus(raw).Valid() {
			return nil, nil, domain.ErrInvalidStatus
		}
		filter.Status = domain.OrderStatus(raw)
	}
	if raw := strings.TrimSpace(req.PaymentStatus); raw != "" {
		if !domain.PaymentStatus(raw).Valid() {
			return nil, nil, domain.ErrInvalidPaymentStatus
		}
		filter.PaymentStatus = domain.PaymentStatus(raw)
	}

	orders, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, nil, err
	}

	resp := make([]domain.Response, 0, len(orders))
	for i := range orders {
		resp = append(resp, s.toResponse(&orders[i]))
	}
	info := filter.Page.PageInfo(total)
	return resp, &info, nil
}

// UpdateStatus applies one guarded transition of the status state machine
// and its side effects. Stock is never decremented here: the single
// decrement point is order creation, so moving to processing mutates
// nothing.
func (s *Service) UpdateStatus(ctx context.Context, req domain.StatusRequest) (*domain.Response, error) {
	target := domain.OrderStatus(strings.TrimSpace(req.Status))
	if !target.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	order, err := s.findByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(order.Status, target) {
		return nil, &domain.IllegalTransitionError{From: order.Status, To: target}
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch target {
		case domain.OrderShipped:
			order.ShippedAt = &now
			if tracking := strings.TrimSpace(req.TrackingNumber); tracking != "" {
				order.TrackingNumber = tracking
			}
			if carrier := strings.TrimSpace(req.Carrier); carrier != "" {
				order.Carrier = carrier
			}
			if req.EstimatedDelivery != nil {
				order.EstimatedDelivery = req.EstimatedDelivery
			}
		case domain.OrderDelivered:
			order.DeliveredAt = &now
			if order.PaymentStatus != domain.PaymentPaid {
				order.PaymentStatus = domain.PaymentPaid
				order.PaidAt = &now
				if err := s.repo.AppendPaymentEvent(ctx, tx, &domain.PaymentEvent{
					ID:        s.genID.Generate().Int64(),
					OrderID:   order.ID,
					Status:    domain.PaymentPaid,
					Amount:    order.TotalAmount,
					Note:      "marked paid on delivery",
					ActorID:   req.ActorID,
					CreatedAt: now,
				}); err != nil {
					return err
				}
			}
		case domain.OrderCancelled:
			order.CancelledAt = &now
			if err := s.restoreStock(ctx, tx, order); err != nil {
				return err
			}
		}

		order.Status = target
		order.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}

		return s.repo.AppendTimeline(ctx, tx, &domain.TimelineEntry{
			ID:        s.genID.Generate().Int64(),
			OrderID:   order.ID,
			Status:    target,
			Note:      strings.TrimSpace(req.Note),
			ActorID:   req.ActorID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, req.ID)
}

func (s *Service) UpdateTracking(ctx context.Context, req domain.TrackingRequest) (*domain.Response, error) {
	order, err := s.findByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if tracking := strings.TrimSpace(req.TrackingNumber); tracking != "" {
		order.TrackingNumber = tracking
	}
	if carrier := strings.TrimSpace(req.Carrier); carrier != "" {
		order.Carrier = carrier
	}
	if req.EstimatedDelivery != nil {
		order.EstimatedDelivery = req.EstimatedDelivery
	}

	order.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return nil, err
	}

	resp := s.toResponse(order)
	return &resp, nil
}

// UpdatePayment moves the payment state machine independently of the
// order status and appends to the payment history.
func (s *Service) UpdatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Response, error) {
	target := domain.PaymentStatus(strings.TrimSpace(req.Status))
	if !target.Valid() {
		return nil, domain.ErrInvalidPaymentStatus
	}

	order, err := s.findByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	amount := int64(0)
	switch target {
	case domain.PaymentPaid:
		order.PaidAt = &now
		amount = order.TotalAmount
	case domain.PaymentRefunded:
		order.RefundedAt = &now
		order.RefundAmount = order.TotalAmount
		amount = order.TotalAmount
	case domain.PaymentPartiallyRefunded:
		order.RefundedAt = &now
	}
	if transactionID := strings.TrimSpace(req.TransactionID); transactionID != "" {
		order.PaymentTransactionID = transactionID
	}
	order.PaymentStatus = target
	order.UpdatedAt = now

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, order); err != nil {
			return err
		}
		return s.repo.AppendPaymentEvent(ctx, tx, &domain.PaymentEvent{
			ID:            s.genID.Generate().Int64(),
			OrderID:       order.ID,
			Status:        target,
			Amount:        amount,
			TransactionID: order.PaymentTransactionID,
			Note:          strings.TrimSpace(req.Note),
			ActorID:       req.ActorID,
			CreatedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, req.ID)
}

// Refund accumulates a refund against the order. Full refunds cancel the
// order (when not already terminal) and hand decremented stock back.
func (s *Service) Refund(ctx context.Context, req domain.RefundRequest) (*domain.Response, error) {
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidRefundAmount
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, domain.ErrMissingRefundReason
	}

	order, err := s.findByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == domain.PaymentRefunded {
		return nil, domain.ErrAlreadyRefunded
	}
	if max := order.MaxRefundable(); req.Amount > max {
		return nil, &domain.RefundExceedsBalanceError{Requested: req.Amount, MaxRefundable: max}
	}

	now := s.clock.Now()
	transactionID := uuid.NewString()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order.RefundAmount += req.Amount
		order.RefundedAt = &now

		fullyRefunded := order.RefundAmount >= order.TotalAmount
		if fullyRefunded {
			order.PaymentStatus = domain.PaymentRefunded
		} else {
			order.PaymentStatus = domain.PaymentPartiallyRefunded
		}

		if err := s.repo.AppendPaymentEvent(ctx, tx, &domain.PaymentEvent{
			ID:            s.genID.Generate().Int64(),
			OrderID:       order.ID,
			Status:        order.PaymentStatus,
			Amount:        req.Amount,
			TransactionID: transactionID,
			Note:          strings.TrimSpace(req.Reason),
			ActorID:       req.ActorID,
			CreatedAt:     now,
		}); err != nil {
			return err
		}

		if fullyRefunded && !order.Status.IsTerminal() {
			order.Status = domain.OrderCancelled
			order.CancelledAt = &now
			if err := s.restoreStock(ctx, tx, order); err != nil {
				return err
			}
			if err := s.repo.AppendTimeline(ctx, tx, &domain.TimelineEntry{
				ID:        s.genID.Generate().Int64(),
				OrderID:   order.ID,
				Status:    domain.OrderCancelled,
				Note:      "order fully refunded: " + strings.TrimSpace(req.Reason),
				ActorID:   req.ActorID,
				CreatedAt: now,
			}); err != nil {
				return err
			}
		}

		order.UpdatedAt = now
		return s.repo.Update(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, req.ID)
}

// Delete removes cancelled orders, and pending orders that went stale.
func (s *Service) Delete(ctx context.Context, id string, actorID *int64) error {
	order, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case order.Status == domain.OrderCancelled:
	case order.Status == domain.OrderPending &&
		s.clock.Now().Sub(order.CreatedAt) >= s.cfg.StalePendingAfter:
	default:
		return domain.ErrDeleteNotAllowed
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.restoreStock(ctx, tx, order); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, order.ID)
	})
}

// restoreStock hands decremented stock back exactly once per order.
func (s *Service) restoreStock(ctx context.Context, tx *gorm.DB, order *domain.Order) error {
	if !order.HoldsStock() {
		return nil
	}
	for _, item := range order.Items {
		if err := s.productRepo.IncrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	order.StockRestored = true
	return nil
}

func (s *Service) findByID(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	order, err := s.repo.FindByID(ctx, s.db, orderID.Int64())
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// nextOrderNumber draws the next ORDyymmddNNNN number. The sequence
// resets each UTC day and starts at 0001. attempt skips past numbers a
// concurrent writer took first.
func (s *Service) nextOrderNumber(ctx context.Context, tx *gorm.DB, now time.Time, attempt int) (string, int, error) {
	prefix := "ORD" + now.Format("060102")
	max, err := s.repo.MaxDailySequence(ctx, tx, prefix)
	if err != nil {
		return "", 0, err
	}
	sequence := max + attempt
	return fmt.Sprintf("%s%04d", prefix, sequence), sequence, nil
}

func (s *Service) sendConfirmation(order *domain.Order) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		subject := fmt.Sprintf("Order %s confirmed", order.OrderNumber)
		body := fmt.Sprintf(
			"<p>Hello %s,</p><p>your order <strong>%s</strong> totalling KES %d has been received.</p>",
			order.Customer.Name, order.OrderNumber, order.TotalAmount,
		)
		if err := s.mailer.Send(ctx, []string{order.Customer.Email}, subject, body); err != nil {
			s.log.Warn("failed to send order confirmation",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
		}
	}()
}

func (s *Service) toResponse(o *domain.Order) domain.Response {
	resp := domain.Response{
		ID:              snowflake.ID(o.ID).String(),
		OrderNumber:     o.OrderNumber,
		Customer:        o.Customer,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		Pricing: domain.PricingResponse{
			Subtotal:     o.Subtotal,
			ShippingCost: o.ShippingCost,
			Tax:          o.Tax,
			Discount:     o.Discount,
			TotalAmount:  o.TotalAmount,
		},
		Payment: domain.PaymentResponse{
			Method:        string(o.PaymentMethod),
			Status:        string(o.PaymentStatus),
			TransactionID: o.PaymentTransactionID,
			PaidAt:        o.PaidAt,
			RefundedAt:    o.RefundedAt,
			RefundAmount:  o.RefundAmount,
		},
		Shipping: domain.ShippingResponse{
			Method:            o.ShippingMethod,
			Cost:              o.ShippingCost,
			TrackingNumber:    o.TrackingNumber,
			Carrier:           o.Carrier,
			EstimatedDelivery: o.EstimatedDelivery,
			ShippedAt:         o.ShippedAt,
			DeliveredAt:       o.DeliveredAt,
		},
		Status:    string(o.Status),
		Notes:     o.Notes,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.CustomerID != nil {
		id := snowflake.ID(*o.CustomerID).String()
		resp.CustomerID = &id
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, domain.ItemResponse{
			ProductID: snowflake.ID(item.ProductID).String(),
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		})
	}
	for _, entry := range o.Timeline {
		resp.Timeline = append(resp.Timeline, domain.TimelineResponse{
			Status:    string(entry.Status),
			Note:      entry.Note,
			ActorID:   actorIDString(entry.ActorID),
			Timestamp: entry.CreatedAt,
		})
	}
	for _, event := range o.PaymentEvents {
		resp.PaymentEvents = append(resp.PaymentEvents, domain.PaymentEventResponse{
			Status:        string(event.Status),
			Amount:        event.Amount,
			TransactionID: event.TransactionID,
			Note:          event.Note,
			ActorID:       actorIDString(event.ActorID),
			Timestamp:     event.CreatedAt,
		})
	}
	return resp
}

func actorIDString(id *int64) *string {
	if id == nil {
		return nil
	}
	value := snowflake.ID(*id).String()
	return &value
}
