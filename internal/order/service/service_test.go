package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	productdomain "github.com/bondexsafety/backoffice/internal/catalog/product/domain"
	productrepository "github.com/bondexsafety/backoffice/internal/catalog/product/repository"
	"github.com/bondexsafety/backoffice/internal/clock"
	"github.com/bondexsafety/backoffice/internal/config"
	"github.com/bondexsafety/backoffice/internal/notify"
	"github.com/bondexsafety/backoffice/internal/order/domain"
	"github.com/bondexsafety/backoffice/internal/order/repository"
	"github.com/bondexsafety/backoffice/pkg/db"
)

type testEnv struct {
	svc   domain.Service
	clock *clock.FakeClock
	db    *gorm.DB
	node  *snowflake.Node
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&productdomain.Product{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.TimelineEntry{},
		&domain.PaymentEvent{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:          dbConn,
		Log:         zap.NewNop(),
		Cfg:         config.Config{StalePendingAfter: 7 * 24 * time.Hour},
		GenID:       node,
		Clock:       fake,
		Repo:        repository.Provide(),
		ProductRepo: productrepository.Provide(),
		Mailer:      notify.Noop{},
	})

	return &testEnv{svc: svc, clock: fake, db: dbConn, node: node}
}

func (e *testEnv) createProduct(t *testing.T, name string, price, stock int64) *productdomain.Product {
	t.Helper()

	product := &productdomain.Product{
		ID:     e.node.Generate().Int64(),
		Name:   name,
		Slug:   name,
		Price:  price,
		Stock:  stock,
		Status: productdomain.StatusActive,
	}
	if err := e.db.Create(product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}

func (e *testEnv) productStock(t *testing.T, id int64) int64 {
	t.Helper()

	var product productdomain.Product
	if err := e.db.First(&product, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to load product: %v", err)
	}
	return product.Stock
}

func orderRequest(items ...domain.ItemRequest) domain.CreateRequest {
	return domain.CreateRequest{
		Customer: domain.CustomerSnapshot{
			Name:  "Jane Wanjiku",
			Email: "jane@example.com",
			Phone: "+254700000001",
		},
		Items: items,
		ShippingAddress: domain.Address{
			Street:  "Moi Avenue 12",
			City:    "Nairobi",
			Country: "Kenya",
		},
		PaymentMethod: "mpesa",
	}
}

func itemRef(p *productdomain.Product, qty int64) domain.ItemRequest {
	return domain.ItemRequest{
		ProductID: snowflake.ID(p.ID).String(),
		Quantity:  qty,
	}
}

func TestCreateOrderPricing(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 2)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if resp.Pricing.Subtotal != 2000 {
		t.Fatalf("expected subtotal 2000, got %d", resp.Pricing.Subtotal)
	}
	if resp.Pricing.ShippingCost != 300 {
		t.Fatalf("expected shipping 300, got %d", resp.Pricing.ShippingCost)
	}
	if resp.Pricing.Tax != 320 {
		t.Fatalf("expected tax 320, got %d", resp.Pricing.Tax)
	}
	if resp.Pricing.TotalAmount != 2620 {
		t.Fatalf("expected total 2620, got %d", resp.Pricing.TotalAmount)
	}
	if env.productStock(t, product.ID) != 8 {
		t.Fatalf("expected stock 8, got %d", env.productStock(t, product.ID))
	}
}

func TestCreateOrderRemoteCitySurcharge(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	req := orderRequest(itemRef(product, 2))
	req.ShippingAddress.City = "GARISSA"

	resp, err := env.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if resp.Pricing.ShippingCost != 500 {
		t.Fatalf("expected shipping 500, got %d", resp.Pricing.ShippingCost)
	}
	if resp.Pricing.TotalAmount != 2820 {
		t.Fatalf("expected total 2820, got %d", resp.Pricing.TotalAmount)
	}
}

func TestCreateOrderFreeShipping(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Work Boots", 2500, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 2)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if resp.Pricing.ShippingCost != 0 {
		t.Fatalf("expected free shipping, got %d", resp.Pricing.ShippingCost)
	}
}

func TestCreateOrderNumberFormat(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 100)

	first, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 1)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if first.OrderNumber != "ORD2503100001" {
		t.Fatalf("expected ORD2503100001, got %s", first.OrderNumber)
	}

	second, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 1)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if second.OrderNumber != "ORD2503100002" {
		t.Fatalf("expected ORD2503100002, got %s", second.OrderNumber)
	}
}

func TestOrderNumberCollisionRetries(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 100)

	// A concurrent writer committed ORD...0001 between our sequence read
	// and insert; its daily_sequence is not visible to the MAX query yet.
	squatter := &domain.Order{
		ID:          env.node.Generate().Int64(),
		OrderNumber: "ORD" + env.clock.Now().Format("060102") + "0001",
		Customer: domain.CustomerSnapshot{
			Name:  "Other Customer",
			Email: "other@example.com",
		},
		PaymentMethod: domain.MethodMpesa,
		PaymentStatus: domain.PaymentPending,
		Status:        domain.OrderPending,
	}
	if err := env.db.Create(squatter).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 2)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if resp.OrderNumber != "ORD2503100002" {
		t.Fatalf("expected retry to draw 0002, got %s", resp.OrderNumber)
	}
	if env.productStock(t, product.ID) != 98 {
		t.Fatalf("expected exactly one decrement, got stock %d", env.productStock(t, product.ID))
	}
	if len(resp.Items) != 1 {
		t.Fatalf("expected one line item after retry, got %d", len(resp.Items))
	}
}

func TestOrderNumberDailyReset(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 100)

	if _, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 1))); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	env.clock.Advance(24 * time.Hour)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 1)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if resp.OrderNumber != "ORD2503110001" {
		t.Fatalf("expected sequence reset to 0001, got %s", resp.OrderNumber)
	}
}

func TestCreateOrderInsufficientStockAbortsWholeBatch(t *testing.T) {
	env := newTestEnv(t)
	plenty := env.createProduct(t, "Safety Helmet", 1000, 50)
	scarce := env.createProduct(t, "Welding Gloves", 800, 1)

	_, err := env.svc.Create(context.Background(), orderRequest(
		itemRef(plenty, 2),
		itemRef(scarce, 5),
	))

	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductName != "Welding Gloves" || stockErr.Available != 1 || stockErr.Requested != 5 {
		t.Fatalf("unexpected error detail: %+v", stockErr)
	}

	if env.productStock(t, plenty.ID) != 50 {
		t.Fatalf("expected no stock mutation, got %d", env.productStock(t, plenty.ID))
	}
	if env.productStock(t, scarce.ID) != 1 {
		t.Fatalf("expected no stock mutation, got %d", env.productStock(t, scarce.ID))
	}
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Old Goggles", 500, 10)
	env.db.Model(product).Update("status", productdomain.StatusInactive)

	_, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 1)))

	var unavailable *domain.ProductUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ProductUnavailableError, got %v", err)
	}
}

func TestCreateOrderSnapshotsSalePrice(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)
	sale := int64(750)
	env.db.Model(product).Update("sale_price", sale)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 2)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if resp.Items[0].UnitPrice != 750 {
		t.Fatalf("expected sale price snapshot, got %d", resp.Items[0].UnitPrice)
	}
	if resp.Pricing.Subtotal != 1500 {
		t.Fatalf("expected subtotal 1500, got %d", resp.Pricing.Subtotal)
	}
}

func TestStatusHappyPath(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 1)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	for _, status := range []string{"confirmed", "processing", "shipped", "delivered"} {
		resp, err = env.svc.UpdateStatus(context.Background(), domain.StatusRequest{
			ID:     resp.ID,
			Status: status,
		})
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
		if resp.Status != status {
			t.Fatalf("expected status %s, got %s", status, resp.Status)
		}
	}

	// Delivery forces the payment state to paid.
	if resp.Payment.Status != "paid" {
		t.Fatalf("expected payment paid after delivery, got %s", resp.Payment.Status)
	}
	if len(resp.Timeline) != 5 {
		t.Fatalf("expected 5 timeline entries, got %d", len(resp.Timeline))
	}
}

func TestProcessingDoesNotDecrementStockAgain(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 3)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if env.productStock(t, product.ID) != 7 {
		t.Fatalf("expected stock 7 after creation, got %d", env.productStock(t, product.ID))
	}

	for _, status := range []string{"confirmed", "processing"} {
		if resp, err = env.svc.UpdateStatus(context.Background(), domain.StatusRequest{
			ID:     resp.ID,
			Status: status,
		}); err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}

	if env.productStock(t, product.ID) != 7 {
		t.Fatalf("expected stock unchanged at 7, got %d", env.productStock(t, product.ID))
	}
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 1)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if _, err = env.svc.UpdateStatus(context.Background(), domain.StatusRequest{
		ID:     resp.ID,
		Status: "cancelled",
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err = env.svc.UpdateStatus(context.Background(), domain.StatusRequest{
		ID:     resp.ID,
		Status: "confirmed",
	})
	var transition *domain.IllegalTransitionError
	if !errors.As(err, &transition) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
}

func TestCancelRestoresExactQuantities(t *testing.T) {
	env := newTestEnv(t)
	helmet := env.createProduct(t, "Safety Helmet", 1000, 10)
	gloves := env.createProduct(t, "Welding Gloves", 800, 20)

	resp, err := env.svc.Create(context.Background(), orderRequest(
		itemRef(helmet, 3),
		itemRef(gloves, 5),
	))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if _, err = env.svc.UpdateStatus(context.Background(), domain.StatusRequest{
		ID:     resp.ID,
		Status: "cancelled",
		Note:   "customer changed mind",
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if env.productStock(t, helmet.ID) != 10 {
		t.Fatalf("expected helmet stock restored to 10, got %d", env.productStock(t, helmet.ID))
	}
	if env.productStock(t, gloves.ID) != 20 {
		t.Fatalf("expected gloves stock restored to 20, got %d", env.productStock(t, gloves.ID))
	}
}

func TestRefundCap(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 2)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	total := resp.Pricing.TotalAmount

	if resp, err = env.svc.Refund(context.Background(), domain.RefundRequest{
		ID:     resp.ID,
		Amount: 1000,
		Reason: "damaged item",
	}); err != nil {
		t.Fatalf("partial refund failed: %v", err)
	}
	if resp.Payment.Status != "partially_refunded" {
		t.Fatalf("expected partially_refunded, got %s", resp.Payment.Status)
	}

	_, err = env.svc.Refund(context.Background(), domain.RefundRequest{
		ID:     resp.ID,
		Amount: total,
		Reason: "refund above balance",
	})
	var over *domain.RefundExceedsBalanceError
	if !errors.As(err, &over) {
		t.Fatalf("expected RefundExceedsBalanceError, got %v", err)
	}
	if over.MaxRefundable != total-1000 {
		t.Fatalf("expected max refundable %d, got %d", total-1000, over.MaxRefundable)
	}
}

func TestFullRefundCancelsAndRestoresOnce(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 4)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	resp, err = env.svc.Refund(context.Background(), domain.RefundRequest{
		ID:     resp.ID,
		Amount: resp.Pricing.TotalAmount,
		Reason: "order lost in transit",
	})
	if err != nil {
		t.Fatalf("full refund failed: %v", err)
	}

	if resp.Payment.Status != "refunded" {
		t.Fatalf("expected payment refunded, got %s", resp.Payment.Status)
	}
	if resp.Status != "cancelled" {
		t.Fatalf("expected order cancelled, got %s", resp.Status)
	}
	if env.productStock(t, product.ID) != 10 {
		t.Fatalf("expected stock restored to 10, got %d", env.productStock(t, product.ID))
	}

	_, err = env.svc.Refund(context.Background(), domain.RefundRequest{
		ID:     resp.ID,
		Amount: 1,
		Reason: "again",
	})
	if !errors.Is(err, domain.ErrAlreadyRefunded) {
		t.Fatalf("expected ErrAlreadyRefunded, got %v", err)
	}
}

func TestCancelThenRefundDoesNotRestoreTwice(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 4)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if _, err = env.svc.UpdateStatus(context.Background(), domain.StatusRequest{
		ID:     resp.ID,
		Status: "cancelled",
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if env.productStock(t, product.ID) != 10 {
		t.Fatalf("expected stock restored to 10, got %d", env.productStock(t, product.ID))
	}

	if _, err = env.svc.Refund(context.Background(), domain.RefundRequest{
		ID:     resp.ID,
		Amount: resp.Pricing.TotalAmount,
		Reason: "refund after cancellation",
	}); err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	if env.productStock(t, product.ID) != 10 {
		t.Fatalf("expected stock to stay at 10, got %d", env.productStock(t, product.ID))
	}
}

func TestGuestLookupRequiresMatchingEmail(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 1)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	found, err := env.svc.GetByNumber(context.Background(), resp.OrderNumber, "JANE@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if found.OrderNumber != resp.OrderNumber {
		t.Fatalf("expected order %s, got %s", resp.OrderNumber, found.OrderNumber)
	}

	if _, err = env.svc.GetByNumber(context.Background(), resp.OrderNumber, "stranger@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong email, got %v", err)
	}
}

func TestDeletePendingOnlyWhenStale(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 2)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	if err = env.svc.Delete(context.Background(), resp.ID, nil); !errors.Is(err, domain.ErrDeleteNotAllowed) {
		t.Fatalf("expected ErrDeleteNotAllowed for fresh pending order, got %v", err)
	}

	env.clock.Advance(8 * 24 * time.Hour)

	if err = env.svc.Delete(context.Background(), resp.ID, nil); err != nil {
		t.Fatalf("delete of stale pending order failed: %v", err)
	}
	if env.productStock(t, product.ID) != 10 {
		t.Fatalf("expected stock restored on delete, got %d", env.productStock(t, product.ID))
	}

	if _, err = env.svc.Get(context.Background(), resp.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected order gone, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 100)

	var cancelledID string
	for i := 0; i < 3; i++ {
		resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 1)))
		if err != nil {
			t.Fatalf("failed to create order: %v", err)
		}
		if i == 0 {
			cancelledID = resp.ID
		}
	}
	if _, err := env.svc.UpdateStatus(context.Background(), domain.StatusRequest{
		ID:     cancelledID,
		Status: "cancelled",
	}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	cancelled, info, err := env.svc.List(context.Background(), domain.ListRequest{Status: "cancelled"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(cancelled) != 1 || info.TotalItems != 1 {
		t.Fatalf("expected 1 cancelled order, got %d", len(cancelled))
	}

	all, info, err := env.svc.List(context.Background(), domain.ListRequest{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 || info.TotalItems != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}
}

func TestUpdatePaymentIndependentOfStatus(t *testing.T) {
	env := newTestEnv(t)
	product := env.createProduct(t, "Safety Helmet", 1000, 10)

	resp, err := env.svc.Create(context.Background(), orderRequest(itemRef(product, 1)))
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	resp, err = env.svc.UpdatePayment(context.Background(), domain.PaymentRequest{
		ID:            resp.ID,
		Status:        "paid",
		TransactionID: fmt.Sprintf("MPESA-%d", time.Now().Unix()),
	})
	if err != nil {
		t.Fatalf("payment update failed: %v", err)
	}

	if resp.Payment.Status != "paid" {
		t.Fatalf("expected payment paid, got %s", resp.Payment.Status)
	}
	if resp.Status != "pending" {
		t.Fatalf("expected order status unchanged, got %s", resp.Status)
	}
	if len(resp.PaymentEvents) != 1 {
		t.Fatalf("expected 1 payment event, got %d", len(resp.PaymentEvents))
	}
}
