package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bondexsafety/backoffice/internal/clock"
	dashboard "github.com/bondexsafety/backoffice/internal/dashboard/domain"
)

// Revenue counts paid money net of refunds, so fully refunded orders
// contribute zero.
const revenueFilter = "payment_status IN ('paid', 'partially_refunded', 'refunded')"

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p Params) dashboard.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
	}
}

type statusCountRow struct {
	Status string `gorm:"column:status"`
	Count  int64  `gorm:"column:count"`
}

type recentOrderRow struct {
	ID           int64     `gorm:"column:id"`
	OrderNumber  string    `gorm:"column:order_number"`
	CustomerName string    `gorm:"column:customer_name"`
	TotalAmount  int64     `gorm:"column:total_amount"`
	Status       string    `gorm:"column:status"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (s *Service) Overview(ctx context.Context) (dashboard.OverviewResponse, error) {
	var resp dashboard.OverviewResponse

	query := `
		SELECT
			(SELECT COALESCE(SUM(total_amount - refund_amount), 0) FROM orders WHERE ` + revenueFilter + `) AS total_revenue,
			(SELECT COUNT(*) FROM orders) AS total_orders,
			(SELECT COUNT(*) FROM products) AS total_products,
			(SELECT COUNT(*) FROM users WHERE role = 'customer') AS total_customers,
			(SELECT COUNT(*) FROM orders WHERE status = 'pending') AS pending_orders,
			(SELECT COUNT(*) FROM products WHERE stock <= low_stock_at AND status IN ('active', 'out_of_stock')) AS low_stock_count`

	if err := s.db.WithContext(ctx).Raw(query).Scan(&resp.Overview).Error; err != nil {
		return dashboard.OverviewResponse{}, err
	}

	var statusRows []statusCountRow
	if err := s.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) AS count
		FROM orders
		GROUP BY status
		ORDER BY count DESC`).Scan(&statusRows).Error; err != nil {
		return dashboard.OverviewResponse{}, err
	}

	resp.OrdersByStatus = make([]dashboard.StatusCount, 0, len(statusRows))
	for _, row := range statusRows {
		resp.OrdersByStatus = append(resp.OrdersByStatus, dashboard.StatusCount{
			Status: row.Status,
			Count:  row.Count,
		})
	}

	var orderRows []recentOrderRow
	if err := s.db.WithContext(ctx).Raw(`
		SELECT id, order_number, customer_name, total_amount, status, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT 10`).Scan(&orderRows).Error; err != nil {
		return dashboard.OverviewResponse{}, err
	}

	resp.RecentOrders = make([]dashboard.RecentOrder, 0, len(orderRows))
	for _, row := range orderRows {
		resp.RecentOrders = append(resp.RecentOrders, dashboard.RecentOrder{
			OrderID:      strconv.FormatInt(row.ID, 10),
			OrderNumber:  row.OrderNumber,
			CustomerName: row.CustomerName,
			Total:        row.TotalAmount,
			Status:       row.Status,
			CreatedAt:    row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	return resp, nil
}

type revenueRow struct {
	CreatedAt    time.Time `gorm:"column:created_at"`
	TotalAmount  int64     `gorm:"column:total_amount"`
	RefundAmount int64     `gorm:"column:refund_amount"`
}

// Revenue returns a per-day series covering the last n days, zero-filled
// for days without orders. Bucketing happens in Go since date truncation
// syntax differs across the supported databases.
func (s *Service) Revenue(ctx context.Context, days int) (dashboard.RevenueResponse, error) {
	if days < 1 {
		days = 30
	}
	if days > 365 {
		days = 365
	}

	now := s.clock.Now().UTC()
	since := now.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	var rows []revenueRow
	if err := s.db.WithContext(ctx).Raw(`
		SELECT created_at, total_amount, refund_amount
		FROM orders
		WHERE created_at >= ? AND `+revenueFilter, since).Scan(&rows).Error; err != nil {
		return dashboard.RevenueResponse{}, err
	}

	revenue := make(map[string]int64, days)
	counts := make(map[string]int64, days)
	for _, row := range rows {
		day := row.CreatedAt.UTC().Format("2006-01-02")
		revenue[day] += row.TotalAmount - row.RefundAmount
		counts[day]++
	}

	points := make([]dashboard.RevenuePoint, 0, days)
	for d := 0; d < days; d++ {
		day := since.AddDate(0, 0, d).Format("2006-01-02")
		points = append(points, dashboard.RevenuePoint{
			Day:     day,
			Revenue: revenue[day],
			Orders:  counts[day],
		})
	}

	return dashboard.RevenueResponse{Days: points}, nil
}

type topProductRow struct {
	ProductID int64  `gorm:"column:product_id"`
	Name      string `gorm:"column:name"`
	Units     int64  `gorm:"column:units"`
	Revenue   int64  `gorm:"column:revenue"`
}

func (s *Service) TopProducts(ctx context.Context, limit int) (dashboard.TopProductsResponse, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	var rows []topProductRow
	query := `
		SELECT oi.product_id,
		       oi.name,
		       SUM(oi.quantity) AS units,
		       SUM(oi.total) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status NOT IN ('cancelled', 'refunded')
		GROUP BY oi.product_id, oi.name
		ORDER BY units DESC, revenue DESC
		LIMIT ?`

	if err := s.db.WithContext(ctx).Raw(query, limit).Scan(&rows).Error; err != nil {
		return dashboard.TopProductsResponse{}, err
	}

	products := make([]dashboard.TopProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, dashboard.TopProduct{
			ProductID: strconv.FormatInt(row.ProductID, 10),
			Name:      row.Name,
			Units:     row.Units,
			Revenue:   row.Revenue,
		})
	}

	return dashboard.TopProductsResponse{Products: products}, nil
}

type lowStockRow struct {
	ID         int64  `gorm:"column:id"`
	Name       string `gorm:"column:name"`
	Stock      int64  `gorm:"column:stock"`
	LowStockAt int64  `gorm:"column:low_stock_at"`
}

func (s *Service) LowStock(ctx context.Context) (dashboard.LowStockResponse, error) {
	var rows []lowStockRow
	if err := s.db.WithContext(ctx).Raw(`
		SELECT id, name, stock, low_stock_at
		FROM products
		WHERE stock <= low_stock_at AND status IN ('active', 'out_of_stock')
		ORDER BY stock ASC, name ASC
		LIMIT 50`).Scan(&rows).Error; err != nil {
		return dashboard.LowStockResponse{}, err
	}

	products := make([]dashboard.LowStockProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, dashboard.LowStockProduct{
			ProductID:  strconv.FormatInt(row.ID, 10),
			Name:       row.Name,
			Stock:      row.Stock,
			LowStockAt: row.LowStockAt,
		})
	}

	return dashboard.LowStockResponse{Products: products}, nil
}
