// Package domain defines the read models served on the admin dashboard.
package domain

import "context"

type Overview struct {
	TotalRevenue   int64 `json:"total_revenue"`
	TotalOrders    int64 `json:"total_orders"`
	TotalProducts  int64 `json:"total_products"`
	TotalCustomers int64 `json:"total_customers"`
	PendingOrders  int64 `json:"pending_orders"`
	LowStockCount  int64 `json:"low_stock_count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type RevenuePoint struct {
	Day     string `json:"day"`
	Revenue int64  `json:"revenue"`
	Orders  int64  `json:"orders"`
}

type TopProduct struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Units     int64  `json:"units"`
	Revenue   int64  `json:"revenue"`
}

type LowStockProduct struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	Stock      int64  `json:"stock"`
	LowStockAt int64  `json:"low_stock_at"`
}

type RecentOrder struct {
	OrderID      string `json:"order_id"`
	OrderNumber  string `json:"order_number"`
	CustomerName string `json:"customer_name"`
	Total        int64  `json:"total"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

type OverviewResponse struct {
	Overview       Overview      `json:"overview"`
	OrdersByStatus []StatusCount `json:"orders_by_status"`
	RecentOrders   []RecentOrder `json:"recent_orders"`
}

type RevenueResponse struct {
	Days []RevenuePoint `json:"days"`
}

type TopProductsResponse struct {
	Products []TopProduct `json:"products"`
}

type LowStockResponse struct {
	Products []LowStockProduct `json:"products"`
}

type Service interface {
	Overview(ctx context.Context) (OverviewResponse, error)
	Revenue(ctx context.Context, days int) (RevenueResponse, error)
	TopProducts(ctx context.Context, limit int) (TopProductsResponse, error)
	LowStock(ctx context.Context) (LowStockResponse, error)
}
