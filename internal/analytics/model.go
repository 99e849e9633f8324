package analytics

import (
	"time"

	"foodcourt-be/internal/metrics"
	"foodcourt-be/internal/order"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalStalls   int             `json:"totalStalls"`
	TotalOrders   int             `json:"totalOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	PendingOrders int             `json:"pendingOrders"`
}

type RecentOrder struct {
	ID           string          `json:"id"`
	OrderNumber  string          `json:"orderNumber"`
	CustomerName string          `json:"customer"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Status       order.Status    `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type StallRevenue struct {
	StallID string          `json:"stallId"`
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// DailySales is one point of the sales trend, keyed by UTC date.
type DailySales struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// Sale is a completed order as read for trend grouping.
type Sale struct {
	CreatedAt   time.Time
	TotalAmount decimal.Decimal
}

type RealtimeStats struct {
	Connections int                      `json:"connections"`
	Delivery    metrics.DeliverySnapshot `json:"delivery"`
}
