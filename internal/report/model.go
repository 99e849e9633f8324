package report

import (
	"time"

	"foodcourt-be/internal/order"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeSales        Type = "sales"
	TypePerformance  Type = "performance"
	TypeStallRanking Type = "stall-ranking"
)

// Params narrow the orders a report is computed over. Nil bounds are open.
type Params struct {
	From    *time.Time
	To      *time.Time
	StallID string
}

type DateRange struct {
	From *time.Time `bson:"from,omitempty" json:"from,omitempty"`
	To   *time.Time `bson:"to,omitempty" json:"to,omitempty"`
}

// Report is an archived, immutable snapshot. Exactly one of the data
// sections is set, matching Type.
type Report struct {
	ID          string    `bson:"_id" json:"id"`
	Type        Type      `bson:"type" json:"type"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	GeneratedBy string    `bson:"generated_by" json:"generatedBy"`
	Range       DateRange `bson:"date_range" json:"dateRange"`
	StallID     string    `bson:"stall_id,omitempty" json:"stallId,omitempty"`

	Sales       *SalesData       `bson:"sales,omitempty" json:"sales,omitempty"`
	Performance *PerformanceData `bson:"performance,omitempty" json:"performance,omitempty"`
	Ranking     *RankingData     `bson:"ranking,omitempty" json:"ranking,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Amount is a revenue total under Key. Label names the key for display
// when the key is an id.
type Amount struct {
	Key    string          `bson:"key" json:"key"`
	Label  string          `bson:"label,omitempty" json:"label,omitempty"`
	Amount decimal.Decimal `bson:"amount" json:"amount"`
}

type SalesData struct {
	TotalSales        decimal.Decimal `bson:"total_sales" json:"totalSales"`
	TotalOrders       int             `bson:"total_orders" json:"totalOrders"`
	AverageOrderValue decimal.Decimal `bson:"average_order_value" json:"averageOrderValue"`
	ByStall           []Amount        `bson:"by_stall" json:"salesByStall"`
	ByDate            []Amount        `bson:"by_date" json:"salesByDate"`
}

type StatusBucket struct {
	Status  order.Status    `bson:"status" json:"status"`
	Count   int             `bson:"count" json:"count"`
	Revenue decimal.Decimal `bson:"revenue" json:"revenue"`
}

type PerformanceData struct {
	TotalOrders int            `bson:"total_orders" json:"totalOrders"`
	ByStatus    []StatusBucket `bson:"by_status" json:"byStatus"`
}

type RankedStall struct {
	Rank         int             `bson:"rank" json:"rank"`
	StallID      string          `bson:"stall_id" json:"stallId"`
	Name         string          `bson:"name" json:"name"`
	TotalRevenue decimal.Decimal `bson:"total_revenue" json:"totalRevenue"`
	TotalOrders  int             `bson:"total_orders" json:"totalOrders"`
	ItemsSold    int             `bson:"items_sold" json:"totalItemsSold"`
}

type RankingData struct {
	Stalls      []RankedStall `bson:"stalls" json:"rankedStalls"`
	TotalStalls int           `bson:"total_stalls" json:"totalStalls"`
}

// OrderFacts is the slice of an order a report aggregates over.
type OrderFacts struct {
	ID          string
	Status      order.Status
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	Lines       []LineFacts
}

type LineFacts struct {
	StallID   string
	StallName string
	Quantity  int
	Price     decimal.Decimal
}

func (l LineFacts) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
