package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"foodcourt-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Dashboard(ctx context.Context) (DashboardStats, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
	TopStalls(ctx context.Context, limit int) ([]StallRevenue, error)
	CompletedSince(ctx context.Context, since time.Time) ([]Sale, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) fail(ctx context.Context, method string, err error) error {
	logger.FromCtx(ctx).Error("analytics query failed",
		zap.String("layer", "repository"),
		zap.String("method", method),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %w", ErrFailedLoadAnalytics, err)
}

func (r *repository) Dashboard(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM stalls),
			(SELECT COUNT(*) FROM orders),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = 'COMPLETED'),
			(SELECT COUNT(*) FROM orders WHERE status = 'PENDING')
	`).Scan(&s.TotalStalls, &s.TotalOrders, &s.TotalRevenue, &s.PendingOrders)
	if err != nil {
		return DashboardStats{}, r.fail(ctx, "Dashboard", err)
	}
	return s, nil
}

func (r *repository) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, u.name, o.total_amount, o.status, o.created_at
		FROM orders o
		JOIN users u ON u.id = o.customer_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, r.fail(ctx, "RecentOrders", err)
	}
	defer rows.Close()

	out := []RecentOrder{}
	for rows.Next() {
		var o RecentOrder
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.TotalAmount, &o.Status, &o.CreatedAt); err != nil {
			return nil, r.fail(ctx, "RecentOrders", err)
		}
		o.OrderNumber = orderNumber(o.ID)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, "RecentOrders", err)
	}
	return out, nil
}

// TopStalls ranks stalls by revenue from lines of completed orders.
func (r *repository) TopStalls(ctx context.Context, limit int) ([]StallRevenue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.name,
			COALESCE(SUM(ol.quantity * ol.price_at_order_time), 0) AS revenue,
			COUNT(DISTINCT o.id) AS orders
		FROM stalls s
		JOIN order_lines ol ON ol.stall_id = s.id
		JOIN orders o ON o.id = ol.order_id
		WHERE o.status = 'COMPLETED'
		GROUP BY s.id, s.name
		ORDER BY revenue DESC, s.name
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, r.fail(ctx, "TopStalls", err)
	}
	defer rows.Close()

	out := []StallRevenue{}
	for rows.Next() {
		var s StallRevenue
		if err := rows.Scan(&s.StallID, &s.Name, &s.Revenue, &s.Orders); err != nil {
			return nil, r.fail(ctx, "TopStalls", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, "TopStalls", err)
	}
	return out, nil
}

func (r *repository) CompletedSince(ctx context.Context, since time.Time) ([]Sale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT created_at, total_amount
		FROM orders
		WHERE status = 'COMPLETED' AND created_at >= $1
		ORDER BY created_at
	`, since)
	if err != nil {
		return nil, r.fail(ctx, "CompletedSince", err)
	}
	defer rows.Close()

	var out []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.CreatedAt, &s.TotalAmount); err != nil {
			return nil, r.fail(ctx, "CompletedSince", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, "CompletedSince", err)
	}
	return out, nil
}
