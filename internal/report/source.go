package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/order"

	"go.uber.org/zap"
)

// Source reads the orders a report aggregates over.
type Source interface {
	Orders(ctx context.Context, status *order.Status, from, to *time.Time) ([]OrderFacts, error)
}

type sqlSource struct {
	db *sql.DB
}

func NewSource(db *sql.DB) Source {
	return &sqlSource{db: db}
}

func (s *sqlSource) Orders(ctx context.Context, status *order.Status, from, to *time.Time) ([]OrderFacts, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Orders"),
	)

	query := `
		SELECT o.id, o.status, o.total_amount, o.created_at,
			ol.stall_id, COALESCE(s.name, ''), ol.quantity, ol.price_at_order_time
		FROM orders o
		JOIN order_lines ol ON ol.order_id = o.id
		LEFT JOIN stalls s ON s.id = ol.stall_id
		WHERE 1=1`
	args := []any{}
	argIndex := 1

	if status != nil {
		query += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}
	if from != nil {
		query += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
		args = append(args, *from)
		argIndex++
	}
	if to != nil {
		query += fmt.Sprintf(" AND o.created_at <= $%d", argIndex)
		args = append(args, *to)
	}
	query += " ORDER BY o.created_at, o.id, ol.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query report orders", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadOrders, err)
	}
	defer rows.Close()

	// rows arrive grouped by order
	var out []OrderFacts
	for rows.Next() {
		var (
			o OrderFacts
			l LineFacts
		)
		if err := rows.Scan(&o.ID, &o.Status, &o.TotalAmount, &o.CreatedAt,
			&l.StallID, &l.StallName, &l.Quantity, &l.Price); err != nil {
			log.Error("failed to scan report row", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrFailedLoadOrders, err)
		}
		if n := len(out); n > 0 && out[n-1].ID == o.ID {
			out[n-1].Lines = append(out[n-1].Lines, l)
			continue
		}
		o.Lines = []LineFacts{l}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadOrders, err)
	}
	return out, nil
}
