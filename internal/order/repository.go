package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"foodcourt-be/internal/cart"
	"foodcourt-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// BuildFunc prices the locked cart lines into an order.
type BuildFunc func(lines []cart.Line, items map[string]StockItem) (*Order, error)

// DecideFunc validates a transition against the freshly locked order and
// returns the status to write.
type DecideFunc func(current *Order) (Status, error)

type Repository interface {
	// PlaceOrder converts the customer's cart into an order, decrements stock
	// and clears the cart in one transaction.
	PlaceOrder(ctx context.Context, customerID string, build BuildFunc) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, scope Scope, f Filter) ([]Order, error)
	// UpdateStatus locks the order row, asks decide for the next status and
	// writes it guarded on the status it read.
	UpdateStatus(ctx context.Context, id string, decide DecideFunc) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	o.id, o.customer_id, o.total_amount, o.status, o.payment_status, o.payment_method,
	o.delivery_address, o.notes, o.created_at, o.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*Order, error) {
	var o Order
	if err := row.Scan(
		&o.ID, &o.CustomerID, &o.TotalAmount, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.DeliveryAddress, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Lines = []Line{}
	return &o, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadLines(ctx context.Context, q queryer, orderIDs []string) (map[string][]Line, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT order_id, id, menu_item_id, stall_id, name, quantity, price_at_order_time
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]Line, len(orderIDs))
	for rows.Next() {
		var orderID string
		var l Line
		if err := rows.Scan(&orderID, &l.ID, &l.MenuItemID, &l.StallID, &l.Name, &l.Quantity, &l.PriceAtOrderTime); err != nil {
			return nil, err
		}
		out[orderID] = append(out[orderID], l)
	}
	return out, rows.Err()
}

func (r *repository) PlaceOrder(ctx context.Context, customerID string, build BuildFunc) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "PlaceOrder"),
		zap.String("customer_id", customerID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}
	defer tx.Rollback()

	// 1. Lock the cart so a concurrent checkout of the same cart waits
	var cartID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`, customerID).Scan(&cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		log.Error("failed to lock cart", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}

	lines, err := r.cartLines(ctx, tx, cartID)
	if err != nil {
		log.Error("failed to read cart lines", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}

	// 2. Re-read every referenced menu item under lock, in id order
	items, err := r.lockMenuItems(ctx, tx, lines)
	if err != nil {
		log.Error("failed to lock menu items", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}

	o, err := build(lines, items)
	if err != nil {
		log.Info("order rejected", zap.Error(err))
		return nil, err
	}

	// 3. Persist order and lines
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, customer_id, total_amount, status, payment_status, payment_method,
			delivery_address, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, o.ID, o.CustomerID, o.TotalAmount, o.Status, o.PaymentStatus, o.PaymentMethod,
		o.DeliveryAddress, o.Notes, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}

	for _, l := range o.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (
				id, order_id, menu_item_id, stall_id, name, quantity, price_at_order_time
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, l.ID, o.ID, l.MenuItemID, l.StallID, l.Name, l.Quantity, l.PriceAtOrderTime)
		if err != nil {
			log.Error("failed to insert order line", zap.String("menu_item_id", l.MenuItemID), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
		}

		// 4. Decrement-if-sufficient; zero rows means someone else took the stock
		res, err := tx.ExecContext(ctx, `
			UPDATE menu_items
			SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1
		`, l.Quantity, l.MenuItemID)
		if err != nil {
			log.Error("failed to decrement stock", zap.String("menu_item_id", l.MenuItemID), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			log.Warn("stock decrement rejected", zap.String("menu_item_id", l.MenuItemID))
			return nil, ErrInsufficientStock
		}
	}

	// 5. Clear the cart
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		log.Error("failed to clear cart lines", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE carts SET total_amount = 0, updated_at = NOW() WHERE id = $1`, cartID); err != nil {
		log.Error("failed to reset cart total", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedCreateOrder, err)
	}

	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.Int("lines", len(o.Lines)),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)
	return o, nil
}

func (r *repository) cartLines(ctx context.Context, tx *sql.Tx, cartID string) ([]cart.Line, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, menu_item_id, quantity, unit_price
		FROM cart_lines
		WHERE cart_id = $1
		ORDER BY position
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []cart.Line
	for rows.Next() {
		var l cart.Line
		if err := rows.Scan(&l.ID, &l.MenuItemID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) lockMenuItems(ctx context.Context, tx *sql.Tx, lines []cart.Line) (map[string]StockItem, error) {
	items := make(map[string]StockItem, len(lines))
	if len(lines) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MenuItemID)
	}
	sort.Strings(ids)

	rows, err := tx.QueryContext(ctx, `
		SELECT id, stall_id, name, price, stock, is_active
		FROM menu_items
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it StockItem
		if err := rows.Scan(&it.MenuItemID, &it.StallID, &it.Name, &it.Price, &it.Stock, &it.IsActive); err != nil {
			return nil, err
		}
		items[it.MenuItemID] = it
	}
	return items, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByID"),
		zap.String("order_id", id),
	)

	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT`+orderColumns+` FROM orders o WHERE o.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to query order", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadOrder, err)
	}

	lines, err := loadLines(ctx, r.db, []string{o.ID})
	if err != nil {
		log.Error("failed to query order lines", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadOrder, err)
	}
	if ls, ok := lines[o.ID]; ok {
		o.Lines = ls
	}
	return o, nil
}

func (r *repository) List(ctx context.Context, scope Scope, f Filter) ([]Order, error) {
	limit, page := normalizePage(f.Limit, f.Page)
	offset := (page - 1) * limit

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Int("limit", limit),
		zap.Int("page", page),
	)

	query := `SELECT` + orderColumns + ` FROM orders o WHERE 1=1`
	args := []any{}
	argIndex := 1

	// ---------- ACCESS CONTROL ----------
	if scope.CustomerID != "" {
		query += fmt.Sprintf(" AND o.customer_id = $%d", argIndex)
		args = append(args, scope.CustomerID)
		argIndex++
	}
	if scope.StallOwnerID != "" {
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM order_lines ol
			JOIN stalls s ON s.id = ol.stall_id
			WHERE ol.order_id = o.id AND s.owner_id = $%d)`, argIndex)
		args = append(args, scope.StallOwnerID)
		argIndex++
	}

	// ---------- FILTERING ----------
	if f.Status != nil {
		query += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, *f.Status)
		argIndex++
	}
	if f.CreatedFrom != nil {
		query += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
		args = append(args, *f.CreatedFrom)
		argIndex++
	}
	if f.CreatedTo != nil {
		query += fmt.Sprintf(" AND o.created_at <= $%d", argIndex)
		args = append(args, *f.CreatedTo)
		argIndex++
	}
	if f.MinAmount != nil {
		query += fmt.Sprintf(" AND o.total_amount >= $%d", argIndex)
		args = append(args, *f.MinAmount)
		argIndex++
	}
	if f.MaxAmount != nil {
		query += fmt.Sprintf(" AND o.total_amount <= $%d", argIndex)
		args = append(args, *f.MaxAmount)
		argIndex++
	}

	query += " ORDER BY o.created_at DESC, o.id DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	log.Debug("executing list orders query", zap.String("query", query), zap.Int("args", len(args)))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadOrder, err)
	}
	defer rows.Close()

	orders := []Order{}
	ids := []string{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrFailedLoadOrder, err)
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadOrder, err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	lines, err := loadLines(ctx, r.db, ids)
	if err != nil {
		log.Error("failed to query order lines", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadOrder, err)
	}
	for i := range orders {
		if ls, ok := lines[orders[i].ID]; ok {
			orders[i].Lines = ls
		}
	}

	log.Info("list orders success", zap.Int("count", len(orders)))
	return orders, nil
}

func normalizePage(limit, page int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return limit, page
}

func (r *repository) UpdateStatus(ctx context.Context, id string, decide DecideFunc) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", id),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedUpdateOrder, err)
	}
	defer tx.Rollback()

	o, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT`+orderColumns+` FROM orders o WHERE o.id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to lock order", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedUpdateOrder, err)
	}

	lines, err := loadLines(ctx, tx, []string{o.ID})
	if err != nil {
		log.Error("failed to query order lines", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedUpdateOrder, err)
	}
	if ls, ok := lines[o.ID]; ok {
		o.Lines = ls
	}

	next, err := decide(o)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING updated_at
	`, next, o.ID, o.Status).Scan(&o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("status changed underneath the row lock", zap.String("expected", string(o.Status)))
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		log.Error("failed to update order status", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedUpdateOrder, err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit status update", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedUpdateOrder, err)
	}

	log.Info("order status updated",
		zap.String("from", string(o.Status)),
		zap.String("to", string(next)),
	)
	o.Status = next
	return o, nil
}
