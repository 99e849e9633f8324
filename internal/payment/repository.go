package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodcourt-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// RecordFunc decides the payment to store against the locked order.
type RecordFunc func(o OrderSnapshot) (*Payment, error)

type Repository interface {
	// Record stores a payment and updates the order's payment status in one
	// transaction, holding the order row lock while record decides.
	Record(ctx context.Context, orderID string, record RecordFunc) (*Payment, error)
	GetByOrder(ctx context.Context, orderID string) (*Payment, error)
	GetByID(ctx context.Context, id string) (*Payment, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, order_id, user_id, amount, method, status, transaction_id, created_at`

func scanPayment(row interface{ Scan(dest ...any) error }) (*Payment, error) {
	var p Payment
	if err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.Amount, &p.Method, &p.Status, &p.TransactionID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Record(ctx context.Context, orderID string, record RecordFunc) (*Payment, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Record"),
		zap.String("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedProcess, err)
	}
	defer tx.Rollback()

	var snap OrderSnapshot
	err = tx.QueryRowContext(ctx, `
		SELECT id, customer_id, total_amount, payment_status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(&snap.ID, &snap.CustomerID, &snap.TotalAmount, &snap.PaymentStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to lock order", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedProcess, err)
	}

	p, err := record(snap)
	if err != nil {
		return nil, err
	}
	_, orderStatus := Settle(p.Method)

	err = tx.QueryRowContext(ctx, `
		INSERT INTO payments (id, order_id, user_id, amount, method, status, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, p.ID, p.OrderID, p.UserID, p.Amount, p.Method, p.Status, p.TransactionID).Scan(&p.CreatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return nil, ErrDuplicateTxn
	}
	if err != nil {
		log.Error("failed to insert payment", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedProcess, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2`,
		orderStatus, orderID,
	); err != nil {
		log.Error("failed to update order payment status", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedProcess, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedProcess, err)
	}

	log.Info("payment recorded",
		zap.String("payment_id", p.ID),
		zap.String("method", string(p.Method)),
		zap.String("payment_status", string(orderStatus)),
	)
	return p, nil
}

func (r *repository) GetByOrder(ctx context.Context, orderID string) (*Payment, error) {
	return r.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`, orderID)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Payment, error) {
	return r.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

func (r *repository) get(ctx context.Context, query, arg string) (*Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query payment", zap.String("layer", "repository"), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFailedLoadPayment, err)
	}
	return p, nil
}
