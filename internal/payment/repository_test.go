package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodcourt-be/internal/order"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordAs(method order.PaymentMethod) RecordFunc {
	return func(o OrderSnapshot) (*Payment, error) {
		status, _ := Settle(method)
		return &Payment{ID: "p-1", OrderID: o.ID, UserID: o.CustomerID, Amount: o.TotalAmount, Method: method, Status: status, TransactionID: "tx-1"}, nil
	}
}

func expectLockedOrder(mock sqlmock.Sqlmock, paymentStatus string) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, customer_id, total_amount, payment_status FROM orders WHERE id = \$1 FOR UPDATE`).
		WithArgs("o-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "total_amount", "payment_status"}).
			AddRow("o-1", "u-1", "13.00", paymentStatus))
}

func TestRepository_Record(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("PaidMethod", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectLockedOrder(mock, "PENDING")
		mock.ExpectQuery(`INSERT INTO payments`).
			WithArgs("p-1", "o-1", "u-1", sqlmock.AnyArg(), "BIKASH", "COMPLETED", "tx-1").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
		mock.ExpectExec(`UPDATE orders SET payment_status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs("PAID", "o-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		p, err := NewRepository(db).Record(ctx, "o-1", recordAs(order.MethodBikash))
		require.NoError(t, err)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(13)))
		assert.Equal(t, now, p.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CashOnDelivery", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectLockedOrder(mock, "PENDING")
		mock.ExpectQuery(`INSERT INTO payments`).
			WithArgs("p-1", "o-1", "u-1", sqlmock.AnyArg(), "CASH_ON_DELIVERY", "PENDING", "tx-1").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
		mock.ExpectExec(`UPDATE orders SET payment_status`).
			WithArgs("CASH_ON_DELIVERY", "o-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		_, err = NewRepository(db).Record(ctx, "o-1", recordAs(order.MethodCashOnDelivery))
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RejectedRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectLockedOrder(mock, "PAID")
		mock.ExpectRollback()

		_, err = NewRepository(db).Record(ctx, "o-1", func(OrderSnapshot) (*Payment, error) {
			return nil, ErrAlreadyPaid
		})
		assert.ErrorIs(t, err, ErrAlreadyPaid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateTransaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectLockedOrder(mock, "PENDING")
		mock.ExpectQuery(`INSERT INTO payments`).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		_, err = NewRepository(db).Record(ctx, "o-1", recordAs(order.MethodNagad))
		assert.ErrorIs(t, err, ErrDuplicateTxn)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OrderMissing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM orders`).
			WithArgs("o-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "total_amount", "payment_status"}))
		mock.ExpectRollback()

		_, err = NewRepository(db).Record(ctx, "o-1", recordAs(order.MethodNagad))
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	cols := []string{"id", "order_id", "user_id", "amount", "method", "status", "transaction_id", "created_at"}

	t.Run("ByOrder", func(t *testing.T) {
		mock.ExpectQuery(`FROM payments WHERE order_id = \$1 ORDER BY created_at DESC LIMIT 1`).
			WithArgs("o-1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("p-1", "o-1", "u-1", "13.00", "ROCKET", "COMPLETED", "tx-1", time.Now()))

		p, err := repo.GetByOrder(ctx, "o-1")
		require.NoError(t, err)
		assert.Equal(t, order.MethodRocket, p.Method)
		assert.Equal(t, StatusCompleted, p.Status)
	})

	t.Run("ByIDMissing", func(t *testing.T) {
		mock.ExpectQuery(`FROM payments WHERE id = \$1`).
			WithArgs("p-9").
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := repo.GetByID(ctx, "p-9")
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`FROM payments`).WillReturnError(errors.New("boom"))

		_, err := repo.GetByID(ctx, "p-1")
		assert.ErrorIs(t, err, ErrFailedLoadPayment)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
