package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"foodcourt-be/internal/apperr"
	"foodcourt-be/internal/cart"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderCols = []string{
	"id", "customer_id", "total_amount", "status", "payment_status", "payment_method",
	"delivery_address", "notes", "created_at", "updated_at",
}

var lineCols = []string{"order_id", "id", "menu_item_id", "stall_id", "name", "quantity", "price_at_order_time"}

func buildWith(in CreateInput) BuildFunc {
	return func(lines []cart.Line, items map[string]StockItem) (*Order, error) {
		return BuildOrder("u-1", lines, items, in)
	}
}

func expectCheckoutReads(mock sqlmock.Sqlmock, m1Stock int) {
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM carts WHERE user_id = \\$1 FOR UPDATE").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c-1"))
	mock.ExpectQuery("SELECT id, menu_item_id, quantity, unit_price FROM cart_lines WHERE cart_id = \\$1 ORDER BY position").
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "menu_item_id", "quantity", "unit_price"}).
			AddRow("l-1", "m-1", 2, "5.00").
			AddRow("l-2", "m-2", 1, "3.00"))
	mock.ExpectQuery("SELECT id, stall_id, name, price, stock, is_active FROM menu_items WHERE id = ANY\\(\\$1\\) ORDER BY id FOR UPDATE").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "stall_id", "name", "price", "stock", "is_active"}).
			AddRow("m-1", "s-1", "Ramen", "5.00", m1Stock, true).
			AddRow("m-2", "s-2", "Tea", "3.00", 5, true))
}

func TestRepository_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectCheckoutReads(mock, 10)
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_lines").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE menu_items SET stock = stock - \\$1, updated_at = NOW\\(\\) WHERE id = \\$2 AND stock >= \\$1").
			WithArgs(2, "m-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_lines").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE menu_items SET stock").
			WithArgs(1, "m-2").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("DELETE FROM cart_lines WHERE cart_id = \\$1").
			WithArgs("c-1").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("UPDATE carts SET total_amount = 0").
			WithArgs("c-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		o, err := NewRepository(db).PlaceOrder(ctx, "u-1", buildWith(codInput))
		require.NoError(t, err)
		assert.True(t, o.TotalAmount.Equal(d("13")))
		assert.Equal(t, StatusPending, o.Status)
		require.Len(t, o.Lines, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientStockRollsBack", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectCheckoutReads(mock, 1)
		mock.ExpectRollback()

		_, err = NewRepository(db).PlaceOrder(ctx, "u-1", buildWith(codInput))
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StockTakenConcurrently", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectCheckoutReads(mock, 10)
		mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_lines").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE menu_items SET stock").
			WithArgs(2, "m-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err = NewRepository(db).PlaceOrder(ctx, "u-1", buildWith(codInput))
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoCart", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM carts").
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err = NewRepository(db).PlaceOrder(ctx, "u-1", buildWith(codInput))
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectCheckoutReads(mock, 10)
		mock.ExpectExec("INSERT INTO orders").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		_, err = NewRepository(db).PlaceOrder(ctx, "u-1", buildWith(codInput))
		assert.ErrorIs(t, err, ErrFailedCreateOrder)
		assert.Equal(t, apperr.KindDependency, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("FROM orders o WHERE o.id = \\$1").
			WithArgs("o-1").
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow("o-1", "u-1", "13.00", "PENDING", "PENDING", "CASH_ON_DELIVERY", "Table 4", "", created, created))
		mock.ExpectQuery("FROM order_lines WHERE order_id = ANY\\(\\$1\\)").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(lineCols).
				AddRow("o-1", "ol-1", "m-1", "s-1", "Ramen", 2, "5.00").
				AddRow("o-1", "ol-2", "m-2", "s-2", "Tea", 1, "3.00"))

		o, err := repo.GetByID(ctx, "o-1")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, MethodCashOnDelivery, o.PaymentMethod)
		require.Len(t, o.Lines, 2)
		assert.True(t, o.HasStall([]string{"s-2"}))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("FROM orders o WHERE o.id = \\$1").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(orderCols))

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("CustomerScopeDefaultsPage", func(t *testing.T) {
		mock.ExpectQuery("FROM orders o WHERE 1=1 AND o.customer_id = \\$1 ORDER BY o.created_at DESC, o.id DESC LIMIT \\$2 OFFSET \\$3").
			WithArgs("u-1", 20, 0).
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow("o-2", "u-1", "3.00", "PENDING", "PENDING", "BIKASH", "", "", created, created).
				AddRow("o-1", "u-1", "10.00", "COMPLETED", "PAID", "BIKASH", "", "", created, created))
		mock.ExpectQuery("FROM order_lines WHERE order_id = ANY").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(lineCols).
				AddRow("o-1", "ol-1", "m-1", "s-1", "Ramen", 2, "5.00").
				AddRow("o-2", "ol-2", "m-2", "s-2", "Tea", 1, "3.00"))

		orders, err := repo.List(ctx, Scope{CustomerID: "u-1"}, Filter{})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "o-2", orders[0].ID)
		assert.Equal(t, "m-2", orders[0].Lines[0].MenuItemID)
		assert.Equal(t, "m-1", orders[1].Lines[0].MenuItemID)
	})

	t.Run("StallOwnerScopeWithFilters", func(t *testing.T) {
		status := StatusPending
		minAmount := d("5")
		mock.ExpectQuery("AND EXISTS \\( SELECT 1 FROM order_lines ol JOIN stalls s ON s.id = ol.stall_id WHERE ol.order_id = o.id AND s.owner_id = \\$1\\) AND o.status = \\$2 AND o.total_amount >= \\$3 ORDER BY o.created_at DESC, o.id DESC LIMIT \\$4 OFFSET \\$5").
			WithArgs("owner-1", StatusPending, sqlmock.AnyArg(), 100, 100).
			WillReturnRows(sqlmock.NewRows(orderCols))

		orders, err := repo.List(ctx, Scope{StallOwnerID: "owner-1"}, Filter{
			Status:    &status,
			MinAmount: &minAmount,
			Limit:     500,
			Page:      2,
		})
		require.NoError(t, err)
		assert.Empty(t, orders)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery("FROM orders o").WillReturnError(errors.New("timeout"))

		_, err := repo.List(ctx, Scope{}, Filter{})
		assert.ErrorIs(t, err, ErrFailedLoadOrder)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	expectLocked := func(mock sqlmock.Sqlmock, status string) {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders o WHERE o.id = \\$1 FOR UPDATE").
			WithArgs("o-1").
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow("o-1", "u-1", "13.00", status, "PENDING", "BIKASH", "", "", created, created))
		mock.ExpectQuery("FROM order_lines").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(lineCols).
				AddRow("o-1", "ol-1", "m-1", "s-1", "Ramen", 2, "5.00"))
	}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectLocked(mock, "PENDING")
		mock.ExpectQuery("UPDATE orders SET status = \\$1, updated_at = NOW\\(\\) WHERE id = \\$2 AND status = \\$3 RETURNING updated_at").
			WithArgs(StatusPreparing, "o-1", StatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(created.Add(time.Minute)))
		mock.ExpectCommit()

		var seen Status
		o, err := NewRepository(db).UpdateStatus(ctx, "o-1", func(current *Order) (Status, error) {
			seen = current.Status
			return StatusPreparing, nil
		})
		require.NoError(t, err)
		assert.Equal(t, StatusPending, seen)
		assert.Equal(t, StatusPreparing, o.Status)
		assert.Equal(t, created.Add(time.Minute), o.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DecideRejects", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectLocked(mock, "COMPLETED")
		mock.ExpectRollback()

		_, err = NewRepository(db).UpdateStatus(ctx, "o-1", func(current *Order) (Status, error) {
			return "", ErrOrderClosed
		})
		assert.ErrorIs(t, err, ErrOrderClosed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CompareAndSwapLost", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		expectLocked(mock, "PENDING")
		mock.ExpectQuery("UPDATE orders SET status").
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))
		mock.ExpectRollback()

		_, err = NewRepository(db).UpdateStatus(ctx, "o-1", func(*Order) (Status, error) {
			return StatusCancelled, nil
		})
		assert.ErrorIs(t, err, ErrConcurrentUpdate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("FROM orders o WHERE o.id = \\$1 FOR UPDATE").
			WithArgs("o-1").
			WillReturnRows(sqlmock.NewRows(orderCols))
		mock.ExpectRollback()

		_, err = NewRepository(db).UpdateStatus(ctx, "o-1", func(*Order) (Status, error) {
			t.Fatal("decide must not run for a missing order")
			return "", nil
		})
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNormalizePage(t *testing.T) {
	limit, page := normalizePage(0, 0)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 1, page)

	limit, page = normalizePage(250, 3)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 3, page)
}
