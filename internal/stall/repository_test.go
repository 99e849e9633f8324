package stall

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stallCols = []string{
	"id", "name", "description", "owner_id", "category", "rent",
	"is_active", "average_rating", "total_ratings", "created_at", "updated_at",
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM stalls WHERE id = \\$1").
			WithArgs("s-1").
			WillReturnRows(sqlmock.NewRows(stallCols).
				AddRow("s-1", "Noodle Bar", "", "u-1", "asian", "1500.00", true, "4.50", 2, now, now))

		st, err := repo.GetByID(context.Background(), "s-1")
		require.NoError(t, err)
		assert.Equal(t, "Noodle Bar", st.Name)
		assert.True(t, st.Rent.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, 2, st.TotalRatings)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM stalls WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows(stallCols))

		_, err := repo.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrStallNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM stalls").
			WillReturnError(errors.New("db down"))

		_, err := repo.GetByID(context.Background(), "s-1")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrStallNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_OwnedIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM stalls WHERE owner_id = \\$1").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s-1").AddRow("s-2"))

	ids, err := NewRepository(db).OwnedIDs(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s-1", "s-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM stalls WHERE is_active = TRUE").
		WillReturnRows(sqlmock.NewRows(stallCols).
			AddRow("s-1", "A", "", "u-1", "", "0", true, "0", 0, now, now).
			AddRow("s-2", "B", "", "u-2", "", "0", true, "0", 0, now, now))

	stalls, err := NewRepository(db).ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, stalls, 2)
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	st := &Stall{ID: "s-1", Name: "Grill", OwnerID: "u-1", Rent: decimal.NewFromInt(100), IsActive: true}
	now := time.Now()

	mock.ExpectQuery("INSERT INTO stalls").
		WithArgs("s-1", "Grill", "", "u-1", "", sqlmock.AnyArg(), true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, NewRepository(db).Create(context.Background(), st))
	assert.Equal(t, now, st.CreatedAt)
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM stalls WHERE id = \\$1").
			WithArgs("s-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.Delete(context.Background(), "s-1"))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM stalls WHERE id = \\$1").
			WithArgs("s-9").
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.Delete(context.Background(), "s-9"), ErrStallNotFound)
	})
}
