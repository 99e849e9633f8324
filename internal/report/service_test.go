package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"foodcourt-be/internal/auth"
	"foodcourt-be/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Orders(ctx context.Context, status *order.Status, from, to *time.Time) ([]OrderFacts, error) {
	args := m.Called(ctx, status, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]OrderFacts), args.Error(1)
}

type memoryStore struct {
	reports map[string]Report
	failed  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reports: map[string]Report{}}
}

func (m *memoryStore) Insert(_ context.Context, r *Report) error {
	if m.failed != nil {
		return m.failed
	}
	m.reports[r.ID] = *r
	return nil
}

func (m *memoryStore) ListByOwner(_ context.Context, userID string) ([]Report, error) {
	out := []Report{}
	for _, r := range m.reports {
		if r.GeneratedBy == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*Report, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return &r, nil
}

var (
	admin      = auth.Actor{UserID: "admin-1", Role: auth.RoleFoodCourtOwner}
	otherAdmin = auth.Actor{UserID: "admin-2", Role: auth.RoleFoodCourtOwner}
	stallOwner = auth.Actor{UserID: "owner-1", Role: auth.RoleStallOwner}
)

func completedOnly(s *order.Status) bool {
	return s != nil && *s == order.StatusCompleted
}

func TestService_SalesWithStallFilter(t *testing.T) {
	ctx := context.Background()
	src := new(MockSource)
	src.On("Orders", ctx, mock.MatchedBy(completedOnly), (*time.Time)(nil), (*time.Time)(nil)).
		Return(sampleOrders()[:2], nil)
	store := newMemoryStore()

	r, err := NewService(src, store).Sales(ctx, admin, Params{StallID: "s-2"})
	require.NoError(t, err)

	assert.Equal(t, TypeSales, r.Type)
	assert.Equal(t, "Sales Report (All Time)", r.Title)
	assert.Equal(t, "s-2", r.StallID)
	require.NotNil(t, r.Sales)
	assert.Equal(t, 1, r.Sales.TotalOrders)
	assert.True(t, r.Sales.TotalSales.Equal(d("13")))
	assert.Contains(t, store.reports, r.ID)
	src.AssertExpectations(t)
}

func TestService_PerformanceReadsEveryStatus(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	src := new(MockSource)
	src.On("Orders", ctx, (*order.Status)(nil), &from, &to).Return(sampleOrders(), nil)

	r, err := NewService(src, newMemoryStore()).Performance(ctx, admin, Params{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, "Performance Report (2026-03-01 to 2026-03-31)", r.Title)
	assert.Equal(t, 3, r.Performance.TotalOrders)
}

func TestService_Rejections(t *testing.T) {
	ctx := context.Background()
	svc := NewService(new(MockSource), newMemoryStore())

	_, err := svc.StallRanking(ctx, stallOwner, Params{})
	assert.ErrorIs(t, err, ErrAdminOnly)

	from := time.Now()
	to := from.Add(-time.Hour)
	_, err = svc.Sales(ctx, admin, Params{From: &from, To: &to})
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.List(ctx, stallOwner)
	assert.ErrorIs(t, err, ErrAdminOnly)
}

func TestService_SourceAndStoreFailures(t *testing.T) {
	ctx := context.Background()

	src := new(MockSource)
	src.On("Orders", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil, ErrFailedLoadOrders).Once()
	_, err := NewService(src, newMemoryStore()).StallRanking(ctx, admin, Params{})
	assert.ErrorIs(t, err, ErrFailedLoadOrders)

	store := newMemoryStore()
	store.failed = ErrFailedSave
	src.On("Orders", ctx, mock.Anything, mock.Anything, mock.Anything).Return(sampleOrders(), nil)
	_, err = NewService(src, store).StallRanking(ctx, admin, Params{})
	assert.ErrorIs(t, err, ErrFailedSave)
}

func TestService_GetIsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	src := new(MockSource)
	src.On("Orders", ctx, mock.Anything, mock.Anything, mock.Anything).Return(sampleOrders(), nil)
	svc := NewService(src, newMemoryStore())

	r, err := svc.StallRanking(ctx, admin, Params{})
	require.NoError(t, err)

	got, err := svc.Get(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	_, err = svc.Get(ctx, otherAdmin, r.ID)
	assert.ErrorIs(t, err, ErrNotReportOwner)

	_, err = svc.Get(ctx, admin, "missing")
	assert.ErrorIs(t, err, ErrReportNotFound)

	mine, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := svc.List(ctx, otherAdmin)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestService_ExportWorkbook(t *testing.T) {
	ctx := context.Background()
	src := new(MockSource)
	src.On("Orders", ctx, mock.Anything, mock.Anything, mock.Anything).Return(sampleOrders(), nil)
	svc := NewService(src, newMemoryStore())

	r, err := svc.StallRanking(ctx, admin, Params{})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = svc.Export(ctx, admin, r.ID, &buf)
	require.NoError(t, err)

	wb, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "Summary", wb.Sheets[0].Name)

	sheet := wb.Sheets[1]
	assert.Equal(t, "Stall Ranking", sheet.Name)
	assert.Equal(t, "Rank", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Noodles", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "20.00", sheet.Rows[1].Cells[2].String())

	_, err = svc.Export(ctx, otherAdmin, r.ID, &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrNotReportOwner))
}

func TestFilename(t *testing.T) {
	r := &Report{Type: TypeSales, CreatedAt: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)}
	assert.Equal(t, "sales-20260304-050607.xlsx", Filename(r))
}
