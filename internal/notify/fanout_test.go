package notify

import (
	"context"
	"errors"
	"testing"

	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Broadcast(ctx context.Context, event string, payload any) error {
	return m.Called(ctx, event, payload).Error(0)
}

func (m *MockTransport) SendToConnection(ctx context.Context, connID, event string, payload any) error {
	return m.Called(ctx, connID, event, payload).Error(0)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Register(ctx context.Context, userID, connID string) error {
	return m.Called(ctx, userID, connID).Error(0)
}

func (m *MockDirectory) Unregister(ctx context.Context, userID, connID string) error {
	return m.Called(ctx, userID, connID).Error(0)
}

func (m *MockDirectory) Lookup(ctx context.Context, userID string) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func observe(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(logger.Replace(zap.New(core)))
	return logs
}

func readyOrder() *order.Order {
	return &order.Order{
		ID:          "o-1",
		CustomerID:  "u-1",
		Status:      order.StatusReadyForPickup,
		TotalAmount: decimal.NewFromInt(13),
		Lines: []order.Line{
			{StallID: "s-1"}, {StallID: "s-2"}, {StallID: "s-1"},
		},
	}
}

func TestFanout_NotifyStatusChange(t *testing.T) {
	ctx := context.Background()
	want := StatusChanged{OrderID: "o-1", Status: order.StatusReadyForPickup, CustomerID: "u-1"}

	t.Run("BroadcastAndDirectPush", func(t *testing.T) {
		tr, dir := new(MockTransport), new(MockDirectory)
		tr.On("Broadcast", ctx, EventOrderStatusChanged, want).Return(nil)
		dir.On("Lookup", ctx, "u-1").Return("conn-7", true, nil)
		tr.On("SendToConnection", ctx, "conn-7", EventOrderStatusChanged, want).Return(nil)

		NewFanout(tr, dir).NotifyStatusChange(ctx, readyOrder())
		tr.AssertExpectations(t)
	})

	t.Run("CustomerOffline", func(t *testing.T) {
		logs := observe(t)
		tr, dir := new(MockTransport), new(MockDirectory)
		tr.On("Broadcast", ctx, EventOrderStatusChanged, want).Return(nil)
		dir.On("Lookup", ctx, "u-1").Return("", false, nil)

		NewFanout(tr, dir).NotifyStatusChange(ctx, readyOrder())
		tr.AssertNotCalled(t, "SendToConnection", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("BroadcastFailureStillPushes", func(t *testing.T) {
		logs := observe(t)
		tr, dir := new(MockTransport), new(MockDirectory)
		tr.On("Broadcast", ctx, EventOrderStatusChanged, want).Return(errors.New("relay down"))
		dir.On("Lookup", ctx, "u-1").Return("conn-7", true, nil)
		tr.On("SendToConnection", ctx, "conn-7", EventOrderStatusChanged, want).Return(errors.New("gone"))

		NewFanout(tr, dir).NotifyStatusChange(ctx, readyOrder())
		tr.AssertExpectations(t)
		assert.Equal(t, 2, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("DirectoryFailure", func(t *testing.T) {
		logs := observe(t)
		tr, dir := new(MockTransport), new(MockDirectory)
		tr.On("Broadcast", ctx, EventOrderStatusChanged, want).Return(nil)
		dir.On("Lookup", ctx, "u-1").Return("", false, errors.New("redis timeout"))

		NewFanout(tr, dir).NotifyStatusChange(ctx, readyOrder())
		assert.Equal(t, 1, logs.FilterMessage("connection lookup failed").Len())
	})

	t.Run("NoDirectory", func(t *testing.T) {
		tr := new(MockTransport)
		tr.On("Broadcast", ctx, EventOrderStatusChanged, want).Return(nil)

		NewFanout(tr, nil).NotifyStatusChange(ctx, readyOrder())
		tr.AssertExpectations(t)
	})
}

func TestFanout_NotifyOrderPlaced(t *testing.T) {
	ctx := context.Background()
	tr := new(MockTransport)
	tr.On("Broadcast", ctx, EventOrderPlaced, mock.MatchedBy(func(p OrderPlaced) bool {
		return p.OrderID == "o-1" && assert.ObjectsAreEqual([]string{"s-1", "s-2"}, p.StallIDs)
	})).Return(nil)

	NewFanout(tr, nil).NotifyOrderPlaced(ctx, readyOrder())
	tr.AssertExpectations(t)
}
