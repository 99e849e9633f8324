// Package notify pushes order lifecycle events to connected clients.
package notify

import (
	"context"

	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/order"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	EventOrderStatusChanged = "orderStatusChanged"
	EventOrderPlaced        = "orderPlaced"
)

// Transport delivers an event either to every subscriber or to one connection.
type Transport interface {
	Broadcast(ctx context.Context, event string, payload any) error
	SendToConnection(ctx context.Context, connID, event string, payload any) error
}

// Directory maps a user to their current realtime connection.
type Directory interface {
	Register(ctx context.Context, userID, connID string) error
	Unregister(ctx context.Context, userID, connID string) error
	Lookup(ctx context.Context, userID string) (connID string, ok bool, err error)
}

type StatusChanged struct {
	OrderID    string       `json:"orderId"`
	Status     order.Status `json:"status"`
	CustomerID string       `json:"customerId"`
}

type OrderPlaced struct {
	OrderID     string          `json:"orderId"`
	CustomerID  string          `json:"customerId"`
	Status      order.Status    `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	StallIDs    []string        `json:"stallIds"`
}

// Fanout implements order.Notifier. Delivery is at-most-once: failures are
// logged and never returned to the caller.
type Fanout struct {
	transport Transport
	directory Directory
}

func NewFanout(t Transport, d Directory) *Fanout {
	return &Fanout{transport: t, directory: d}
}

var _ order.Notifier = (*Fanout)(nil)

func (f *Fanout) NotifyStatusChange(ctx context.Context, o *order.Order) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "notify"),
		zap.String("order_id", o.ID),
		zap.String("status", string(o.Status)),
	)

	payload := StatusChanged{OrderID: o.ID, Status: o.Status, CustomerID: o.CustomerID}

	if err := f.transport.Broadcast(ctx, EventOrderStatusChanged, payload); err != nil {
		log.Warn("broadcast status change failed", zap.Error(err))
	}

	if f.directory == nil {
		return
	}
	connID, ok, err := f.directory.Lookup(ctx, o.CustomerID)
	if err != nil {
		log.Warn("connection lookup failed", zap.Error(err))
		return
	}
	if !ok {
		log.Debug("customer not connected")
		return
	}
	if err := f.transport.SendToConnection(ctx, connID, EventOrderStatusChanged, payload); err != nil {
		log.Warn("direct status push failed", zap.String("conn_id", connID), zap.Error(err))
	}
}

func (f *Fanout) NotifyOrderPlaced(ctx context.Context, o *order.Order) {
	payload := OrderPlaced{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		StallIDs:    stallIDs(o),
	}
	if err := f.transport.Broadcast(ctx, EventOrderPlaced, payload); err != nil {
		logger.FromCtx(ctx).Warn("broadcast new order failed",
			zap.String("layer", "notify"),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}

func stallIDs(o *order.Order) []string {
	seen := make(map[string]bool, len(o.Lines))
	ids := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		if !seen[l.StallID] {
			seen[l.StallID] = true
			ids = append(ids, l.StallID)
		}
	}
	return ids
}
