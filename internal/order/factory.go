package order

import (
	"time"

	"foodcourt-be/internal/cart"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem is a menu item as re-read at checkout time.
type StockItem struct {
	MenuItemID string
	StallID    string
	Name       string
	Price      decimal.Decimal
	Stock      int
	IsActive   bool
}

var (
	newID = uuid.NewString
	now   = time.Now
)

// BuildOrder turns cart lines into a pending order priced at the current
// menu price. items must hold a fresh read of every referenced menu item;
// cached cart prices are ignored.
func BuildOrder(customerID string, lines []cart.Line, items map[string]StockItem, in CreateInput) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	o := &Order{
		ID:              newID(),
		CustomerID:      customerID,
		Lines:           make([]Line, 0, len(lines)),
		TotalAmount:     decimal.Zero,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   in.PaymentMethod,
		DeliveryAddress: in.DeliveryAddress,
		Notes:           in.Notes,
		CreatedAt:       now().UTC(),
	}
	o.UpdatedAt = o.CreatedAt

	for _, cl := range lines {
		item, ok := items[cl.MenuItemID]
		if !ok || !item.IsActive {
			return nil, ErrItemUnavailable
		}
		if item.Stock < cl.Quantity {
			return nil, ErrInsufficientStock
		}

		line := Line{
			ID:               newID(),
			MenuItemID:       item.MenuItemID,
			StallID:          item.StallID,
			Name:             item.Name,
			Quantity:         cl.Quantity,
			PriceAtOrderTime: item.Price,
		}
		o.Lines = append(o.Lines, line)
		o.TotalAmount = o.TotalAmount.Add(line.Subtotal())
	}

	return o, nil
}
