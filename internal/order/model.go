package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending        Status = "PENDING"
	StatusPreparing      Status = "PREPARING"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusCompleted      Status = "COMPLETED"
	StatusCancelled      Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReadyForPickup, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending        PaymentStatus = "PENDING"
	PaymentPaid           PaymentStatus = "PAID"
	PaymentFailed         PaymentStatus = "FAILED"
	PaymentCashOnDelivery PaymentStatus = "CASH_ON_DELIVERY"
)

type PaymentMethod string

const (
	MethodBikash         PaymentMethod = "BIKASH"
	MethodNagad          PaymentMethod = "NAGAD"
	MethodRocket         PaymentMethod = "ROCKET"
	MethodCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodBikash, MethodNagad, MethodRocket, MethodCashOnDelivery:
		return true
	}
	return false
}

// Line is immutable once the order is placed.
type Line struct {
	ID               string          `json:"id"`
	MenuItemID       string          `json:"menuItemId"`
	StallID          string          `json:"stallId"`
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	PriceAtOrderTime decimal.Decimal `json:"priceAtOrderTime"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.PriceAtOrderTime.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customerId"`
	Lines           []Line          `json:"lines"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// HasStall reports whether any line belongs to one of the given stalls.
func (o *Order) HasStall(stallIDs []string) bool {
	for _, l := range o.Lines {
		for _, id := range stallIDs {
			if l.StallID == id {
				return true
			}
		}
	}
	return false
}

type CreateInput struct {
	PaymentMethod   PaymentMethod
	DeliveryAddress string
	Notes           string
}

// Filter predicates are AND-ed; nil fields are ignored.
type Filter struct {
	Status      *Status
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	Limit       int
	Page        int
}

// Scope restricts a listing to what the caller may see.
type Scope struct {
	CustomerID   string
	StallOwnerID string
}
