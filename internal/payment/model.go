package payment

import (
	"time"

	"foodcourt-be/internal/order"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

type Payment struct {
	ID            string              `json:"id"`
	OrderID       string              `json:"orderId"`
	UserID        string              `json:"userId"`
	Amount        decimal.Decimal     `json:"amount"`
	Method        order.PaymentMethod `json:"paymentMethod"`
	Status        Status              `json:"status"`
	TransactionID string              `json:"transactionId"`
	CreatedAt     time.Time           `json:"createdAt"`
}

type ProcessInput struct {
	OrderID       string
	Method        order.PaymentMethod
	TransactionID string
}

// OrderSnapshot is the locked order row a payment is recorded against.
type OrderSnapshot struct {
	ID            string
	CustomerID    string
	TotalAmount   decimal.Decimal
	PaymentStatus order.PaymentStatus
}

// Settle returns the payment and order payment status for a method. Cash is
// collected at pickup so it stays pending.
func Settle(method order.PaymentMethod) (Status, order.PaymentStatus) {
	if method == order.MethodCashOnDelivery {
		return StatusPending, order.PaymentCashOnDelivery
	}
	return StatusCompleted, order.PaymentPaid
}
