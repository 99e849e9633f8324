package mailer

import (
	"net/url"
	"strings"
	"time"

	"foodcourt-be/internal/order"

	"github.com/shopspring/decimal"
)

// Message kinds travel in the AMQP type property. An empty type is an order
// confirmation.
const (
	KindConfirmation = "order_confirmation"
	KindVerification = "email_verification"
)

// Confirmation is the queued payload for an order confirmation email.
type Confirmation struct {
	Email       string             `json:"email"`
	OrderID     string             `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	Status      order.Status       `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	Lines       []ConfirmationLine `json:"items"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
}

type ConfirmationLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func NewConfirmation(email string, o *order.Order) Confirmation {
	c := Confirmation{
		Email:       email,
		OrderID:     o.ID,
		OrderNumber: OrderNumber(o.ID),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		TotalAmount: o.TotalAmount,
		Lines:       make([]ConfirmationLine, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		c.Lines = append(c.Lines, ConfirmationLine{Name: l.Name, Quantity: l.Quantity, Subtotal: l.Subtotal()})
	}
	return c
}

// OrderNumber is the customer-facing reference: the first eight id characters.
func OrderNumber(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Verification is the queued payload for an email verification link.
type Verification struct {
	Email string `json:"email"`
	Link  string `json:"link"`
}

// VerificationLink points the frontend's verify page at token.
func VerificationLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/verify-email/" + url.PathEscape(token)
}

// Mail is a rendered message ready for delivery.
type Mail struct {
	To      string
	Subject string
	HTML    string
}
