package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Order Confirmation</h2>
  <p>Thank you for your order! Here are the details:</p>
  <h3>Order #{{.OrderNumber}}</h3>
  <p><strong>Date:</strong> {{.Date}}</p>
  <p><strong>Status:</strong> {{.Status}}</p>
  <table style="width: 100%; border-collapse: collapse;">
    <thead><tr><th>Item</th><th>Quantity</th><th>Price</th></tr></thead>
    <tbody>
    {{- range .Lines}}
      <tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Subtotal.StringFixed 2}}</td></tr>
    {{- end}}
    </tbody>
  </table>
  <h3>Total: {{.TotalAmount.StringFixed 2}}</h3>
  <p>We'll notify you when your order status changes.</p>
  <p style="color: #666; font-size: 12px;">&copy; {{.Year}} Food Court. All rights reserved.</p>
</div>`))

var verificationTmpl = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to Food Court!</h2>
  <p>Thank you for registering. Please confirm your email address:</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.Link}}" style="padding: 12px 24px; text-decoration: none; border-radius: 5px;">Verify Email</a>
  </div>
  <p>If the button doesn't work, copy this link into your browser:</p>
  <p>{{.Link}}</p>
  <p style="color: #666; font-size: 14px;">If you didn't create an account, please ignore this email.</p>
</div>`))

type confirmationView struct {
	Confirmation
	Date string
	Year int
}

func Render(c Confirmation) (Mail, error) {
	var buf bytes.Buffer
	view := confirmationView{
		Confirmation: c,
		Date:         c.CreatedAt.Format(time.DateOnly),
		Year:         c.CreatedAt.Year(),
	}
	if err := confirmationTmpl.Execute(&buf, view); err != nil {
		return Mail{}, fmt.Errorf("render confirmation: %w", err)
	}
	return Mail{
		To:      c.Email,
		Subject: "Order Confirmation - #" + c.OrderNumber,
		HTML:    buf.String(),
	}, nil
}

func RenderVerification(v Verification) (Mail, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, v); err != nil {
		return Mail{}, fmt.Errorf("render verification: %w", err)
	}
	return Mail{
		To:      v.Email,
		Subject: "Verify Your Email - Food Court",
		HTML:    buf.String(),
	}, nil
}
