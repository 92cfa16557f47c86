package service

import (
	"context"
	"time"

	"github.com/sangkips/brewline-api/internal/domain/entity"
	"github.com/sangkips/brewline-api/pkg/email"
	"github.com/sangkips/brewline-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// Mailer sends rendered invoices.
type Mailer interface {
	SendInvoice(toEmail string, invoice email.Invoice) error
}

// EmailInvoiceSender renders a paid order into an invoice email
type EmailInvoiceSender struct {
	mailer Mailer
}

// NewEmailInvoiceSender creates a new invoice sender
func NewEmailInvoiceSender(mailer Mailer) *EmailInvoiceSender {
	return &EmailInvoiceSender{mailer: mailer}
}

// SendInvoice mails the order summary. Orders without an email are skipped.
func (s *EmailInvoiceSender) SendInvoice(_ context.Context, order *entity.Order) error {
	if order.CustomerEmail == "" {
		return nil
	}
	return s.mailer.SendInvoice(order.CustomerEmail, BuildInvoice(order))
}

// BuildInvoice flattens an order into invoice lines, add-ons after their item.
func BuildInvoice(order *entity.Order) email.Invoice {
	inv := email.Invoice{
		OrderID:      utils.OrderReference(order.ID),
		CustomerName: order.CustomerName,
		Total:        order.TotalAmount.StringFixed(2),
		PaidAt:       time.Now(),
	}
	if order.Payment != nil && order.Payment.PaidAt != nil {
		inv.PaidAt = *order.Payment.PaidAt
	}

	for _, item := range order.Items {
		name := item.Name
		if item.Variant != nil {
			name += " (" + *item.Variant + ")"
		}
		inv.Lines = append(inv.Lines, email.InvoiceLine{
			Name:     name,
			Quantity: item.Quantity,
			Subtotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2),
		})
		for _, a := range item.Addons {
			inv.Lines = append(inv.Lines, email.InvoiceLine{
				Name:     "+ " + a.Name,
				Quantity: a.Quantity,
				Subtotal: a.Subtotal.StringFixed(2),
			})
		}
	}
	return inv
}
