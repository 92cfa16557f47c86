package email

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendInvoice_RendersLines(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	svc := NewEmailService(EmailConfig{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  2525,
		FromName:  "Brewline",
		FromEmail: "noreply@example.com",
	}).WithSender(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.Nil(t, a)
		return nil
	})

	err := svc.SendInvoice("ana@example.com", Invoice{
		OrderID:      "ORDER-1",
		CustomerName: "Ana",
		Lines:        []InvoiceLine{{Name: "Latte", Quantity: 2, Subtotal: "50000.00"}},
		Total:        "50000.00",
		PaidAt:       time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"ana@example.com"}, gotTo)
	body := string(gotMsg)
	assert.Contains(t, body, "Subject: Your receipt for order ORDER-1 - Brewline")
	assert.Contains(t, body, "2 x Latte")
	assert.Contains(t, body, "02 Jan 2026 10:00")
}

func TestSendInvoice_WrapsTransportError(t *testing.T) {
	svc := NewEmailService(EmailConfig{SMTPHost: "h", SMTPPort: 25}).
		WithSender(func(string, smtp.Auth, string, []string, []byte) error {
			return errors.New("connection refused")
		})

	err := svc.SendInvoice("a@example.com", Invoice{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
}
