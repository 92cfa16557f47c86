package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/shopspring/decimal"
)

// ChargeItem is one gateway line item. Price is per unit.
type ChargeItem struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// ChargeCustomer is the display identity shown on the payment page.
type ChargeCustomer struct {
	Name  string
	Email string
	Phone string
}

// ChargeRequest asks the gateway for a payment token.
type ChargeRequest struct {
	OrderReference string
	GrossAmount    decimal.Decimal
	Items          []ChargeItem
	Customer       ChargeCustomer
	ExpiryStart    time.Time
	ExpiryDuration time.Duration
}

// ChargeResult is what the client needs to complete payment.
type ChargeResult struct {
	Token       string
	RedirectURL string
}

// Notification is the asynchronous status callback the gateway posts.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
	PaymentType       string `json:"payment_type"`
}

// Signature computes hex(sha512(order_id + status_code + gross_amount + server_key)).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks n against serverKey in constant time. An empty
// serverKey verifies nothing.
func VerifySignature(n Notification, serverKey string) bool {
	if serverKey == "" {
		return false
	}
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}
