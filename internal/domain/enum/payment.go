package enum

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// PaymentMethod is the closed set of settlement methods
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodGatewayQRIS PaymentMethod = "GATEWAY_QRIS"
	PaymentMethodOfflineQRIS PaymentMethod = "OFFLINE_QRIS"
)

// paymentMethodAliases is matched after trimming and upper-casing the input.
var paymentMethodAliases = map[string]PaymentMethod{
	"CASH":         PaymentMethodCash,
	"QRIS":         PaymentMethodGatewayQRIS,
	"GATEWAY_QRIS": PaymentMethodGatewayQRIS,
	"OFFLINE_QRIS": PaymentMethodOfflineQRIS,
}

// ErrUnknownPaymentMethod is returned by ParsePaymentMethod on no match.
type ErrUnknownPaymentMethod struct {
	Raw string
}

func (e *ErrUnknownPaymentMethod) Error() string {
	return fmt.Sprintf("unknown payment method %q", e.Raw)
}

// ParsePaymentMethod maps a raw client string to a PaymentMethod.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m, ok := paymentMethodAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return "", &ErrUnknownPaymentMethod{Raw: raw}
	}
	return m, nil
}

// IsGatewayRouted reports whether settlement happens asynchronously through the gateway.
func (m PaymentMethod) IsGatewayRouted() bool {
	return m == PaymentMethodGatewayQRIS
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return string(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*m = PaymentMethod(v)
	case []byte:
		*m = PaymentMethod(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentMethod", value)
	}
	return nil
}

// PaymentStatus is terminal once it leaves PENDING
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailure PaymentStatus = "FAILURE"
	PaymentStatusExpired PaymentStatus = "EXPIRED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status accepts no further transitions.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentStatusPending
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = PaymentStatusPending
	case string:
		*s = PaymentStatus(v)
	case []byte:
		*s = PaymentStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentStatus", value)
	}
	return nil
}
