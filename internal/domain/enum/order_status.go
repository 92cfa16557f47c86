package enum

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ParseOrderStatus maps a case-insensitive name to an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = OrderStatusPending
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", value)
	}
	return nil
}

// OrderChannel distinguishes counter orders from online orders
type OrderChannel string

const (
	OrderChannelOffline OrderChannel = "OFFLINE"
	OrderChannelOnline  OrderChannel = "ONLINE"
)

func (c OrderChannel) String() string {
	return string(c)
}

// ParseOrderChannel maps a case-insensitive name to an OrderChannel.
func ParseOrderChannel(raw string) (OrderChannel, error) {
	switch c := OrderChannel(strings.ToUpper(strings.TrimSpace(raw))); c {
	case OrderChannelOffline, OrderChannelOnline:
		return c, nil
	}
	return "", fmt.Errorf("unknown order channel %q", raw)
}

func (c OrderChannel) Value() (driver.Value, error) {
	return string(c), nil
}

func (c *OrderChannel) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = OrderChannelOffline
	case string:
		*c = OrderChannel(v)
	case []byte:
		*c = OrderChannel(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderChannel", value)
	}
	return nil
}
