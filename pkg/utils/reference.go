package utils

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// OrderReferencePrefix prefixes the order id in gateway-facing references.
const OrderReferencePrefix = "ORDER-"

// ErrMalformedReference is returned for references not of the form ORDER-<uuid>.
var ErrMalformedReference = errors.New("malformed order reference")

// OrderReference renders the gateway reference for an order.
func OrderReference(orderID uuid.UUID) string {
	return OrderReferencePrefix + orderID.String()
}

// ParseOrderReference extracts the order id from a gateway reference.
func ParseOrderReference(ref string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(ref, OrderReferencePrefix)
	if !ok || raw == "" {
		return uuid.Nil, ErrMalformedReference
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrMalformedReference
	}
	return id, nil
}
