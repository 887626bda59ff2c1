package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks the kitchen-to-door lifecycle of an order.
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "New"
	OrderStatusCooking    OrderStatus = "Cooking"
	OrderStatusDelivering OrderStatus = "Delivering"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// orderStatusFlow is the strict forward order of the workflow. Cancelled
// sits outside the linear chain and is reachable from any non-terminal
// status.
var orderStatusFlow = []OrderStatus{
	OrderStatusNew,
	OrderStatusCooking,
	OrderStatusDelivering,
	OrderStatusDelivered,
}

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusCooking,
	OrderStatusDelivering,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// FlowIndex returns the position of the status in the linear workflow, or
// -1 for Cancelled and unknown values.
func (s OrderStatus) FlowIndex() int {
	for i, candidate := range orderStatusFlow {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseOrderStatus converts raw input into an OrderStatus. Input is
// trimmed and matched case-insensitively; legacy rows and clients are not
// consistent about casing.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validOrderStatuses {
		if strings.ToLower(string(candidate)) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
