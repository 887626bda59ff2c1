package enums

import "fmt"

// StatusGroup partitions orders into the two tabs the client renders.
type StatusGroup string

const (
	StatusGroupActive   StatusGroup = "active"
	StatusGroupArchived StatusGroup = "archived"
)

// ActiveStatuses are the statuses still moving through the workflow.
var ActiveStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusCooking,
	OrderStatusDelivering,
}

// ArchivedStatuses are the terminal statuses.
var ArchivedStatuses = []OrderStatus{
	OrderStatusCancelled,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (g StatusGroup) String() string {
	return string(g)
}

// Statuses returns the statuses belonging to the group.
func (g StatusGroup) Statuses() []OrderStatus {
	if g == StatusGroupArchived {
		return ArchivedStatuses
	}
	return ActiveStatuses
}

// ParseStatusGroup converts raw input into a StatusGroup.
func ParseStatusGroup(value string) (StatusGroup, error) {
	switch StatusGroup(value) {
	case StatusGroupActive:
		return StatusGroupActive, nil
	case StatusGroupArchived:
		return StatusGroupArchived, nil
	default:
		return "", fmt.Errorf("invalid status group %q", value)
	}
}
