package orders

import "github.com/thandondaba/quickbite-backend/pkg/enums"

// CanTransition implements the forward-only workflow. The linear chain
// is New -> Cooking -> Delivering -> Delivered with no skipping;
// Cancelled is reachable from any non-terminal status; terminal
// statuses absorb.
func CanTransition(current, next enums.OrderStatus) bool {
	if !current.IsValid() || !next.IsValid() {
		return false
	}
	if current == next {
		return false
	}
	if current.IsTerminal() {
		return false
	}
	if next == enums.OrderStatusCancelled {
		return true
	}
	return next.FlowIndex() == current.FlowIndex()+1
}
