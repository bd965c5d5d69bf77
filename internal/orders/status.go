package orders

import "github.com/Max3uc3Planz/lcdt-back/pkg/enums"

// statusTransitions encodes the fulfillment state machine. Missing keys
// (finished, canceled) are terminal.
var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending: {
		enums.OrderStatusProcessing,
		enums.OrderStatusCanceled,
	},
	enums.OrderStatusProcessing: {
		enums.OrderStatusPacking,
		enums.OrderStatusDelivery,
		enums.OrderStatusFinished,
	},
	enums.OrderStatusPacking: {
		enums.OrderStatusDelivery,
		enums.OrderStatusFinished,
	},
	enums.OrderStatusDelivery: {
		enums.OrderStatusFinished,
	},
}

// CanTransition reports whether an order may move from one status to
// another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the legal targets from the given status.
func NextStatuses(from enums.OrderStatus) []enums.OrderStatus {
	return statusTransitions[from]
}
